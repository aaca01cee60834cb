package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/utils"
)

const productColumns = "id,category_id,name,slug,description,original_price,discount_percent,sale_price,stock,images,asset_folder_id,created_by,version,updated_by,freezed_at,restored_at,created_at,updated_at"

// ProductRepo persists catalog products behind the shared freezable layer.
// The image list is stored as a JSON column.
type ProductRepo struct {
	FreezableStore
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{FreezableStore{DB: db, Table: "products"}}
}

// Create inserts a product and returns its ID. The sale price must
// already be derived from the original price and discount (the caller
// uses model.ComputeSalePrice).
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (uint64, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (category_id, name, slug, description, original_price, discount_percent, sale_price, stock, images, asset_folder_id, created_by) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		p.CategoryID, p.Name, utils.Slugify(p.Name), p.Description,
		p.OriginalPrice, p.DiscountPercent, p.SalePrice, p.Stock,
		string(images), p.AssetFolderID, p.CreatedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a live product.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE "+scopeLive("id=?")+" LIMIT 1", id)
	return scanProduct(row)
}

// GetArchivedByID fetches a frozen product through the explicit archive
// path.
func (r *ProductRepo) GetArchivedByID(ctx context.Context, id uint64) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE "+scopeArchived("id=?")+" LIMIT 1", id)
	return scanProduct(row)
}

// List returns a page of products matching the search query, plus the
// total match count. archived selects the frozen-records view.
func (r *ProductRepo) List(ctx context.Context, q SearchQuery, archived bool) ([]model.Product, int, error) {
	where := "1=1"
	pred, args := searchPredicate(q.Search)
	where += pred
	if archived {
		where = scopeArchived(where)
	} else {
		where = scopeLive(where)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := q.limitOffset()
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE "+where+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// ProductPatch carries the optional fields an update may touch. SalePrice
// is set by the caller whenever OriginalPrice or DiscountPercent changes,
// keeping the derived column consistent in the same statement.
type ProductPatch struct {
	CategoryID      *uint64
	Name            *string
	Description     *string
	OriginalPrice   *float64
	DiscountPercent *uint8
	SalePrice       *float64
	Stock           *uint32
}

// Update applies a patch to a live product. A name change re-derives the
// slug in the same statement and every call bumps the version by one.
func (r *ProductRepo) Update(ctx context.Context, id, actor uint64, patch ProductPatch) error {
	var b setBuilder
	if patch.CategoryID != nil {
		b.Set("category_id", *patch.CategoryID)
	}
	if patch.Name != nil {
		b.SetName("name", *patch.Name)
	}
	if patch.Description != nil {
		b.Set("description", *patch.Description)
	}
	if patch.OriginalPrice != nil {
		b.Set("original_price", *patch.OriginalPrice)
	}
	if patch.DiscountPercent != nil {
		b.Set("discount_percent", *patch.DiscountPercent)
	}
	if patch.SalePrice != nil {
		b.Set("sale_price", *patch.SalePrice)
	}
	if patch.Stock != nil {
		b.Set("stock", *patch.Stock)
	}
	if b.Empty() {
		return nil
	}
	b.Set("updated_by", actor)
	set, args := b.Clause()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET "+set+" WHERE "+scopeLive("id=?"), append(args, id)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row scanner) (model.Product, error) {
	var (
		p      model.Product
		images sql.NullString
	)
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description,
		&p.OriginalPrice, &p.DiscountPercent, &p.SalePrice, &p.Stock, &images,
		&p.AssetFolderID, &p.CreatedBy, &p.Version, &p.UpdatedBy,
		&p.FreezedAt, &p.RestoredAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &p.Images); err != nil {
			return model.Product{}, err
		}
	}
	return p, nil
}
