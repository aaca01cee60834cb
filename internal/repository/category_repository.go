package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/utils"
)

const categoryColumns = "id,name,slug,description,image,asset_folder_id,created_by,version,updated_by,freezed_at,restored_at,created_at,updated_at"

// CategoryRepo persists catalog categories behind the shared freezable
// layer.
type CategoryRepo struct {
	FreezableStore
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{FreezableStore{DB: db, Table: "categories"}}
}

// Create inserts a category and returns its ID. The name is checked
// against every record, frozen included: a frozen holder reports
// ErrNameFrozen (the name stays reserved), a live one ErrNameExists. The
// unique index backstops the race between check and insert.
func (r *CategoryRepo) Create(ctx context.Context, c model.Category) (uint64, error) {
	var (
		existingID uint64
		freezedAt  sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, freezed_at FROM categories WHERE name=? LIMIT 1", c.Name).
		Scan(&existingID, &freezedAt)
	switch {
	case err == nil:
		if freezedAt.Valid {
			return 0, ErrNameFrozen
		}
		return 0, ErrNameExists
	case !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, slug, description, image, asset_folder_id, created_by) VALUES (?,?,?,?,?,?)",
		c.Name, utils.Slugify(c.Name), c.Description, c.Image, c.AssetFolderID, c.CreatedBy)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a live category.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE "+scopeLive("id=?")+" LIMIT 1", id)
	return scanCategory(row)
}

// GetArchivedByID fetches a frozen category through the explicit archive
// path.
func (r *CategoryRepo) GetArchivedByID(ctx context.Context, id uint64) (model.Category, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE "+scopeArchived("id=?")+" LIMIT 1", id)
	return scanCategory(row)
}

// List returns a page of categories matching the search query, plus the
// total match count. archived selects the frozen-records view.
func (r *CategoryRepo) List(ctx context.Context, q SearchQuery, archived bool) ([]model.Category, int, error) {
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
		"SELECT COUNT(*) FROM categories WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := q.limitOffset()
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE "+where+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// CategoryPatch carries the optional fields an update may touch.
type CategoryPatch struct {
	Name        *string
	Description *string
	Image       *string
}

// Update applies a patch to a live category. A name change re-derives the
// slug in the same statement and every call bumps the version by one.
func (r *CategoryRepo) Update(ctx context.Context, id, actor uint64, patch CategoryPatch) error {
	var b setBuilder
	if patch.Name != nil {
		b.SetName("name", *patch.Name)
	}
	if patch.Description != nil {
		b.Set("description", *patch.Description)
	}
	if patch.Image != nil {
		b.Set("image", *patch.Image)
	}
	if b.Empty() {
		return nil
	}
	b.Set("updated_by", actor)
	set, args := b.Clause()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET "+set+" WHERE "+scopeLive("id=?"), append(args, id)...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrNameExists
		}
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

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image,
		&c.AssetFolderID, &c.CreatedBy, &c.Version, &c.UpdatedBy,
		&c.FreezedAt, &c.RestoredAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return c, err
}
