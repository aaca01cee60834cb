package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ecommerce-api/internal/model"
)

// Product columns qualified for the wishlist join; created_at/updated_at
// exist on both sides, so the bare productColumns list would be ambiguous.
const wishlistProductColumns = "p.id,p.category_id,p.name,p.slug,p.description,p.original_price,p.discount_percent,p.sale_price,p.stock,p.images,p.asset_folder_id,p.created_by,p.version,p.updated_by,p.freezed_at,p.restored_at,p.created_at,p.updated_at"

// WishlistRepo persists the user-to-product wishlist links. Adding is
// idempotent and removing an absent link is a no-op, so both writes are
// safe to retry.
type WishlistRepo struct {
	DB *sql.DB
}

func NewWishlistRepo(db *sql.DB) *WishlistRepo {
	return &WishlistRepo{DB: db}
}

// Add links a product to a user's wishlist. Re-adding an already listed
// product changes nothing.
func (r *WishlistRepo) Add(ctx context.Context, userID, productID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO wishlist_items (user_id, product_id) VALUES (?,?) ON DUPLICATE KEY UPDATE user_id=user_id",
		userID, productID)
	return err
}

// Remove unlinks a product from a user's wishlist. A product that was
// never listed is not an error.
func (r *WishlistRepo) Remove(ctx context.Context, userID, productID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE user_id=? AND product_id=?",
		userID, productID)
	return err
}

// ListByUser returns the live products on a user's wishlist. A product
// frozen after being listed drops out of the result; hard deletion removes
// the link itself.
func (r *WishlistRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+wishlistProductColumns+" FROM wishlist_items w JOIN products p ON p.id=w.product_id WHERE "+scopeLive("w.user_id=?")+" ORDER BY w.created_at",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
