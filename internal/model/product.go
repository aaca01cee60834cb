package model

import "time"

// Product represents a row in the `products` table.  SalePrice is derived:
// it always equals the original price minus the discount percentage, and
// is recomputed whenever either input changes.
type Product struct {
	ID              uint64   // products.id
	CategoryID      uint64   // products.category_id
	Name            string   // products.name
	Description     *string  // products.description (nullable)
	OriginalPrice   float64  // products.original_price
	DiscountPercent uint8    // products.discount_percent
	SalePrice       float64  // products.sale_price
	Stock           uint32   // products.stock
	Images          []string // products.images (JSON column)
	AssetFolderID   string   // products.asset_folder_id
	CreatedBy       uint64   // products.created_by
	Freezable
	CreatedAt time.Time // products.created_at
	UpdatedAt time.Time // products.updated_at
}

// ComputeSalePrice applies a percentage discount to an original price.
func ComputeSalePrice(originalPrice float64, discountPercent uint8) float64 {
	return originalPrice - (float64(discountPercent)/100)*originalPrice
}
