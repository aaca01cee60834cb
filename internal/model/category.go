package model

import "time"

// Category represents a row in the `categories` table.  The name is
// unique across live and frozen records alike, so a frozen category still
// reserves its name until it is hard-deleted.
type Category struct {
	ID            uint64  // categories.id
	Name          string  // categories.name
	Description   *string // categories.description (nullable)
	Image         *string // categories.image (nullable)
	AssetFolderID string  // categories.asset_folder_id
	CreatedBy     uint64  // categories.created_by
	Freezable
	CreatedAt time.Time // categories.created_at
	UpdatedAt time.Time // categories.updated_at
}
