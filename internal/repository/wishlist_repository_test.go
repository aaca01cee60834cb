package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockWishlistRepo(t *testing.T) (*WishlistRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWishlistRepo(db), mock
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	repo, mock := newMockWishlistRepo(t)
	stmt := "INSERT INTO wishlist_items (user_id, product_id) VALUES (?,?) ON DUPLICATE KEY UPDATE user_id=user_id"

	// Re-adding hits the duplicate-key branch and still succeeds.
	mock.ExpectExec(stmt).WithArgs(uint64(7), uint64(3)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(stmt).WithArgs(uint64(7), uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.Add(ctx, 7, 3))
	require.NoError(t, repo.Add(ctx, 7, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRemoveAbsentLinkIsNoError(t *testing.T) {
	repo, mock := newMockWishlistRepo(t)
	mock.ExpectExec("DELETE FROM wishlist_items WHERE user_id=? AND product_id=?").
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Remove(context.Background(), 7, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistListExcludesFrozenProducts(t *testing.T) {
	repo, mock := newMockWishlistRepo(t)
	stmt := "SELECT " + wishlistProductColumns + " FROM wishlist_items w JOIN products p ON p.id=w.product_id WHERE w.user_id=? AND freezed_at IS NULL ORDER BY w.created_at"

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "category_id", "name", "slug", "description", "original_price",
		"discount_percent", "sale_price", "stock", "images", "asset_folder_id",
		"created_by", "version", "updated_by", "freezed_at", "restored_at",
		"created_at", "updated_at",
	}).AddRow(
		uint64(3), uint64(1), "Keyboard", "keyboard", nil, 50.0,
		uint8(10), 45.0, uint32(12), `["a.png"]`, "folder-1",
		uint64(9), uint64(2), nil, nil, nil,
		now, now,
	)
	mock.ExpectQuery(stmt).WithArgs(uint64(7)).WillReturnRows(rows)

	out, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Keyboard", out[0].Name)
	assert.Equal(t, []string{"a.png"}, out[0].Images)

	// The statement itself carries the live-records scope; a frozen
	// product never reaches the scanner.
	assert.NoError(t, mock.ExpectationsWereMet())
}
