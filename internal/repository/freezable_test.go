package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeComposition(t *testing.T) {
	assert.Equal(t, "id=? AND freezed_at IS NULL", scopeLive("id=?"))
	assert.Equal(t, "id=? AND freezed_at IS NOT NULL", scopeArchived("id=?"))

	// Live and archived views never overlap: the conjuncts are mutually
	// exclusive for any row.
	assert.NotEqual(t, scopeLive("1=1"), scopeArchived("1=1"))
}

func TestSetBuilderVersionBump(t *testing.T) {
	var b setBuilder
	b.Set("stock", 3)
	set, args := b.Clause()

	assert.Equal(t, "stock=?, version=version+1", set)
	assert.Equal(t, []any{3}, args)
}

func TestSetBuilderAlwaysBumpsVersionOnce(t *testing.T) {
	var b setBuilder
	b.Set("description", "x")
	b.Set("image", "y")
	b.Set("stock", 9)
	set, _ := b.Clause()

	// One bump per statement no matter how many columns changed.
	assert.Equal(t, "description=?, image=?, stock=?, version=version+1", set)
}

func TestSetNameInjectsSlug(t *testing.T) {
	var b setBuilder
	b.SetName("name", "Gaming Laptops & Accessories")
	set, args := b.Clause()

	assert.Equal(t, "name=?, slug=?, version=version+1", set)
	require.Len(t, args, 2)
	assert.Equal(t, "Gaming Laptops & Accessories", args[0])
	assert.Equal(t, "gaming-laptops-accessories", args[1])
}

func TestSetSplitNameDerivesSlugFromJoinedName(t *testing.T) {
	var b setBuilder
	b.SetSplitName("Ada", "Lovelace")
	set, args := b.Clause()

	assert.Equal(t, "first_name=?, last_name=?, slug=?, version=version+1", set)
	require.Len(t, args, 3)
	assert.Equal(t, "ada-lovelace", args[2])
}

func TestSetBuilderEmpty(t *testing.T) {
	var b setBuilder
	assert.True(t, b.Empty())
	b.Set("name", "x")
	assert.False(t, b.Empty())
}

// newMockStore backs a FreezableStore with a sqlmock connection so the
// state transitions can be exercised without a database. Statements are
// matched verbatim.
func newMockStore(t *testing.T) (*FreezableStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &FreezableStore{DB: db, Table: "categories"}, mock
}

const (
	freezeStmt     = "UPDATE categories SET freezed_at=UTC_TIMESTAMP(), restored_at=NULL, updated_by=?, version=version+1 WHERE id=? AND freezed_at IS NULL"
	restoreStmt    = "UPDATE categories SET restored_at=UTC_TIMESTAMP(), freezed_at=NULL, updated_by=?, version=version+1 WHERE id=? AND freezed_at IS NOT NULL"
	hardDeleteStmt = "DELETE FROM categories WHERE id=? AND freezed_at IS NOT NULL"
	existsStmt     = "SELECT EXISTS(SELECT 1 FROM categories WHERE id=?)"
)

func TestFreezeLiveRecord(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(freezeStmt).
		WithArgs(uint64(9), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Freeze(context.Background(), 4, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFreezeAlreadyFrozenRecord(t *testing.T) {
	// The guarded WHERE clause skips frozen rows, so freezing twice (or
	// freezing a missing id) touches nothing and reports ErrNotFound.
	store, mock := newMockStore(t)
	mock.ExpectExec(freezeStmt).
		WithArgs(uint64(9), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, store.Freeze(context.Background(), 4, 9), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreFrozenRecord(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(restoreStmt).
		WithArgs(uint64(9), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Restore(context.Background(), 4, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreNeverFrozenRecordFails(t *testing.T) {
	// Restore only applies to frozen rows; a live record was never frozen
	// and must not be "restored" into a version bump.
	store, mock := newMockStore(t)
	mock.ExpectExec(restoreStmt).
		WithArgs(uint64(9), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, store.Restore(context.Background(), 4, 9), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHardDeleteFrozenRecord(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(hardDeleteStmt).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.HardDelete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHardDeleteLiveRecordIsRefused(t *testing.T) {
	// The DELETE is scoped to frozen rows; when it touches nothing but the
	// id still exists, the record is live and must be frozen first.
	store, mock := newMockStore(t)
	mock.ExpectExec(hardDeleteStmt).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(existsStmt).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	assert.ErrorIs(t, store.HardDelete(context.Background(), 4), ErrMustBeFrozen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHardDeleteMissingRecord(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(hardDeleteStmt).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(existsStmt).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	assert.ErrorIs(t, store.HardDelete(context.Background(), 4), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
