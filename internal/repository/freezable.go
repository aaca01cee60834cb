package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/ecommerce-api/internal/utils"
)

// This file is the single place where the soft-delete invariant is
// enforced. Entity repositories never write `freezed_at IS NULL` by hand:
// default reads and writes compose their WHERE clause through scopeLive,
// archive reads go through scopeArchived, and every UPDATE builds its SET
// clause through setBuilder so the slug and version columns are maintained
// no matter which call-site performs the write.

// scopeLive conjoins the frozen-record exclusion with a caller-supplied
// WHERE clause. Archive access is a distinct code path (scopeArchived),
// not a filter flag, so an ordinary query can never opt back in by
// accident.
func scopeLive(where string) string {
	return where + " AND freezed_at IS NULL"
}

// scopeArchived restricts a WHERE clause to frozen records only.
func scopeArchived(where string) string {
	return where + " AND freezed_at IS NOT NULL"
}

// setBuilder accumulates column assignments for an UPDATE against a
// freezable table. Assigning a name-like column re-derives the slug in
// the same statement, and Clause always appends the version bump, so a
// successful mutation increments the counter by exactly one regardless
// of how many columns changed.
type setBuilder struct {
	assigns []string
	args    []any
}

func (b *setBuilder) Set(column string, value any) {
	b.assigns = append(b.assigns, column+"=?")
	b.args = append(b.args, value)
}

// SetName assigns a name-like column and the slug derived from it.
func (b *setBuilder) SetName(column, name string) {
	b.Set(column, name)
	b.Set("slug", utils.Slugify(name))
}

// SetSplitName assigns a display name stored as two columns (users) and
// the slug derived from the joined form.
func (b *setBuilder) SetSplitName(first, last string) {
	b.Set("first_name", first)
	b.Set("last_name", last)
	b.Set("slug", utils.Slugify(first+" "+last))
}

func (b *setBuilder) Empty() bool { return len(b.assigns) == 0 }

// Clause renders the final SET clause and its arguments.
func (b *setBuilder) Clause() (string, []any) {
	return strings.Join(append(b.assigns, "version=version+1"), ", "), b.args
}

// FreezableStore implements the freeze/restore/hard-delete state
// transitions shared by every soft-deletable table. Entity repositories
// embed it with their table name.
type FreezableStore struct {
	DB    *sql.DB
	Table string
}

// Freeze logically deletes a live record: sets freezed_at, clears
// restored_at and records the acting user. Freezing a record that is
// missing or already frozen reports ErrNotFound.
func (s *FreezableStore) Freeze(ctx context.Context, id, actor uint64) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE "+s.Table+" SET freezed_at=UTC_TIMESTAMP(), restored_at=NULL, updated_by=?, version=version+1 WHERE id=? AND freezed_at IS NULL",
		actor, id)
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

// Restore un-deletes a frozen record: clears freezed_at, sets restored_at
// and records the acting user. The record must currently be frozen;
// restoring a live or missing record reports ErrNotFound.
func (s *FreezableStore) Restore(ctx context.Context, id, actor uint64) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE "+s.Table+" SET restored_at=UTC_TIMESTAMP(), freezed_at=NULL, updated_by=?, version=version+1 WHERE id=? AND freezed_at IS NOT NULL",
		actor, id)
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

// HardDelete permanently removes a record, which is only permitted while
// it is frozen. A live record reports ErrMustBeFrozen; a missing one
// reports ErrNotFound.
func (s *FreezableStore) HardDelete(ctx context.Context, id uint64) error {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM "+s.Table+" WHERE id=? AND freezed_at IS NOT NULL", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := s.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM "+s.Table+" WHERE id=?)", id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrMustBeFrozen
		}
		return ErrNotFound
	}
	return nil
}
