package model

import "time"

// Freezable carries the soft-delete and change-tracking columns shared by
// every logically deletable entity (users, categories, products).  A record
// with FreezedAt set is considered deleted: default reads exclude it, and
// only an explicit archive query can see it.  RestoredAt records the most
// recent un-delete.  Version is bumped by exactly one on every successful
// mutation, and Slug is re-derived from the entity's name-like field
// whenever that field changes.
//
// Fields:
//  Slug       – URL-safe form of the entity's name, maintained by the repository layer.
//  Version    – optimistic change counter, incremented on every write.
//  UpdatedBy  – user ID of the last actor, nil when never updated.
//  FreezedAt  – when the record was logically deleted (nil = live).
//  RestoredAt – when the record was last restored (nil = never restored).
type Freezable struct {
	Slug       string     // <table>.slug
	Version    uint64     // <table>.version
	UpdatedBy  *uint64    // <table>.updated_by (nullable)
	FreezedAt  *time.Time // <table>.freezed_at (nullable)
	RestoredAt *time.Time // <table>.restored_at (nullable)
}

// Frozen reports whether the record is currently logically deleted.
func (f Freezable) Frozen() bool { return f.FreezedAt != nil }
