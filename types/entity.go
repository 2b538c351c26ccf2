// Package types provides common types used across Brigade.
package types

import "time"

// Entity is the base type for all Brigade entities with timestamps.
// Embed this in your domain types to get automatic timestamp handling.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates a new Entity with current timestamps.
func NewEntity() Entity {
	now := time.Now().UTC()
	return Entity{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp to now.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// Versioned is the optimistic-concurrency primitive shared by every mutable
// Brigade entity. A write must present the version it last read; the store
// rejects the write with a conflict when the stored version has moved, and
// increments the version by exactly 1 on success. Versions start at 1.
type Versioned struct {
	Version int64 `json:"version"`
}

// NewVersioned returns the initial version stamp for a freshly created entity.
func NewVersioned() Versioned {
	return Versioned{Version: 1}
}

// Bump advances the version counter after a successful write. Stores call
// this once per accepted mutation so the in-memory entity mirrors the row.
func (v *Versioned) Bump() {
	v.Version++
}
