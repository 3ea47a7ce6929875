// Package dao defines data access object interfaces for storage abstraction.
// The DAO layer separates repository logic from engine-specific
// implementations (in-memory, SQL via GORM, MongoDB, Redis-cached).
package dao

import (
	"context"
)

// BaseDAO defines common operations for all DAOs.
// T is the entity type, ID is the identifier type.
type BaseDAO[T any, ID comparable] interface {
	// Save inserts or fully replaces an entity keyed by its ID.
	Save(ctx context.Context, entity *T) (*T, error)

	// FindByID retrieves an entity by its primary key.
	// Returns nil, nil if the entity is not found.
	FindByID(ctx context.Context, id ID) (*T, error)

	// FindAll retrieves every entity in implementation order.
	FindAll(ctx context.Context) ([]*T, error)

	// Delete removes an entity by its ID. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id ID) error

	// DeleteAll removes every entity.
	DeleteAll(ctx context.Context) error

	// Count returns the total number of entities.
	Count(ctx context.Context) (int64, error)
}
