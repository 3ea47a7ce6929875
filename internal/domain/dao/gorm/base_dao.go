// Package gorm provides GORM-based DAO implementations for SQL databases
// (PostgreSQL, MySQL, SQLite).
package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// baseGormDAO provides common GORM operations for entities keyed by a
// string primary key named "id".
type baseGormDAO[T any] struct {
	db *gorm.DB
}

// newBaseGormDAO creates a new base GORM DAO instance.
func newBaseGormDAO[T any](db *gorm.DB) *baseGormDAO[T] {
	return &baseGormDAO[T]{db: db}
}

// upsert inserts the entity or overwrites every column of the existing row.
func (d *baseGormDAO[T]) upsert(ctx context.Context, entity *T) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(entity).Error
}

// FindByID retrieves an entity by its primary key.
// Returns nil, nil if the entity is not found.
func (d *baseGormDAO[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Delete removes an entity by its ID.
func (d *baseGormDAO[T]) Delete(ctx context.Context, id string) error {
	var entity T
	return d.db.WithContext(ctx).Where("id = ?", id).Delete(&entity).Error
}

// DeleteAll removes every row of the entity table.
func (d *baseGormDAO[T]) DeleteAll(ctx context.Context) error {
	var entity T
	return d.db.WithContext(ctx).Where("1 = 1").Delete(&entity).Error
}

// Count returns the total number of entities.
func (d *baseGormDAO[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var model T
	err := d.db.WithContext(ctx).Model(&model).Count(&count).Error
	return count, err
}

// getDB returns the underlying GORM database instance.
func (d *baseGormDAO[T]) getDB() *gorm.DB {
	return d.db
}
