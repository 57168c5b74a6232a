// Package resource holds the lookup and delete helpers shared by the entity
// services. Every helper reports a missing row as apperrors.ErrNotFound.
package resource

import (
	"context"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"gorm.io/gorm"
)

// Get loads the row of type T with the given id, preloading the named
// associations. what names the entity in the not-found message.
func Get[T any](ctx context.Context, db *gorm.DB, id, what string, preloads ...string) (T, error) {
	var row T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&row, "id = ?", id).Error; err != nil {
		return row, apperrors.FromDB(err, what)
	}
	return row, nil
}

// Exists returns a NotFound error unless a row of type T has the given id
func Exists[T any](ctx context.Context, db *gorm.DB, id, what string) error {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFound("%s not found", what)
	}
	return nil
}

// ExistsIfSet is Exists for optional references. A nil or empty id passes.
func ExistsIfSet[T any](ctx context.Context, db *gorm.DB, id *string, what string) error {
	if id == nil || *id == "" {
		return nil
	}
	return Exists[T](ctx, db, *id, what)
}

// Delete hard-deletes the row of type T with the given id
func Delete[T any](ctx context.Context, db *gorm.DB, id, what string) error {
	result := db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return apperrors.FromDB(result.Error, what)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("%s not found", what)
	}
	return nil
}
