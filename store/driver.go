package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// UserProfile model related methods.
	//
	// EnsureUserProfile creates a default row for the user if absent. It is
	// idempotent and must be called before UpdateUserProfile, which errors
	// when it matches zero rows.
	EnsureUserProfile(ctx context.Context, userID int32) error
	GetUserProfile(ctx context.Context, find *FindUserProfile) (*UserProfile, error)
	// UpdateUserProfile applies the update as one conditional statement keyed
	// by user id and returns the matched row's id as write confirmation.
	UpdateUserProfile(ctx context.Context, update *UpdateUserProfile) (int32, error)
}
