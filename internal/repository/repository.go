package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cybershang/b2bed/internal/model"
)

// Package repository contains data access abstractions for the optional
// upload history. Implementations live in subpackages (e.g., postgres).

// UploadRepository defines persistence for upload records. No business
// logic here, strictly storage operations.
type UploadRepository interface {
	// Create inserts a new upload record and returns the stored row
	// (may include values set by database defaults).
	Create(ctx context.Context, rec *model.UploadRecord) (*model.UploadRecord, error)

	// FindByKey returns the record for a storage key.
	FindByKey(ctx context.Context, storageKey string) (*model.UploadRecord, error)

	// List returns a page of records, newest first, plus the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.UploadRecord], error)

	// DeleteByKey removes the record for a storage key. Returns nil if the
	// row was deleted or did not exist.
	DeleteByKey(ctx context.Context, storageKey string) error
}

// IsNotFound reports whether err means the requested row does not exist.
// Callers decide policy; a missing row is often not an error at all.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
