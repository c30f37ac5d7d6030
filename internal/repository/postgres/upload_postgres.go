package postgres

import (
	"context"
	"database/sql"

	"github.com/cybershang/b2bed/internal/model"
	"github.com/cybershang/b2bed/internal/repository"
)

// UploadPostgres is a PostgreSQL implementation of repository.UploadRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UploadPostgres struct {
	db *sql.DB
}

// NewUploadPostgres creates a new UploadPostgres repository.
func NewUploadPostgres(db *sql.DB) *UploadPostgres {
	return &UploadPostgres{db: db}
}

var _ repository.UploadRepository = (*UploadPostgres)(nil)

const uploadColumns = `id, file_name, storage_key, object_id, size, content_type, url, created_at`

func scanUpload(row interface{ Scan(...any) error }) (*model.UploadRecord, error) {
	var rec model.UploadRecord
	if err := row.Scan(
		&rec.ID,
		&rec.FileName,
		&rec.StorageKey,
		&rec.ObjectID,
		&rec.Size,
		&rec.ContentType,
		&rec.URL,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts a new upload row and returns the stored record.
func (r *UploadPostgres) Create(ctx context.Context, rec *model.UploadRecord) (*model.UploadRecord, error) {
	const q = `
		INSERT INTO uploads (id, file_name, storage_key, object_id, size, content_type, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + uploadColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.FileName,
		rec.StorageKey,
		rec.ObjectID,
		rec.Size,
		rec.ContentType,
		rec.URL,
		rec.CreatedAt,
	)
	return scanUpload(row)
}

// FindByKey fetches a single upload record by its storage key.
func (r *UploadPostgres) FindByKey(ctx context.Context, storageKey string) (*model.UploadRecord, error) {
	const q = `SELECT ` + uploadColumns + ` FROM uploads WHERE storage_key = $1`
	return scanUpload(r.db.QueryRowContext(ctx, q, storageKey))
}

// List returns upload records using LIMIT/OFFSET pagination and a total count.
func (r *UploadPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.UploadRecord], error) {
	const qCount = `SELECT COUNT(*) FROM uploads`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + uploadColumns + `
		FROM uploads
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.UploadRecord, 0)
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.UploadRecord]{Items: items, Total: total}, nil
}

// DeleteByKey removes the row for a storage key; missing rows are not an error.
func (r *UploadPostgres) DeleteByKey(ctx context.Context, storageKey string) error {
	const q = `DELETE FROM uploads WHERE storage_key = $1`
	_, err := r.db.ExecContext(ctx, q, storageKey)
	return err
}
