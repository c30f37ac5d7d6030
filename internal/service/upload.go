package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cybershang/b2bed/internal/b2"
	"github.com/cybershang/b2bed/internal/config"
	"github.com/cybershang/b2bed/internal/model"
	"github.com/cybershang/b2bed/internal/notify"
	"github.com/cybershang/b2bed/internal/repository"
)

// BackendType tags URLs produced by this storage backend in gallery-removal
// notifications; items with any other tag are not ours to delete.
const BackendType = "backblaze"

var (
	ErrNoItems         = errors.New("no items to upload")
	ErrHistoryDisabled = errors.New("upload history is not configured")
)

// HistoryResult is the service-level DTO for paginated upload records.
type HistoryResult struct {
	Items []model.UploadRecord `json:"data"`
	Total int                  `json:"total"`
}

// StorageClient is the subset of the B2 client the service drives.
type StorageClient interface {
	Authorize(ctx context.Context, creds b2.Credentials) (b2.Session, error)
	NewUploadLease(ctx context.Context, s b2.Session, bucketID string) (b2.UploadLease, error)
	Upload(ctx context.Context, lease b2.UploadLease, payload []byte, key, contentType string) (b2.StoredObject, error)
	Delete(ctx context.Context, s b2.Session, obj b2.StoredObject) (b2.DeleteOutcome, error)
	DeleteByName(ctx context.Context, s b2.Session, bucketID, key string) (b2.DeleteOutcome, error)
}

var _ StorageClient = (*b2.Client)(nil)

// UploaderService defines the use cases exposed to the host surface.
type UploaderService interface {
	// UploadBatch uploads the items sequentially under one session. An
	// authorization or lease failure aborts the whole batch; a per-file
	// upload failure marks that file's result failed, exhausts the current
	// lease, and the batch continues with a fresh one.
	UploadBatch(ctx context.Context, items []model.UploadItem) ([]model.UploadResult, error)

	// RemoveBatch deletes previously uploaded objects behind the given
	// gallery items. Failures are isolated per item and never propagate.
	RemoveBatch(ctx context.Context, items []model.RemovedItem)

	// History returns a page of recorded uploads, newest first.
	History(ctx context.Context, limit, offset int) (*HistoryResult, error)
}

// uploaderService is a concrete implementation of UploaderService. Each
// batch authorizes its own session; nothing is cached across batches.
type uploaderService struct {
	client   StorageClient
	repo     repository.UploadRepository // nil when history is disabled
	cfg      config.B2Config
	notifier notify.Notifier // optional
	log      zerolog.Logger
}

// NewUploaderService constructs an UploaderService. The bucket configuration
// is validated here, before any network call is ever made.
func NewUploaderService(client StorageClient, repo repository.UploadRepository, cfg config.B2Config, notifier notify.Notifier, logger zerolog.Logger) (UploaderService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &uploaderService{
		client:   client,
		repo:     repo,
		cfg:      cfg,
		notifier: notifier,
		log:      logger.With().Str("component", "uploader").Logger(),
	}, nil
}

func (s *uploaderService) credentials() b2.Credentials {
	return b2.Credentials{KeyID: s.cfg.KeyID, AppKey: s.cfg.AppKey}
}

func (s *uploaderService) UploadBatch(ctx context.Context, items []model.UploadItem) ([]model.UploadResult, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	session, err := s.client.Authorize(ctx, s.credentials())
	if err != nil {
		notify.Send(s.notifier, "Upload failed", "could not authorize against the storage account")
		return nil, fmt.Errorf("authorize: %w", err)
	}

	lease, err := s.client.NewUploadLease(ctx, session, s.cfg.BucketID)
	if err != nil {
		notify.Send(s.notifier, "Upload failed", "could not obtain an upload lease")
		return nil, fmt.Errorf("acquire upload lease: %w", err)
	}

	results := make([]model.UploadResult, 0, len(items))
	leaseValid := true

	for _, item := range items {
		if !leaseValid {
			// The previous upload failed; the remote side may have
			// invalidated the lease, so a fresh one is required.
			lease, err = s.client.NewUploadLease(ctx, session, s.cfg.BucketID)
			if err != nil {
				notify.Send(s.notifier, "Upload failed", "could not obtain an upload lease")
				return results, fmt.Errorf("acquire upload lease: %w", err)
			}
			leaseValid = true
		}

		ext := item.Extension
		if ext == "" {
			ext = path.Ext(item.OriginalName)
		}
		key := b2.UniqueKey(item.OriginalName, s.cfg.PathPrefix)
		contentType := b2.ContentTypeFor(ext)

		obj, err := s.client.Upload(ctx, lease, item.Payload, key, contentType)
		if err != nil {
			s.log.Error().Err(err).Str("file", item.OriginalName).Msg("upload failed")
			results = append(results, model.UploadResult{
				OriginalName: item.OriginalName,
				Error:        err.Error(),
			})
			leaseValid = false
			continue
		}

		publicURL := b2.BuildURL(session, s.cfg.BucketName, key, s.cfg.CustomDomain)
		results = append(results, model.UploadResult{
			OriginalName: item.OriginalName,
			StorageKey:   key,
			URL:          publicURL,
			Size:         obj.Size,
			ContentType:  contentType,
		})
		s.recordUpload(ctx, item.OriginalName, key, contentType, publicURL, obj)
	}

	return results, nil
}

// recordUpload persists a history row. History is advisory: a failed insert
// is logged, never fails the upload that already succeeded.
func (s *uploaderService) recordUpload(ctx context.Context, name, key, contentType, url string, obj b2.StoredObject) {
	if s.repo == nil {
		return
	}
	_, err := s.repo.Create(ctx, &model.UploadRecord{
		ID:          uuid.New().String(),
		FileName:    name,
		StorageKey:  key,
		ObjectID:    obj.ID,
		Size:        obj.Size,
		ContentType: contentType,
		URL:         url,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to record upload history")
	}
}

func (s *uploaderService) RemoveBatch(ctx context.Context, items []model.RemovedItem) {
	mine := make([]model.RemovedItem, 0, len(items))
	for _, item := range items {
		if item.Type == BackendType {
			mine = append(mine, item)
		}
	}
	if len(mine) == 0 {
		return
	}

	session, err := s.client.Authorize(ctx, s.credentials())
	if err != nil {
		s.log.Error().Err(err).Msg("remove sync: authorization failed")
		notify.Send(s.notifier, "Remove sync failed", "could not authorize against the storage account")
		return
	}

	for _, item := range mine {
		key, err := b2.ParseStorageKey(item.URL, s.cfg.BucketName, s.cfg.CustomDomain)
		if err != nil {
			s.log.Warn().Err(err).Str("url", item.URL).Msg("remove sync: skipping unparseable url")
			continue
		}

		out, err := s.deleteObject(ctx, session, key)
		if err != nil {
			// Isolation: one item's failure never stops the rest of the batch.
			s.log.Error().Err(err).Str("key", key).Msg("remove sync: delete failed")
			continue
		}
		s.log.Info().Str("key", key).Str("outcome", out.Message).Msg("remove sync: object removed")

		if s.repo != nil {
			if err := s.repo.DeleteByKey(ctx, key); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("failed to drop upload history row")
			}
		}
	}
}

// deleteObject removes the stored object behind key. A history record that
// still carries the object id lets us delete by id directly, skipping the
// remote listing; stateless mode or a missing record falls back to
// list-then-delete.
func (s *uploaderService) deleteObject(ctx context.Context, session b2.Session, key string) (b2.DeleteOutcome, error) {
	if s.repo != nil {
		rec, err := s.repo.FindByKey(ctx, key)
		switch {
		case err == nil && rec.ObjectID != "":
			return s.client.Delete(ctx, session, b2.StoredObject{ID: rec.ObjectID, Name: key, Size: rec.Size})
		case err != nil && !repository.IsNotFound(err):
			s.log.Warn().Err(err).Str("key", key).Msg("history lookup failed, listing remotely")
		}
	}
	return s.client.DeleteByName(ctx, session, s.cfg.BucketID, key)
}

func (s *uploaderService) History(ctx context.Context, limit, offset int) (*HistoryResult, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &HistoryResult{Items: res.Items, Total: res.Total}, nil
}
