package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cybershang/b2bed/internal/b2"
	"github.com/cybershang/b2bed/internal/config"
	"github.com/cybershang/b2bed/internal/model"
	"github.com/cybershang/b2bed/internal/notify"
	"github.com/cybershang/b2bed/internal/repository"
	repoMocks "github.com/cybershang/b2bed/internal/repository/mocks"
)

type mockStorageClient struct {
	mock.Mock
}

func (m *mockStorageClient) Authorize(ctx context.Context, creds b2.Credentials) (b2.Session, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(b2.Session), args.Error(1)
}

func (m *mockStorageClient) NewUploadLease(ctx context.Context, s b2.Session, bucketID string) (b2.UploadLease, error) {
	args := m.Called(ctx, s, bucketID)
	return args.Get(0).(b2.UploadLease), args.Error(1)
}

func (m *mockStorageClient) Upload(ctx context.Context, lease b2.UploadLease, payload []byte, key, contentType string) (b2.StoredObject, error) {
	args := m.Called(ctx, lease, payload, key, contentType)
	return args.Get(0).(b2.StoredObject), args.Error(1)
}

func (m *mockStorageClient) Delete(ctx context.Context, s b2.Session, obj b2.StoredObject) (b2.DeleteOutcome, error) {
	args := m.Called(ctx, s, obj)
	return args.Get(0).(b2.DeleteOutcome), args.Error(1)
}

func (m *mockStorageClient) DeleteByName(ctx context.Context, s b2.Session, bucketID, key string) (b2.DeleteOutcome, error) {
	args := m.Called(ctx, s, bucketID, key)
	return args.Get(0).(b2.DeleteOutcome), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(title, body string) {
	m.Called(title, body)
}

var (
	testCfg = config.B2Config{
		KeyID:      "key-id",
		AppKey:     "secret",
		BucketID:   "bucket-1",
		BucketName: "pics",
	}
	testSession = b2.Session{
		APIURL:      "https://api001.example.com",
		DownloadURL: "https://f001.example.com",
		Token:       "session-tok",
	}
	testLease = b2.UploadLease{UploadURL: "https://pod.example.com/upload", Token: "lease-tok"}
)

func newTestService(t *testing.T, client StorageClient, repo *repoMocks.MockUploadRepository, notifier *mockNotifier) UploaderService {
	t.Helper()
	// Typed nils must not leak into the interface fields, or the service
	// would believe history/notifications are configured.
	var r repository.UploadRepository
	if repo != nil {
		r = repo
	}
	var n notify.Notifier
	if notifier != nil {
		n = notifier
	}
	svc, err := NewUploaderService(client, r, testCfg, n, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestNewUploaderService_ConfigValidation(t *testing.T) {
	bad := testCfg
	bad.AppKey = ""

	_, err := NewUploaderService(new(mockStorageClient), nil, bad, nil, zerolog.Nop())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "B2_APP_KEY")
}

func TestUploaderService_UploadBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch", func(t *testing.T) {
		svc := newTestService(t, new(mockStorageClient), nil, nil)
		_, err := svc.UploadBatch(ctx, nil)
		assert.ErrorIs(t, err, ErrNoItems)
	})

	t.Run("happy path reuses one lease and records history", func(t *testing.T) {
		client := new(mockStorageClient)
		repo := new(repoMocks.MockUploadRepository)

		client.On("Authorize", ctx, b2.Credentials{KeyID: "key-id", AppKey: "secret"}).
			Return(testSession, nil).Once()
		client.On("NewUploadLease", ctx, testSession, "bucket-1").
			Return(testLease, nil).Once()
		client.On("Upload", ctx, testLease, mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasSuffix(key, ".png")
		}), "image/png").
			Return(b2.StoredObject{ID: "4_z1", Size: 3}, nil).Twice()
		repo.On("Create", ctx, mock.MatchedBy(func(rec *model.UploadRecord) bool {
			return rec.ObjectID == "4_z1" && rec.StorageKey != "" && rec.URL != ""
		})).Return(&model.UploadRecord{}, nil).Twice()

		svc := newTestService(t, client, repo, nil)

		results, err := svc.UploadBatch(ctx, []model.UploadItem{
			{Payload: []byte("aaa"), OriginalName: "a.png"},
			{Payload: []byte("bbb"), OriginalName: "b.png"},
		})

		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, res := range results {
			assert.Empty(t, res.Error)
			assert.True(t, strings.HasPrefix(res.URL, "https://f001.example.com/file/pics/"), res.URL)
			assert.Equal(t, "image/png", res.ContentType)
		}
		client.AssertNumberOfCalls(t, "NewUploadLease", 1)
		client.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("authorize failure aborts the batch and notifies", func(t *testing.T) {
		client := new(mockStorageClient)
		notifier := new(mockNotifier)

		client.On("Authorize", ctx, mock.Anything).
			Return(b2.Session{}, errors.New("bad credentials"))
		notifier.On("Notify", "Upload failed", mock.Anything).Once()

		svc := newTestService(t, client, nil, notifier)

		_, err := svc.UploadBatch(ctx, []model.UploadItem{{Payload: []byte("x"), OriginalName: "a.png"}})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "authorize")
		notifier.AssertExpectations(t)
	})

	t.Run("initial lease failure aborts the batch", func(t *testing.T) {
		client := new(mockStorageClient)
		client.On("Authorize", ctx, mock.Anything).Return(testSession, nil)
		client.On("NewUploadLease", ctx, testSession, "bucket-1").
			Return(b2.UploadLease{}, errors.New("bad bucket"))

		svc := newTestService(t, client, nil, nil)

		_, err := svc.UploadBatch(ctx, []model.UploadItem{{Payload: []byte("x"), OriginalName: "a.png"}})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "upload lease")
		client.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("per-file failure continues with a fresh lease", func(t *testing.T) {
		client := new(mockStorageClient)
		freshLease := b2.UploadLease{UploadURL: "https://pod2.example.com/upload", Token: "lease-tok-2"}

		client.On("Authorize", ctx, mock.Anything).Return(testSession, nil).Once()
		client.On("NewUploadLease", ctx, testSession, "bucket-1").
			Return(testLease, nil).Once()
		// First file succeeds, second fails on the same lease.
		client.On("Upload", ctx, testLease, mock.Anything, mock.Anything, mock.Anything).
			Return(b2.StoredObject{ID: "4_z1", Size: 1}, nil).Once()
		client.On("Upload", ctx, testLease, mock.Anything, mock.Anything, mock.Anything).
			Return(b2.StoredObject{}, errors.New("checksum rejected")).Once()
		// The failure exhausts the lease; the third file needs a fresh one.
		client.On("NewUploadLease", ctx, testSession, "bucket-1").
			Return(freshLease, nil).Once()
		client.On("Upload", ctx, freshLease, mock.Anything, mock.Anything, mock.Anything).
			Return(b2.StoredObject{ID: "4_z3", Size: 1}, nil).Once()

		svc := newTestService(t, client, nil, nil)

		results, err := svc.UploadBatch(ctx, []model.UploadItem{
			{Payload: []byte("1"), OriginalName: "a.png"},
			{Payload: []byte("2"), OriginalName: "b.png"},
			{Payload: []byte("3"), OriginalName: "c.png"},
		})

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Empty(t, results[0].Error)
		assert.Contains(t, results[1].Error, "checksum rejected")
		assert.Empty(t, results[1].URL)
		assert.Empty(t, results[2].Error)
		client.AssertNumberOfCalls(t, "NewUploadLease", 2)
		client.AssertExpectations(t)
	})

	t.Run("custom domain shapes the public url", func(t *testing.T) {
		client := new(mockStorageClient)
		client.On("Authorize", ctx, mock.Anything).Return(testSession, nil)
		client.On("NewUploadLease", ctx, mock.Anything, mock.Anything).Return(testLease, nil)
		client.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(b2.StoredObject{ID: "4_z1", Size: 1}, nil)

		cfg := testCfg
		cfg.CustomDomain = "https://cdn.example.com/"
		svc, err := NewUploaderService(client, nil, cfg, nil, zerolog.Nop())
		require.NoError(t, err)

		results, err := svc.UploadBatch(ctx, []model.UploadItem{{Payload: []byte("x"), OriginalName: "a.png"}})

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(results[0].URL, "https://cdn.example.com/"), results[0].URL)
	})
}

func TestUploaderService_RemoveBatch(t *testing.T) {
	ctx := context.Background()
	nativeURL := "https://f001.example.com/file/pics/a_1_aaaaaa.png"

	t.Run("only matching backend items are processed", func(t *testing.T) {
		client := new(mockStorageClient)
		client.On("Authorize", ctx, mock.Anything).Return(testSession, nil).Once()
		client.On("DeleteByName", ctx, testSession, "bucket-1", "a_1_aaaaaa.png").
			Return(b2.DeleteOutcome{Deleted: true, Message: "deleted"}, nil).Once()

		svc := newTestService(t, client, nil, nil)

		svc.RemoveBatch(ctx, []model.RemovedItem{
			{Type: "smms", URL: "https://sm.ms/x.png"},
			{Type: BackendType, URL: nativeURL},
		})

		client.AssertNumberOfCalls(t, "DeleteByName", 1)
		client.AssertExpectations(t)
	})

	t.Run("no matching items skips authorization entirely", func(t *testing.T) {
		client := new(mockStorageClient)
		svc := newTestService(t, client, nil, nil)

		svc.RemoveBatch(ctx, []model.RemovedItem{{Type: "smms", URL: "https://sm.ms/x.png"}})

		client.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
	})

	t.Run("one item's failure never stops the rest", func(t *testing.T) {
		client := new(mockStorageClient)
		client.On("Authorize", ctx, mock.Anything).Return(testSession, nil).Once()
		client.On("DeleteByName", ctx, testSession, "bucket-1", "a_1_aaaaaa.png").
			Return(b2.DeleteOutcome{}, errors.New("expired token")).Once()
		client.On("DeleteByName", ctx, testSession, "bucket-1", "b_2_bbbbbb.png").
			Return(b2.DeleteOutcome{Deleted: true, Message: "already absent"}, nil).Once()

		svc := newTestService(t, client, nil, nil)

		svc.RemoveBatch(ctx, []model.RemovedItem{
			{Type: BackendType, URL: nativeURL},
			{Type: BackendType, URL: "https://f001.example.com/file/pics/b_2_bbbbbb.png"},
		})

		client.AssertExpectations(t)
	})

	t.Run("unparseable url is skipped, not fatal", func(t *testing.T) {
		client := new(mockStorageClient)
		client.On("Authorize", ctx, mock.Anything).Return(testSession, nil).Once()
		client.On("DeleteByName", ctx, testSession, "bucket-1", "b_2_bbbbbb.png").
			Return(b2.DeleteOutcome{Deleted: true}, nil).Once()

		svc := newTestService(t, client, nil, nil)

		svc.RemoveBatch(ctx, []model.RemovedItem{
			{Type: BackendType, URL: "https://elsewhere.example.com/not-ours.png"},
			{Type: BackendType, URL: "https://f001.example.com/file/pics/b_2_bbbbbb.png"},
		})

		client.AssertNumberOfCalls(t, "DeleteByName", 1)
	})

	t.Run("history record enables direct delete by object id", func(t *testing.T) {
		client := new(mockStorageClient)
		repo := new(repoMocks.MockUploadRepository)
		client.On("Authorize", ctx, mock.Anything).Return(testSession, nil)
		repo.On("FindByKey", ctx, "a_1_aaaaaa.png").
			Return(&model.UploadRecord{StorageKey: "a_1_aaaaaa.png", ObjectID: "4_z1", Size: 42}, nil).Once()
		client.On("Delete", ctx, testSession, b2.StoredObject{ID: "4_z1", Name: "a_1_aaaaaa.png", Size: 42}).
			Return(b2.DeleteOutcome{Deleted: true, Message: "deleted"}, nil).Once()
		repo.On("DeleteByKey", ctx, "a_1_aaaaaa.png").Return(nil).Once()

		svc := newTestService(t, client, repo, nil)

		svc.RemoveBatch(ctx, []model.RemovedItem{{Type: BackendType, URL: nativeURL}})

		// The object id came from history, so no remote listing was needed.
		client.AssertNotCalled(t, "DeleteByName", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		client.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("missing history row falls back to remote listing", func(t *testing.T) {
		client := new(mockStorageClient)
		repo := new(repoMocks.MockUploadRepository)
		client.On("Authorize", ctx, mock.Anything).Return(testSession, nil)
		repo.On("FindByKey", ctx, "a_1_aaaaaa.png").Return(nil, sql.ErrNoRows).Once()
		client.On("DeleteByName", ctx, testSession, "bucket-1", "a_1_aaaaaa.png").
			Return(b2.DeleteOutcome{Deleted: true}, nil).Once()
		repo.On("DeleteByKey", ctx, "a_1_aaaaaa.png").Return(nil).Once()

		svc := newTestService(t, client, repo, nil)

		svc.RemoveBatch(ctx, []model.RemovedItem{{Type: BackendType, URL: nativeURL}})

		client.AssertExpectations(t)
		repo.AssertExpectations(t)
	})
}

func TestUploaderService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without a repository", func(t *testing.T) {
		svc := newTestService(t, new(mockStorageClient), nil, nil)
		_, err := svc.History(ctx, 10, 0)
		assert.ErrorIs(t, err, ErrHistoryDisabled)
	})

	t.Run("limit and offset defaults", func(t *testing.T) {
		repo := new(repoMocks.MockUploadRepository)
		repo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.UploadRecord]{
				Items: []model.UploadRecord{{StorageKey: "a_1_aaaaaa.png"}},
				Total: 1,
			}, nil).Once()

		svc := newTestService(t, new(mockStorageClient), repo, nil)

		res, err := svc.History(ctx, 0, -5)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		require.Len(t, res.Items, 1)
		repo.AssertExpectations(t)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		repo := new(repoMocks.MockUploadRepository)
		repo.On("List", ctx, repository.PageQuery{Limit: 25, Offset: 50}).
			Return(nil, errors.New("connection reset")).Once()

		svc := newTestService(t, new(mockStorageClient), repo, nil)

		_, err := svc.History(ctx, 25, 50)

		assert.Error(t, err)
		repo.AssertExpectations(t)
	})
}
