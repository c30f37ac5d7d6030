package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cybershang/b2bed/internal/model"
	"github.com/cybershang/b2bed/internal/service"
)

type MockUploaderService struct {
	mock.Mock
}

func (m *MockUploaderService) UploadBatch(ctx context.Context, items []model.UploadItem) ([]model.UploadResult, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UploadResult), args.Error(1)
}

func (m *MockUploaderService) RemoveBatch(ctx context.Context, items []model.RemovedItem) {
	m.Called(ctx, items)
}

func (m *MockUploaderService) History(ctx context.Context, limit, offset int) (*service.HistoryResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryResult), args.Error(1)
}
