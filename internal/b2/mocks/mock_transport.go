package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cybershang/b2bed/internal/b2"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) RoundTrip(ctx context.Context, req *b2.Request) (any, error) {
	args := m.Called(ctx, req)
	return args.Get(0), args.Error(1)
}
