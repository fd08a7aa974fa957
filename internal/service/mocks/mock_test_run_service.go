package mocks

import (
	"context"
	"encoding/json"
	"io"

	"ariesctl/internal/model"
	"ariesctl/internal/service"
	"ariesctl/internal/storage"
	"github.com/stretchr/testify/mock"
)

type MockTestRunService struct {
	mock.Mock
}

func (m *MockTestRunService) Run(ctx context.Context, connectionID string, example json.RawMessage) (*service.RunResult, error) {
	args := m.Called(ctx, connectionID, example)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RunResult), args.Error(1)
}

func (m *MockTestRunService) List(ctx context.Context, connectionID string, limit, offset int) (*service.TestRunListResult, error) {
	args := m.Called(ctx, connectionID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TestRunListResult), args.Error(1)
}

func (m *MockTestRunService) Get(ctx context.Context, id string) (*model.TestRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TestRun), args.Error(1)
}

func (m *MockTestRunService) Response(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockTestRunService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
