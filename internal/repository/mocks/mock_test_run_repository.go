package mocks

import (
	"context"

	"ariesctl/internal/model"
	"ariesctl/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockTestRunRepository struct {
	mock.Mock
}

func (m *MockTestRunRepository) Create(ctx context.Context, run *model.TestRun) (*model.TestRun, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TestRun), args.Error(1)
}

func (m *MockTestRunRepository) FindByID(ctx context.Context, id string) (*model.TestRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TestRun), args.Error(1)
}

func (m *MockTestRunRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.TestRun], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.TestRun]), args.Error(1)
}

func (m *MockTestRunRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
