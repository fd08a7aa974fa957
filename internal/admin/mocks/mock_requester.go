package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

type MockRequester struct {
	mock.Mock
}

func (m *MockRequester) Get(ctx context.Context, path string) (json.RawMessage, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockRequester) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	args := m.Called(ctx, path, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
