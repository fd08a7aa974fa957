package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockActivityChecker struct {
	mock.Mock
}

func (m *MockActivityChecker) IsActive(ctx context.Context, connectionID string) (bool, error) {
	args := m.Called(ctx, connectionID)
	return args.Bool(0), args.Error(1)
}
