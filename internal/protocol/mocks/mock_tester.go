package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

type MockTester struct {
	mock.Mock
}

func (m *MockTester) TestProtocol(ctx context.Context, connectionID string, example any) (json.RawMessage, error) {
	args := m.Called(ctx, connectionID, example)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
