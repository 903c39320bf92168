package model

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockInvoker is a mock implementation of Invoker using testify/mock.
type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, endpoint Endpoint, payload any, maxRetries int) (json.RawMessage, error) {
	args := m.Called(ctx, endpoint, payload, maxRetries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockTransport is a mock implementation of Transport using testify/mock.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, endpoint Endpoint, payload any) (json.RawMessage, error) {
	args := m.Called(ctx, endpoint, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
