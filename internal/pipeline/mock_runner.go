package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a mock implementation of Runner using testify/mock.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, text string) (Result, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(Result), args.Error(1)
}
