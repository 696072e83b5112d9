package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/simmer-app/simmer-backend/internal/types"
)

// MockRepository is a mock implementation of repository.Repository
type MockRepository struct {
	mock.Mock
}

// Load mocks the Load method
func (m *MockRepository) Load(ctx context.Context) ([]types.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recipe), args.Error(1)
}

// Save mocks the Save method
func (m *MockRepository) Save(ctx context.Context, recipes []types.Recipe) error {
	args := m.Called(ctx, recipes)
	return args.Error(0)
}

// Subscribe mocks the Subscribe method
func (m *MockRepository) Subscribe(ctx context.Context, fn func([]types.Recipe)) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// Close mocks the Close method
func (m *MockRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
