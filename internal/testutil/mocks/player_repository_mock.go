package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/samfeldman824/putr/internal/models"
	"github.com/samfeldman824/putr/internal/repository"
)

// MockPlayerRepository is a mock implementation of repository.PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Get(ctx context.Context, name string) (*models.PlayerStats, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerStats), args.Error(1)
}

func (m *MockPlayerRepository) GetMultiple(ctx context.Context, names []string) (map[string]models.PlayerStats, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.PlayerStats), args.Error(1)
}

func (m *MockPlayerRepository) Set(ctx context.Context, name string, record models.PlayerStats) error {
	args := m.Called(ctx, name, record)
	return args.Error(0)
}

func (m *MockPlayerRepository) FindByNicknames(ctx context.Context, nicknames []string) (*repository.MatchResult, error) {
	args := m.Called(ctx, nicknames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MatchResult), args.Error(1)
}

func (m *MockPlayerRepository) Backup(ctx context.Context, names []string) (map[string]models.PlayerStats, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.PlayerStats), args.Error(1)
}

func (m *MockPlayerRepository) Restore(ctx context.Context, backup map[string]models.PlayerStats) error {
	args := m.Called(ctx, backup)
	return args.Error(0)
}

func (m *MockPlayerRepository) BatchUpdate(ctx context.Context, records map[string]models.PlayerStats) (*repository.BatchResult, error) {
	args := m.Called(ctx, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BatchResult), args.Error(1)
}

func (m *MockPlayerRepository) List(ctx context.Context) (map[string]models.PlayerStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.PlayerStats), args.Error(1)
}

func (m *MockPlayerRepository) Watch(ctx context.Context) (repository.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.Subscription), args.Error(1)
}
