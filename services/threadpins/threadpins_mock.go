package threadpins

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockThreadPinsService is a mock implementation of the ThreadPinsService interface
type MockThreadPinsService struct {
	mock.Mock
}

func (m *MockThreadPinsService) Pin(ctx context.Context, guildID, threadID string) error {
	args := m.Called(ctx, guildID, threadID)
	return args.Error(0)
}

func (m *MockThreadPinsService) Unpin(ctx context.Context, guildID, threadID string) error {
	args := m.Called(ctx, guildID, threadID)
	return args.Error(0)
}

func (m *MockThreadPinsService) ListPins(ctx context.Context, guildID string) ([]string, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockThreadPinsService) IsPinned(ctx context.Context, threadID string) (bool, error) {
	args := m.Called(ctx, threadID)
	return args.Bool(0), args.Error(1)
}

func (m *MockThreadPinsService) TrackedThreads(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockThreadPinsService) PruneThread(ctx context.Context, threadID string) (bool, error) {
	args := m.Called(ctx, threadID)
	return args.Bool(0), args.Error(1)
}

func (m *MockThreadPinsService) RepairIfTracked(
	ctx context.Context,
	threadID string,
	repair func(ctx context.Context) error,
) (bool, error) {
	args := m.Called(ctx, threadID)
	return args.Bool(0), args.Error(1)
}
