package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ecessbot/models"
)

func commandResult(args mock.Arguments) (*models.CommandResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommandResult), args.Error(1)
}

// MockRoleMappingUseCase is a mock implementation of RoleMappingUseCase
type MockRoleMappingUseCase struct {
	mock.Mock
}

func (m *MockRoleMappingUseCase) BeginSession(
	ctx context.Context,
	inv models.Invocation,
	channelID, messageID string,
	unique bool,
) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, channelID, messageID, unique))
}

func (m *MockRoleMappingUseCase) AddEntry(
	ctx context.Context,
	inv models.Invocation,
	emote models.Emote,
	roleID string,
) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, emote, roleID))
}

func (m *MockRoleMappingUseCase) CommitSession(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv))
}

func (m *MockRoleMappingUseCase) AbortSession(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv))
}

func (m *MockRoleMappingUseCase) ListMappings(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv))
}

func (m *MockRoleMappingUseCase) DeleteMapping(
	ctx context.Context,
	inv models.Invocation,
	channelID, messageID string,
) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, channelID, messageID))
}

// MockPinsUseCase is a mock implementation of PinsUseCase
type MockPinsUseCase struct {
	mock.Mock
}

func (m *MockPinsUseCase) Pin(ctx context.Context, inv models.Invocation, threadID string) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, threadID))
}

func (m *MockPinsUseCase) Unpin(ctx context.Context, inv models.Invocation, threadID string) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, threadID))
}

func (m *MockPinsUseCase) List(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv))
}

// MockCoursesUseCase is a mock implementation of CoursesUseCase
type MockCoursesUseCase struct {
	mock.Mock
}

func (m *MockCoursesUseCase) RegisterBase(
	ctx context.Context,
	inv models.Invocation,
	yearLevel, channelID string,
) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, yearLevel, channelID))
}

func (m *MockCoursesUseCase) CreateThread(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, course))
}

func (m *MockCoursesUseCase) DeleteThread(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, course))
}

func (m *MockCoursesUseCase) ImportFromSchedule(ctx context.Context, inv models.Invocation, maxCourses int) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, maxCourses))
}

func (m *MockCoursesUseCase) Join(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, course))
}

func (m *MockCoursesUseCase) Leave(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, course))
}

func (m *MockCoursesUseCase) List(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv))
}

func (m *MockCoursesUseCase) Search(ctx context.Context, inv models.Invocation, query string) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, query))
}

func (m *MockCoursesUseCase) Info(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error) {
	return commandResult(m.Called(ctx, inv, course))
}

// MockReactionRolesUseCase is a mock implementation of ReactionRolesUseCase
type MockReactionRolesUseCase struct {
	mock.Mock
}

func (m *MockReactionRolesUseCase) ProcessReactionAdded(ctx context.Context, event models.ReactionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockReactionRolesUseCase) ProcessReactionRemoved(ctx context.Context, event models.ReactionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockThreadReconciler is a mock implementation of ThreadReconciler
type MockThreadReconciler struct {
	mock.Mock
}

func (m *MockThreadReconciler) Domain() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockThreadReconciler) Tracks(ctx context.Context, threadID string) (bool, error) {
	args := m.Called(ctx, threadID)
	return args.Bool(0), args.Error(1)
}

func (m *MockThreadReconciler) ReconcileThread(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}
