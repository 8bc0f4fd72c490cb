package handlers

import (
	"context"

	"ecessbot/models"
)

// The use cases the handlers drive. Implemented by the packages under usecases/.

type RoleMappingUseCase interface {
	BeginSession(ctx context.Context, inv models.Invocation, channelID, messageID string, unique bool) (*models.CommandResult, error)
	AddEntry(ctx context.Context, inv models.Invocation, emote models.Emote, roleID string) (*models.CommandResult, error)
	CommitSession(ctx context.Context, inv models.Invocation) (*models.CommandResult, error)
	AbortSession(ctx context.Context, inv models.Invocation) (*models.CommandResult, error)
	ListMappings(ctx context.Context, inv models.Invocation) (*models.CommandResult, error)
	DeleteMapping(ctx context.Context, inv models.Invocation, channelID, messageID string) (*models.CommandResult, error)
}

type PinsUseCase interface {
	Pin(ctx context.Context, inv models.Invocation, threadID string) (*models.CommandResult, error)
	Unpin(ctx context.Context, inv models.Invocation, threadID string) (*models.CommandResult, error)
	List(ctx context.Context, inv models.Invocation) (*models.CommandResult, error)
}

type CoursesUseCase interface {
	RegisterBase(ctx context.Context, inv models.Invocation, yearLevel, channelID string) (*models.CommandResult, error)
	CreateThread(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error)
	DeleteThread(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error)
	ImportFromSchedule(ctx context.Context, inv models.Invocation, maxCourses int) (*models.CommandResult, error)
	Join(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error)
	Leave(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error)
	List(ctx context.Context, inv models.Invocation) (*models.CommandResult, error)
	Search(ctx context.Context, inv models.Invocation, query string) (*models.CommandResult, error)
	Info(ctx context.Context, inv models.Invocation, course models.Course) (*models.CommandResult, error)
}

type ReactionRolesUseCase interface {
	ProcessReactionAdded(ctx context.Context, event models.ReactionEvent) error
	ProcessReactionRemoved(ctx context.Context, event models.ReactionEvent) error
}

// ThreadReconciler repairs a single tracked thread on demand
type ThreadReconciler interface {
	Domain() string
	Tracks(ctx context.Context, threadID string) (bool, error)
	ReconcileThread(ctx context.Context, threadID string) error
}
