package services

import (
	"context"
	"time"

	"github.com/samber/mo"

	"ecessbot/models"
)

// RoleMappingsService owns the persisted reaction role document
type RoleMappingsService interface {
	GetMapping(ctx context.Context, messageID string) (mo.Option[models.RoleMapping], error)
	ListMappings(ctx context.Context) (models.RoleMappingDocument, error)
	// FindMessageForRole returns the message, other than excludeMessageID, whose mapping uses roleID
	FindMessageForRole(ctx context.Context, roleID, excludeMessageID string) (mo.Option[string], error)
	UpsertMapping(ctx context.Context, messageID string, mapping models.RoleMapping) error
	DeleteMapping(ctx context.Context, messageID string) error
}

// ThreadSource is a document whose threads are kept alive by the reconciler
type ThreadSource interface {
	TrackedThreads(ctx context.Context) ([]string, error)
	// PruneThread forgets a thread that no longer exists. It reports whether anything was removed.
	PruneThread(ctx context.Context, threadID string) (bool, error)
	// RepairIfTracked runs repair only while threadID is still tracked. It reports whether repair ran.
	RepairIfTracked(ctx context.Context, threadID string, repair func(ctx context.Context) error) (bool, error)
}

// ThreadPinsService owns the pinned threads document
type ThreadPinsService interface {
	ThreadSource
	Pin(ctx context.Context, guildID, threadID string) error
	Unpin(ctx context.Context, guildID, threadID string) error
	ListPins(ctx context.Context, guildID string) ([]string, error)
	IsPinned(ctx context.Context, threadID string) (bool, error)
}

// CourseThreadsService owns the course thread document. It does no locking of its own;
// multi-step mutations are serialized by the courses use case.
type CourseThreadsService interface {
	ThreadSource
	RegisterBase(ctx context.Context, yearLevel, channelID string) error
	GetBase(ctx context.Context, yearLevel string) (mo.Option[string], error)
	AddCourse(ctx context.Context, course models.Course, threadID string) error
	RemoveCourse(ctx context.Context, course models.Course) (string, error)
	GetCourseThread(ctx context.Context, course models.Course) (mo.Option[string], error)
	ListCourses(ctx context.Context) ([]models.CourseThread, error)
	SearchCourses(ctx context.Context, query string) ([]models.CourseThread, error)
	IsCourseThread(ctx context.Context, threadID string) (bool, error)
}

// RoleSessionService is the single-slot role mapping wizard state machine
type RoleSessionService interface {
	// Reserve claims the slot in the pending state. It fails unless the wizard is idle.
	Reserve(operatorID, guildID, channelID, messageID string, unique bool) (models.RoleSession, error)
	// Activate moves a pending session to collecting
	Activate(sessionID string) error
	// Release drops a pending session without collecting anything
	Release(sessionID string)
	Current() mo.Option[models.RoleSession]
	// AddEntry appends to the collecting session, which must still be sessionID
	AddEntry(sessionID string, entry models.RoleMappingEntry) error
	// Finish ends the collecting session and returns what it gathered
	Finish() (models.RoleSession, error)
}

// PromptsService runs bounded-timeout confirmations with an operator
type PromptsService interface {
	// ConfirmReply sends prompt and waits for the next reply by userID in channelID. Only y/yes confirms.
	ConfirmReply(ctx context.Context, channelID, userID, prompt string, timeout time.Duration) (bool, error)
	// ConfirmButtons sends msg with Continue/Cancel buttons only userID may press
	ConfirmButtons(
		ctx context.Context,
		channelID, userID string,
		msg models.OutgoingMessage,
		timeout time.Duration,
	) (bool, error)
	// HandleMessage delivers a chat message to a waiting prompt. It reports whether the message was consumed.
	HandleMessage(msg models.IncomingMessage) bool
	// HandleComponent delivers a button press to a waiting prompt. It reports whether the press was consumed.
	HandleComponent(interaction models.ComponentInteraction) bool
}

// ScheduleService extracts courses from calendar exports
type ScheduleService interface {
	ParseCourses(ctx context.Context, calendar []byte) ([]models.Course, error)
}
