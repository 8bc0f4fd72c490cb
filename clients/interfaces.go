package clients

import (
	"context"

	"github.com/samber/mo"

	"ecessbot/models"
)

// DiscordClient is the subset of the chat platform the bot reconciles against.
//
// Get* lookups that return mo.Option only consult the gateway cache; a None result
// means "maybe absent" and callers fall back to the matching Fetch* call. Fetch* calls
// hit the REST API and wrap core.ErrNotFound when the entity does not exist.
type DiscordClient interface {
	// IsReady reports whether the gateway connection is established
	IsReady() bool
	BotUserID() string

	GetCachedThread(threadID string) mo.Option[*models.Thread]
	FetchThread(ctx context.Context, threadID string) (*models.Thread, error)
	EditThread(ctx context.Context, threadID string, edit models.ThreadEdit) error
	StartThread(ctx context.Context, channelID, messageID, name string, autoArchiveDuration int) (*models.Thread, error)
	AddThreadMember(ctx context.Context, threadID, userID string) error
	RemoveThreadMember(ctx context.Context, threadID, userID string) error

	GetCachedChannel(channelID string) mo.Option[*models.Channel]
	FetchChannel(ctx context.Context, channelID string) (*models.Channel, error)
	// RestrictToPublicThreads lets the default role create public threads in the channel
	// but not post messages or create private threads
	RestrictToPublicThreads(ctx context.Context, guildID, channelID string) error

	FetchMessage(ctx context.Context, channelID, messageID string) (*models.Message, error)
	SendMessage(ctx context.Context, channelID string, msg models.OutgoingMessage) (*models.Message, error)
	FetchAttachment(ctx context.Context, attachment models.Attachment) ([]byte, error)
	// AcknowledgeComponent answers a button press without changing the message
	AcknowledgeComponent(ctx context.Context, interactionID, token string) error

	AddReaction(ctx context.Context, channelID, messageID string, emote models.Emote) error
	RemoveReaction(ctx context.Context, channelID, messageID, userID string, emote models.Emote) error
	ClearReactions(ctx context.Context, channelID, messageID string) error
	// ResolveEmote turns a role mapping emote key back into an emote usable with the reactions API
	ResolveEmote(guildID, key string) models.Emote

	GetRole(ctx context.Context, guildID, roleID string) (mo.Option[*models.Role], error)
	GetMemberRoles(ctx context.Context, guildID, userID string) ([]string, error)
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
	HasBanMembers(ctx context.Context, channelID, userID string) (bool, error)
}

// CourseInfoClient looks up course metadata from the university course pages
type CourseInfoClient interface {
	Lookup(ctx context.Context, course models.Course) (mo.Option[models.CourseInfo], error)
}
