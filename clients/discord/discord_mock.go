package discord

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"ecessbot/clients"
	"ecessbot/models"
)

// MockDiscordClient implements the clients.DiscordClient interface for testing
type MockDiscordClient struct {
	mock.Mock
}

var _ clients.DiscordClient = (*MockDiscordClient)(nil)

func (m *MockDiscordClient) IsReady() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockDiscordClient) BotUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDiscordClient) GetCachedThread(threadID string) mo.Option[*models.Thread] {
	args := m.Called(threadID)
	return args.Get(0).(mo.Option[*models.Thread])
}

func (m *MockDiscordClient) FetchThread(ctx context.Context, threadID string) (*models.Thread, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

func (m *MockDiscordClient) EditThread(ctx context.Context, threadID string, edit models.ThreadEdit) error {
	args := m.Called(ctx, threadID, edit)
	return args.Error(0)
}

func (m *MockDiscordClient) StartThread(
	ctx context.Context,
	channelID, messageID, name string,
	autoArchiveDuration int,
) (*models.Thread, error) {
	args := m.Called(ctx, channelID, messageID, name, autoArchiveDuration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

func (m *MockDiscordClient) AddThreadMember(ctx context.Context, threadID, userID string) error {
	args := m.Called(ctx, threadID, userID)
	return args.Error(0)
}

func (m *MockDiscordClient) RemoveThreadMember(ctx context.Context, threadID, userID string) error {
	args := m.Called(ctx, threadID, userID)
	return args.Error(0)
}

func (m *MockDiscordClient) GetCachedChannel(channelID string) mo.Option[*models.Channel] {
	args := m.Called(channelID)
	return args.Get(0).(mo.Option[*models.Channel])
}

func (m *MockDiscordClient) FetchChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockDiscordClient) RestrictToPublicThreads(ctx context.Context, guildID, channelID string) error {
	args := m.Called(ctx, guildID, channelID)
	return args.Error(0)
}

func (m *MockDiscordClient) FetchMessage(ctx context.Context, channelID, messageID string) (*models.Message, error) {
	args := m.Called(ctx, channelID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockDiscordClient) SendMessage(
	ctx context.Context,
	channelID string,
	msg models.OutgoingMessage,
) (*models.Message, error) {
	args := m.Called(ctx, channelID, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockDiscordClient) FetchAttachment(ctx context.Context, attachment models.Attachment) ([]byte, error) {
	args := m.Called(ctx, attachment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDiscordClient) AddReaction(ctx context.Context, channelID, messageID string, emote models.Emote) error {
	args := m.Called(ctx, channelID, messageID, emote)
	return args.Error(0)
}

func (m *MockDiscordClient) RemoveReaction(
	ctx context.Context,
	channelID, messageID, userID string,
	emote models.Emote,
) error {
	args := m.Called(ctx, channelID, messageID, userID, emote)
	return args.Error(0)
}

func (m *MockDiscordClient) ClearReactions(ctx context.Context, channelID, messageID string) error {
	args := m.Called(ctx, channelID, messageID)
	return args.Error(0)
}

func (m *MockDiscordClient) ResolveEmote(guildID, key string) models.Emote {
	args := m.Called(guildID, key)
	return args.Get(0).(models.Emote)
}

func (m *MockDiscordClient) GetRole(ctx context.Context, guildID, roleID string) (mo.Option[*models.Role], error) {
	args := m.Called(ctx, guildID, roleID)
	return args.Get(0).(mo.Option[*models.Role]), args.Error(1)
}

func (m *MockDiscordClient) GetMemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDiscordClient) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockDiscordClient) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockDiscordClient) HasBanMembers(ctx context.Context, channelID, userID string) (bool, error) {
	args := m.Called(ctx, channelID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDiscordClient) AcknowledgeComponent(ctx context.Context, interactionID, token string) error {
	args := m.Called(ctx, interactionID, token)
	return args.Error(0)
}
