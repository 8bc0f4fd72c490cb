package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"ecessbot/clients"
	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
)

const maxAttachmentSize = 2 << 20

// DiscordClient implements clients.DiscordClient on top of a discordgo session
type DiscordClient struct {
	session *discordgo.Session
	ready   atomic.Bool
}

var _ clients.DiscordClient = (*DiscordClient)(nil)

// NewDiscordClient wraps session and tracks gateway readiness from its lifecycle events
func NewDiscordClient(session *discordgo.Session) *DiscordClient {
	client := &DiscordClient{session: session}
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info("✅ Discord gateway ready", "user", r.User.Username, "guilds", len(r.Guilds))
		client.ready.Store(true)
	})
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		client.ready.Store(true)
	})
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		log.Warn("⚠️ Discord gateway disconnected")
		client.ready.Store(false)
	})
	return client
}

func (c *DiscordClient) IsReady() bool {
	return c.ready.Load()
}

func (c *DiscordClient) BotUserID() string {
	if c.session.State == nil || c.session.State.User == nil {
		return ""
	}
	return c.session.State.User.ID
}

func (c *DiscordClient) GetCachedThread(threadID string) mo.Option[*models.Thread] {
	channel, err := c.session.State.Channel(threadID)
	if err != nil || !channel.IsThread() {
		return mo.None[*models.Thread]()
	}
	return mo.Some(toThread(channel))
}

func (c *DiscordClient) FetchThread(ctx context.Context, threadID string) (*models.Thread, error) {
	channel, err := c.session.Channel(threadID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread %s: %w", threadID, mapError(err))
	}
	if !channel.IsThread() {
		return nil, fmt.Errorf("channel %s is not a thread: %w", threadID, core.ErrNotFound)
	}
	return toThread(channel), nil
}

func (c *DiscordClient) EditThread(ctx context.Context, threadID string, edit models.ThreadEdit) error {
	_, err := c.session.ChannelEdit(threadID, &discordgo.ChannelEdit{
		Archived:            edit.Archived,
		Locked:              edit.Locked,
		AutoArchiveDuration: edit.AutoArchiveDuration,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to edit thread %s: %w", threadID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) StartThread(
	ctx context.Context,
	channelID, messageID, name string,
	autoArchiveDuration int,
) (*models.Thread, error) {
	channel, err := c.session.MessageThreadStart(channelID, messageID, name, autoArchiveDuration, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to start thread on message %s: %w", messageID, mapError(err))
	}
	return toThread(channel), nil
}

func (c *DiscordClient) AddThreadMember(ctx context.Context, threadID, userID string) error {
	if err := c.session.ThreadMemberAdd(threadID, userID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add %s to thread %s: %w", userID, threadID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) RemoveThreadMember(ctx context.Context, threadID, userID string) error {
	if err := c.session.ThreadMemberRemove(threadID, userID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to remove %s from thread %s: %w", userID, threadID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) GetCachedChannel(channelID string) mo.Option[*models.Channel] {
	channel, err := c.session.State.Channel(channelID)
	if err != nil {
		return mo.None[*models.Channel]()
	}
	return mo.Some(toChannel(channel))
}

func (c *DiscordClient) FetchChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	channel, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, mapError(err))
	}
	return toChannel(channel), nil
}

func (c *DiscordClient) RestrictToPublicThreads(ctx context.Context, guildID, channelID string) error {
	// The @everyone role shares the guild id
	err := c.session.ChannelPermissionSet(
		channelID,
		guildID,
		discordgo.PermissionOverwriteTypeRole,
		discordgo.PermissionCreatePublicThreads,
		discordgo.PermissionSendMessages|discordgo.PermissionCreatePrivateThreads,
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to set permissions on channel %s: %w", channelID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) FetchMessage(ctx context.Context, channelID, messageID string) (*models.Message, error) {
	message, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", messageID, mapError(err))
	}

	result := toMessage(message)
	if result.GuildID == "" {
		// REST message payloads omit the guild id
		maybeChannel := c.GetCachedChannel(channelID)
		if maybeChannel.IsPresent() {
			result.GuildID = maybeChannel.MustGet().GuildID
		} else if channel, err := c.FetchChannel(ctx, channelID); err == nil {
			result.GuildID = channel.GuildID
		}
	}
	return result, nil
}

func (c *DiscordClient) SendMessage(
	ctx context.Context,
	channelID string,
	msg models.OutgoingMessage,
) (*models.Message, error) {
	send := &discordgo.MessageSend{
		Content: msg.Content,
	}
	if !msg.AllowMentions {
		send.AllowedMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
	}
	if msg.ReplyTo != "" {
		send.Reference = &discordgo.MessageReference{MessageID: msg.ReplyTo, ChannelID: channelID}
	}
	for _, embed := range msg.Embeds {
		send.Embeds = append(send.Embeds, toDiscordEmbed(embed))
	}
	if len(msg.Buttons) > 0 {
		row := discordgo.ActionsRow{}
		for _, button := range msg.Buttons {
			style := discordgo.SecondaryButton
			if button.Primary {
				style = discordgo.SuccessButton
			}
			row.Components = append(row.Components, discordgo.Button{
				Label:    button.Label,
				Style:    style,
				CustomID: button.CustomID,
			})
		}
		send.Components = []discordgo.MessageComponent{row}
	}

	message, err := c.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send message to %s: %w", channelID, mapError(err))
	}
	return toMessage(message), nil
}

func (c *DiscordClient) FetchAttachment(ctx context.Context, attachment models.Attachment) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attachment.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment request: %w", err)
	}

	httpClient := c.session.Client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment %s: %w", attachment.Filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %s: %w", attachment.Filename, err)
	}
	if len(body) > maxAttachmentSize {
		return nil, fmt.Errorf("attachment %s is larger than %d bytes", attachment.Filename, maxAttachmentSize)
	}
	return body, nil
}

func (c *DiscordClient) AcknowledgeComponent(ctx context.Context, interactionID, token string) error {
	err := c.session.InteractionRespond(
		&discordgo.Interaction{ID: interactionID, Token: token},
		&discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to acknowledge interaction %s: %w", interactionID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) AddReaction(ctx context.Context, channelID, messageID string, emote models.Emote) error {
	if err := c.session.MessageReactionAdd(channelID, messageID, emote.APIName(), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction %s to %s: %w", emote.Key(), messageID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) RemoveReaction(
	ctx context.Context,
	channelID, messageID, userID string,
	emote models.Emote,
) error {
	err := c.session.MessageReactionRemove(channelID, messageID, emote.APIName(), userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to remove reaction %s of %s from %s: %w", emote.Key(), userID, messageID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) ClearReactions(ctx context.Context, channelID, messageID string) error {
	if err := c.session.MessageReactionsRemoveAll(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to clear reactions on %s: %w", messageID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) ResolveEmote(guildID, key string) models.Emote {
	if _, err := strconv.ParseUint(key, 10, 64); err != nil {
		return models.Emote{Name: key}
	}

	if emoji, err := c.session.State.Emoji(guildID, key); err == nil {
		return models.Emote{ID: emoji.ID, Name: emoji.Name, Animated: emoji.Animated}
	}
	// Custom emotes from other guilds the bot is in can still be used
	for _, guild := range c.session.State.Guilds {
		for _, emoji := range guild.Emojis {
			if emoji.ID == key {
				return models.Emote{ID: emoji.ID, Name: emoji.Name, Animated: emoji.Animated}
			}
		}
	}
	return models.Emote{ID: key}
}

func (c *DiscordClient) GetRole(ctx context.Context, guildID, roleID string) (mo.Option[*models.Role], error) {
	if role, err := c.session.State.Role(guildID, roleID); err == nil {
		return mo.Some(toRole(guildID, role)), nil
	}

	roles, err := c.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return mo.None[*models.Role](), fmt.Errorf("failed to fetch roles of guild %s: %w", guildID, mapError(err))
	}
	for _, role := range roles {
		if role.ID == roleID {
			return mo.Some(toRole(guildID, role)), nil
		}
	}
	return mo.None[*models.Role](), nil
}

func (c *DiscordClient) GetMemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	if member, err := c.session.State.Member(guildID, userID); err == nil {
		return member.Roles, nil
	}

	member, err := c.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %s: %w", userID, mapError(err))
	}
	return member.Roles, nil
}

func (c *DiscordClient) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := c.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to grant role %s to %s: %w", roleID, userID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := c.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to revoke role %s from %s: %w", roleID, userID, mapError(err))
	}
	return nil
}

func (c *DiscordClient) HasBanMembers(ctx context.Context, channelID, userID string) (bool, error) {
	permissions, err := c.session.State.UserChannelPermissions(userID, channelID)
	if err != nil {
		permissions, err = c.session.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
		if err != nil {
			return false, fmt.Errorf("failed to compute permissions of %s: %w", userID, mapError(err))
		}
	}
	return permissions&discordgo.PermissionBanMembers != 0, nil
}

// mapError marks hard not-found responses from the REST API with core.ErrNotFound
func mapError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", core.ErrNotFound, err)
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownMessage,
			discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownRole,
			discordgo.ErrCodeUnknownEmoji:
			return fmt.Errorf("%w: %w", core.ErrNotFound, err)
		}
	}
	return err
}
