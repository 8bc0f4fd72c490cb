package reactionroles

import (
	"context"
	"fmt"
	"slices"

	"ecessbot/clients"
	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/metrics"
	"ecessbot/models"
	"ecessbot/services"
)

// ReactionRolesUseCase applies role mappings when members react to mapped messages
type ReactionRolesUseCase struct {
	discordClient       clients.DiscordClient
	roleMappingsService services.RoleMappingsService
}

func NewReactionRolesUseCase(
	discordClient clients.DiscordClient,
	roleMappingsService services.RoleMappingsService,
) *ReactionRolesUseCase {
	return &ReactionRolesUseCase{
		discordClient:       discordClient,
		roleMappingsService: roleMappingsService,
	}
}

// ProcessReactionAdded grants the mapped role. Stray emotes are removed from the message,
// and unique mappings revoke the member's other mapped roles and reactions first.
func (u *ReactionRolesUseCase) ProcessReactionAdded(ctx context.Context, event models.ReactionEvent) error {
	if event.UserID == u.discordClient.BotUserID() {
		return nil
	}

	maybeMapping, err := u.roleMappingsService.GetMapping(ctx, event.MessageID)
	if err != nil {
		return fmt.Errorf("failed to get role mapping: %w", err)
	}
	if !maybeMapping.IsPresent() {
		return nil
	}
	mapping := maybeMapping.MustGet()

	log.Info("📋 Starting to process reaction add",
		"message_id", event.MessageID, "user_id", event.UserID, "emote", event.Emote.Key())

	roleID, mapped := mapping.Mapping[event.Emote.Key()]
	if !mapped {
		log.Info("🧹 Removing unmapped reaction", "message_id", event.MessageID, "emote", event.Emote.Key())
		err := u.discordClient.RemoveReaction(ctx, event.ChannelID, event.MessageID, event.UserID, event.Emote)
		if err != nil && !core.IsNotFoundError(err) {
			metrics.ReactionEvents.WithLabelValues("add", "error").Inc()
			return fmt.Errorf("failed to remove unmapped reaction: %w", err)
		}
		metrics.ReactionEvents.WithLabelValues("add", "stray").Inc()
		return nil
	}

	maybeRole, err := u.discordClient.GetRole(ctx, event.GuildID, roleID)
	if err != nil {
		return fmt.Errorf("failed to resolve role %s: %w", roleID, err)
	}
	if !maybeRole.IsPresent() {
		log.Warn("⚠️ Mapped role no longer exists", "message_id", event.MessageID, "role_id", roleID)
		metrics.ReactionEvents.WithLabelValues("add", "invalid_role").Inc()
		return nil
	}

	memberRoles, err := u.discordClient.GetMemberRoles(ctx, event.GuildID, event.UserID)
	if err != nil {
		if core.IsNotFoundError(err) {
			log.Info("Member not found, ignoring reaction", "user_id", event.UserID)
			return nil
		}
		return fmt.Errorf("failed to get member roles: %w", err)
	}

	if mapping.Unique {
		if err := u.enforceUnique(ctx, event, mapping, roleID, memberRoles); err != nil {
			metrics.ReactionEvents.WithLabelValues("add", "error").Inc()
			return err
		}
	}

	if err := u.discordClient.GrantRole(ctx, event.GuildID, event.UserID, roleID); err != nil {
		metrics.ReactionEvents.WithLabelValues("add", "error").Inc()
		return fmt.Errorf("failed to grant role %s: %w", roleID, err)
	}
	metrics.RoleMutations.WithLabelValues("grant").Inc()
	metrics.ReactionEvents.WithLabelValues("add", "granted").Inc()

	log.Info("✅ Role assigned", "role_id", roleID, "user_id", event.UserID)
	return nil
}

// enforceUnique revokes the member's other roles from this mapping, then removes
// the member's other reactions on the message
func (u *ReactionRolesUseCase) enforceUnique(
	ctx context.Context,
	event models.ReactionEvent,
	mapping models.RoleMapping,
	keepRoleID string,
	memberRoles []string,
) error {
	for _, roleID := range mapping.RoleIDs() {
		if roleID == keepRoleID || !slices.Contains(memberRoles, roleID) {
			continue
		}
		if err := u.discordClient.RevokeRole(ctx, event.GuildID, event.UserID, roleID); err != nil {
			if core.IsNotFoundError(err) {
				continue
			}
			return fmt.Errorf("failed to revoke conflicting role %s: %w", roleID, err)
		}
		metrics.RoleMutations.WithLabelValues("revoke").Inc()
	}

	message, err := u.discordClient.FetchMessage(ctx, event.ChannelID, event.MessageID)
	if err != nil {
		return fmt.Errorf("failed to fetch mapped message: %w", err)
	}
	for _, reaction := range message.Reactions {
		if reaction.Key() == event.Emote.Key() {
			continue
		}
		err := u.discordClient.RemoveReaction(ctx, event.ChannelID, event.MessageID, event.UserID, reaction)
		if err != nil && !core.IsNotFoundError(err) {
			log.Warn("⚠️ Failed to remove other reaction", "message_id", event.MessageID, "emote", reaction.Key(), "error", err)
		}
	}
	return nil
}

// ProcessReactionRemoved revokes the mapped role. Reactions are left alone.
func (u *ReactionRolesUseCase) ProcessReactionRemoved(ctx context.Context, event models.ReactionEvent) error {
	if event.UserID == u.discordClient.BotUserID() {
		return nil
	}

	maybeMapping, err := u.roleMappingsService.GetMapping(ctx, event.MessageID)
	if err != nil {
		return fmt.Errorf("failed to get role mapping: %w", err)
	}
	if !maybeMapping.IsPresent() {
		return nil
	}

	roleID, mapped := maybeMapping.MustGet().Mapping[event.Emote.Key()]
	if !mapped {
		return nil
	}

	log.Info("📋 Starting to process reaction remove",
		"message_id", event.MessageID, "user_id", event.UserID, "role_id", roleID)

	if err := u.discordClient.RevokeRole(ctx, event.GuildID, event.UserID, roleID); err != nil {
		if core.IsNotFoundError(err) {
			log.Info("Member or role not found, nothing to revoke", "user_id", event.UserID, "role_id", roleID)
			metrics.ReactionEvents.WithLabelValues("remove", "ignored").Inc()
			return nil
		}
		metrics.ReactionEvents.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("failed to revoke role %s: %w", roleID, err)
	}
	metrics.RoleMutations.WithLabelValues("revoke").Inc()
	metrics.ReactionEvents.WithLabelValues("remove", "revoked").Inc()

	log.Info("✅ Role removed", "role_id", roleID, "user_id", event.UserID)
	return nil
}
