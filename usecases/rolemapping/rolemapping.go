package rolemapping

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ecessbot/clients"
	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
	"ecessbot/services"
)

const listingPageSize = 25

// RoleMappingUseCase drives the role mapping wizard: begin, add entries, then commit or abort
type RoleMappingUseCase struct {
	discordClient       clients.DiscordClient
	roleMappingsService services.RoleMappingsService
	roleSessionService  services.RoleSessionService
	promptsService      services.PromptsService
	commandPrefix       string
	confirmTimeout      time.Duration
}

func NewRoleMappingUseCase(
	discordClient clients.DiscordClient,
	roleMappingsService services.RoleMappingsService,
	roleSessionService services.RoleSessionService,
	promptsService services.PromptsService,
	commandPrefix string,
	confirmTimeout time.Duration,
) *RoleMappingUseCase {
	return &RoleMappingUseCase{
		discordClient:       discordClient,
		roleMappingsService: roleMappingsService,
		roleSessionService:  roleSessionService,
		promptsService:      promptsService,
		commandPrefix:       commandPrefix,
		confirmTimeout:      confirmTimeout,
	}
}

// BeginSession opens a session for the target message. Overwriting an existing
// mapping needs a y/n confirmation from the operator first.
func (u *RoleMappingUseCase) BeginSession(
	ctx context.Context,
	inv models.Invocation,
	channelID, messageID string,
	unique bool,
) (*models.CommandResult, error) {
	log.Info("📋 Starting to begin role mapping session", "user_id", inv.UserID, "message_id", messageID, "unique", unique)

	message, err := u.discordClient.FetchMessage(ctx, channelID, messageID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, core.NewValidationError("I couldn't find that message.")
		}
		return nil, fmt.Errorf("failed to fetch target message: %w", err)
	}
	if message.GuildID != inv.GuildID {
		return nil, core.NewValidationError("This message isn't in this guild.")
	}

	session, err := u.roleSessionService.Reserve(inv.UserID, inv.GuildID, channelID, messageID, unique)
	if err != nil {
		return nil, err
	}

	existing, err := u.roleMappingsService.GetMapping(ctx, messageID)
	if err != nil {
		u.roleSessionService.Release(session.ID)
		return nil, fmt.Errorf("failed to check existing mapping: %w", err)
	}
	if existing.IsPresent() {
		confirmed, err := u.promptsService.ConfirmReply(ctx, inv.ChannelID, inv.UserID,
			"The current message already has a mapping. Do you want to overwrite it?", u.confirmTimeout)
		if err != nil {
			u.roleSessionService.Release(session.ID)
			return nil, fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !confirmed {
			u.roleSessionService.Release(session.ID)
			log.Info("📋 Overwrite declined, session released", "message_id", messageID)
			return models.NewCommandResult("Exiting."), nil
		}
	}

	if err := u.roleSessionService.Activate(session.ID); err != nil {
		return nil, err
	}

	log.Info("✅ Role mapping session started", "session_id", session.ID)
	return models.NewCommandResult(fmt.Sprintf(
		"Session initialized. Add roles by using `%sadd_role_mapping <emote> <role>`, and finish by using `%sfinalize_role_mapping`",
		u.commandPrefix, u.commandPrefix)), nil
}

// AddEntry maps emote to roleID in the open session. Unicode emotes are accepted as-is with a warning.
func (u *RoleMappingUseCase) AddEntry(
	ctx context.Context,
	inv models.Invocation,
	emote models.Emote,
	roleID string,
) (*models.CommandResult, error) {
	maybeSession := u.roleSessionService.Current()
	if !maybeSession.IsPresent() {
		return nil, core.NewValidationError(
			"You're not in a mapping session. Start one with `%sinitialize_role_mapping`", u.commandPrefix)
	}
	session := maybeSession.MustGet()

	maybeRole, err := u.discordClient.GetRole(ctx, session.GuildID, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve role: %w", err)
	}
	if !maybeRole.IsPresent() {
		return nil, core.NewValidationError("I couldn't find that role in this guild.")
	}
	role := maybeRole.MustGet()

	otherMessage, err := u.roleMappingsService.FindMessageForRole(ctx, roleID, session.MessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to check role usage: %w", err)
	}
	if otherMessage.IsPresent() {
		return nil, core.NewConflictError("Role %s is already mapped on message `%s`.", role.Mention(), otherMessage.MustGet())
	}

	if emote.IsCustom() && emote.Name == "" {
		emote = u.discordClient.ResolveEmote(session.GuildID, emote.ID)
	}

	if err := u.roleSessionService.AddEntry(session.ID, models.RoleMappingEntry{Emote: emote, RoleID: roleID}); err != nil {
		return nil, err
	}

	result := models.NewCommandResult(fmt.Sprintf("Mapped %s to %s.", emote, role.Mention()))
	if !emote.IsCustom() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Note that `%s` should be a valid unicode emote. If it isn't, start over.", emote.Name))
	}
	return result, nil
}

// CommitSession persists the collected mapping and resets the message's reactions to one per
// mapped emote. The session ends even if a step fails. Reaction failures after the mapping
// is saved are reported, not rolled back.
func (u *RoleMappingUseCase) CommitSession(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	session, err := u.roleSessionService.Finish()
	if err != nil {
		return nil, err
	}

	log.Info("📋 Starting to commit role mapping session", "session_id", session.ID, "entries", len(session.Entries))
	if len(session.Entries) == 0 {
		log.Info("📋 Nothing to commit, session aborted", "session_id", session.ID)
		return models.NewCommandResult("No roles were mapped, so nothing was saved. Session aborted."), nil
	}

	if err := u.roleMappingsService.UpsertMapping(ctx, session.MessageID, session.Mapping()); err != nil {
		return nil, err
	}

	var reactionErrs []error
	if err := u.discordClient.ClearReactions(ctx, session.ChannelID, session.MessageID); err != nil {
		reactionErrs = append(reactionErrs, err)
	}
	for _, entry := range session.Entries {
		if err := u.discordClient.AddReaction(ctx, session.ChannelID, session.MessageID, entry.Emote); err != nil {
			reactionErrs = append(reactionErrs, err)
		}
	}

	result := models.NewCommandResult("Done! " + describeEntries(session.Entries))
	if len(reactionErrs) > 0 {
		joined := errors.Join(reactionErrs...)
		log.Warn("⚠️ Mapping saved but reactions are out of sync", "session_id", session.ID, "error", joined)
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"The mapping was saved, but %d reaction update(s) failed. The reactions on the message may not match the mapping.",
			len(reactionErrs)))
	}

	log.Info("✅ Committed role mapping session", "session_id", session.ID, "message_id", session.MessageID)
	return result, nil
}

func (u *RoleMappingUseCase) AbortSession(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	session, err := u.roleSessionService.Finish()
	if err != nil {
		return nil, err
	}
	log.Info("📋 Aborted role mapping session", "session_id", session.ID, "user_id", inv.UserID)
	return models.NewCommandResult("Session aborted. Nothing was saved."), nil
}

func (u *RoleMappingUseCase) ListMappings(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	doc, err := u.roleMappingsService.ListMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list role mappings: %w", err)
	}
	if len(doc) == 0 {
		return models.NewCommandResult("There are no role mappings."), nil
	}

	messageIDs := make([]string, 0, len(doc))
	for messageID := range doc {
		messageIDs = append(messageIDs, messageID)
	}
	sort.Strings(messageIDs)

	var entries []string
	for _, messageID := range messageIDs {
		mapping := doc[messageID]
		header := fmt.Sprintf("**Message `%s`**", messageID)
		if mapping.Unique {
			header += " (unique)"
		}
		entries = append(entries, header)

		emoteKeys := make([]string, 0, len(mapping.Mapping))
		for emoteKey := range mapping.Mapping {
			emoteKeys = append(emoteKeys, emoteKey)
		}
		sort.Strings(emoteKeys)
		for _, emoteKey := range emoteKeys {
			emote := u.discordClient.ResolveEmote(inv.GuildID, emoteKey)
			entries = append(entries, fmt.Sprintf("  - %s → %s", emote, models.RoleMention(mapping.Mapping[emoteKey])))
		}
	}

	return &models.CommandResult{
		Listing: &models.Listing{Title: "Role Mappings", Entries: entries, EntriesPerPage: listingPageSize},
	}, nil
}

// DeleteMapping forgets the mapping of a message and clears its reactions if it still exists
func (u *RoleMappingUseCase) DeleteMapping(
	ctx context.Context,
	inv models.Invocation,
	channelID, messageID string,
) (*models.CommandResult, error) {
	if err := u.roleMappingsService.DeleteMapping(ctx, messageID); err != nil {
		if core.IsNotFoundError(err) {
			return nil, core.NewValidationError("Message `%s` doesn't have a role mapping.", messageID)
		}
		return nil, err
	}

	result := models.NewCommandResult(fmt.Sprintf("Done! Removed the mapping for message `%s`.", messageID))
	if err := u.discordClient.ClearReactions(ctx, channelID, messageID); err != nil && !core.IsNotFoundError(err) {
		log.Warn("⚠️ Failed to clear reactions of deleted mapping", "message_id", messageID, "error", err)
		result.Warnings = append(result.Warnings, "I couldn't clear the reactions on that message.")
	}
	return result, nil
}

// describeEntries renders session entries for logs and replies
func describeEntries(entries []models.RoleMappingEntry) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, fmt.Sprintf("%s → %s", entry.Emote, models.RoleMention(entry.RoleID)))
	}
	return strings.Join(parts, ", ")
}
