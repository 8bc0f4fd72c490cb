package pins

import (
	"context"
	"fmt"

	"ecessbot/clients"
	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
	"ecessbot/services"
)

const listingPageSize = 25

// PinsUseCase manages the threads the reconciler keeps un-archived
type PinsUseCase struct {
	discordClient       clients.DiscordClient
	threadPinsService   services.ThreadPinsService
	autoArchiveDuration int
}

func NewPinsUseCase(
	discordClient clients.DiscordClient,
	threadPinsService services.ThreadPinsService,
	autoArchiveDuration int,
) *PinsUseCase {
	return &PinsUseCase{
		discordClient:       discordClient,
		threadPinsService:   threadPinsService,
		autoArchiveDuration: autoArchiveDuration,
	}
}

// Pin adds the thread to the guild's pin set. An already archived thread is revived right away.
func (u *PinsUseCase) Pin(ctx context.Context, inv models.Invocation, threadID string) (*models.CommandResult, error) {
	thread, err := u.lookupThread(ctx, threadID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, core.NewValidationError("I couldn't find that thread.")
		}
		return nil, fmt.Errorf("failed to resolve thread: %w", err)
	}
	if thread.GuildID != inv.GuildID {
		return nil, core.NewValidationError("That thread isn't in this guild.")
	}

	if err := u.threadPinsService.Pin(ctx, inv.GuildID, thread.ID); err != nil {
		return nil, err
	}

	result := models.NewCommandResult("Done! Pinned " + thread.Mention())
	if thread.Archived {
		archived := false
		edit := models.ThreadEdit{Archived: &archived, AutoArchiveDuration: u.autoArchiveDuration}
		if err := u.discordClient.EditThread(ctx, thread.ID, edit); err != nil {
			log.Warn("⚠️ Failed to unarchive freshly pinned thread", "thread_id", thread.ID, "error", err)
		}
	}
	return result, nil
}

func (u *PinsUseCase) Unpin(ctx context.Context, inv models.Invocation, threadID string) (*models.CommandResult, error) {
	if err := u.threadPinsService.Unpin(ctx, inv.GuildID, threadID); err != nil {
		return nil, err
	}
	return models.NewCommandResult(fmt.Sprintf("Done! Removed %s from pinned threads.", models.ChannelMention(threadID))), nil
}

func (u *PinsUseCase) List(ctx context.Context, inv models.Invocation) (*models.CommandResult, error) {
	threadIDs, err := u.threadPinsService.ListPins(ctx, inv.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pinned threads: %w", err)
	}
	if len(threadIDs) == 0 {
		return models.NewCommandResult("No pinned threads."), nil
	}

	entries := make([]string, 0, len(threadIDs))
	for _, threadID := range threadIDs {
		thread, err := u.lookupThread(ctx, threadID)
		if err != nil {
			log.Debug("Pinned thread did not resolve", "thread_id", threadID, "error", err)
			entries = append(entries, fmt.Sprintf(" - `%s` (error getting thread)", threadID))
			continue
		}
		entries = append(entries, fmt.Sprintf(" - %s (`%s`)", thread.Mention(), threadID))
	}

	return &models.CommandResult{
		Listing: &models.Listing{
			Title:          "Pinned threads for guild " + inv.GuildID,
			Entries:        entries,
			EntriesPerPage: listingPageSize,
		},
	}, nil
}

func (u *PinsUseCase) lookupThread(ctx context.Context, threadID string) (*models.Thread, error) {
	if cached, ok := u.discordClient.GetCachedThread(threadID).Get(); ok {
		return cached, nil
	}
	return u.discordClient.FetchThread(ctx, threadID)
}
