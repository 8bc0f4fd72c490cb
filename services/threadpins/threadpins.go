package threadpins

import (
	"context"
	"fmt"

	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
	"ecessbot/services/jsonstore"
)

const Filename = "thread_manager.json"

type ThreadPinsService struct {
	store *jsonstore.Store[models.ThreadPinSet]
}

func NewThreadPinsService(store *jsonstore.Store[models.ThreadPinSet]) *ThreadPinsService {
	return &ThreadPinsService{store: store}
}

func (s *ThreadPinsService) Pin(ctx context.Context, guildID, threadID string) error {
	log.Info("📋 Starting to pin thread", "guild_id", guildID, "thread_id", threadID)
	err := s.store.Update(func(doc models.ThreadPinSet) (models.ThreadPinSet, error) {
		if !doc.Add(guildID, threadID) {
			return nil, core.NewConflictError("%s is already pinned.", models.ChannelMention(threadID))
		}
		return doc, nil
	})
	if err != nil {
		return fmt.Errorf("failed to pin thread: %w", err)
	}
	log.Info("✅ Pinned thread", "thread_id", threadID)
	return nil
}

func (s *ThreadPinsService) Unpin(ctx context.Context, guildID, threadID string) error {
	log.Info("📋 Starting to unpin thread", "guild_id", guildID, "thread_id", threadID)
	err := s.store.Update(func(doc models.ThreadPinSet) (models.ThreadPinSet, error) {
		if !doc.Remove(guildID, threadID) {
			return nil, core.NewValidationError("%s isn't pinned.", models.ChannelMention(threadID))
		}
		return doc, nil
	})
	if err != nil {
		return fmt.Errorf("failed to unpin thread: %w", err)
	}
	log.Info("✅ Unpinned thread", "thread_id", threadID)
	return nil
}

func (s *ThreadPinsService) ListPins(ctx context.Context, guildID string) ([]string, error) {
	doc := s.store.Load()
	threadIDs := make([]string, 0, len(doc[guildID]))
	for _, threadID := range doc[guildID] {
		threadIDs = append(threadIDs, threadID.String())
	}
	return threadIDs, nil
}

func (s *ThreadPinsService) IsPinned(ctx context.Context, threadID string) (bool, error) {
	_, ok := s.store.Load().OwnerOf(threadID)
	return ok, nil
}

func (s *ThreadPinsService) TrackedThreads(ctx context.Context) ([]string, error) {
	return s.store.Load().ThreadIDs(), nil
}

func (s *ThreadPinsService) RepairIfTracked(
	ctx context.Context,
	threadID string,
	repair func(ctx context.Context) error,
) (bool, error) {
	pinned, err := s.IsPinned(ctx, threadID)
	if err != nil || !pinned {
		return false, err
	}
	return true, repair(ctx)
}

func (s *ThreadPinsService) PruneThread(ctx context.Context, threadID string) (bool, error) {
	pruned := false
	err := s.store.Update(func(doc models.ThreadPinSet) (models.ThreadPinSet, error) {
		guildID, ok := doc.OwnerOf(threadID)
		if !ok {
			return doc, nil
		}
		pruned = doc.Remove(guildID, threadID)
		return doc, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to prune thread %s: %w", threadID, err)
	}
	if pruned {
		log.Info("🧹 Pruned vanished pinned thread", "thread_id", threadID)
	}
	return pruned, nil
}
