package rolemappings

import (
	"context"
	"fmt"

	"github.com/samber/mo"

	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
	"ecessbot/services/jsonstore"
)

const Filename = "role_mappings.json"

type RoleMappingsService struct {
	store *jsonstore.Store[models.RoleMappingDocument]
}

func NewRoleMappingsService(store *jsonstore.Store[models.RoleMappingDocument]) *RoleMappingsService {
	return &RoleMappingsService{store: store}
}

func (s *RoleMappingsService) GetMapping(ctx context.Context, messageID string) (mo.Option[models.RoleMapping], error) {
	doc := s.store.Load()
	mapping, ok := doc[messageID]
	if !ok {
		return mo.None[models.RoleMapping](), nil
	}
	return mo.Some(mapping), nil
}

func (s *RoleMappingsService) ListMappings(ctx context.Context) (models.RoleMappingDocument, error) {
	return s.store.Load(), nil
}

func (s *RoleMappingsService) FindMessageForRole(
	ctx context.Context,
	roleID, excludeMessageID string,
) (mo.Option[string], error) {
	messageID, ok := s.store.Load().MessageForRole(roleID, excludeMessageID)
	if !ok {
		return mo.None[string](), nil
	}
	return mo.Some(messageID), nil
}

// UpsertMapping replaces the mapping of messageID. The write is rejected if a role
// repeats within the mapping or is already mapped on another message.
func (s *RoleMappingsService) UpsertMapping(ctx context.Context, messageID string, mapping models.RoleMapping) error {
	log.Info("📋 Starting to save role mapping", "message_id", messageID, "entries", len(mapping.Mapping), "unique", mapping.Unique)
	if messageID == "" {
		return fmt.Errorf("message id cannot be empty")
	}

	seen := make(map[string]string, len(mapping.Mapping))
	for emoteKey, roleID := range mapping.Mapping {
		if other, ok := seen[roleID]; ok {
			return core.NewConflictError("Role %s is mapped to both `%s` and `%s`.", models.RoleMention(roleID), other, emoteKey)
		}
		seen[roleID] = emoteKey
	}

	err := s.store.Update(func(doc models.RoleMappingDocument) (models.RoleMappingDocument, error) {
		for _, roleID := range mapping.RoleIDs() {
			if other, ok := doc.MessageForRole(roleID, messageID); ok {
				return nil, core.NewConflictError("Role %s is already mapped on message `%s`.", models.RoleMention(roleID), other)
			}
		}
		doc[messageID] = mapping
		return doc, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save role mapping for %s: %w", messageID, err)
	}

	log.Info("✅ Saved role mapping", "message_id", messageID)
	return nil
}

func (s *RoleMappingsService) DeleteMapping(ctx context.Context, messageID string) error {
	log.Info("📋 Starting to delete role mapping", "message_id", messageID)
	err := s.store.Update(func(doc models.RoleMappingDocument) (models.RoleMappingDocument, error) {
		if _, ok := doc[messageID]; !ok {
			return nil, fmt.Errorf("role mapping for message %s: %w", messageID, core.ErrNotFound)
		}
		delete(doc, messageID)
		return doc, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete role mapping: %w", err)
	}
	log.Info("✅ Deleted role mapping", "message_id", messageID)
	return nil
}
