package rolesession

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/mo"

	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
)

// RoleSessionService holds the one role mapping session that may exist at a time.
// Transitions are guarded by a mutex so a second begin fails instead of
// overwriting the first session's fields.
type RoleSessionService struct {
	mutex   sync.Mutex
	state   models.RoleSessionState
	session models.RoleSession
	now     func() time.Time
}

func NewRoleSessionService() *RoleSessionService {
	return &RoleSessionService{now: time.Now}
}

func (s *RoleSessionService) Reserve(
	operatorID, guildID, channelID, messageID string,
	unique bool,
) (models.RoleSession, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != models.RoleSessionIdle {
		return models.RoleSession{}, core.NewConflictError(
			"A role mapping session for message `%s` is already in progress. Finish or abort it first.", s.session.MessageID)
	}

	s.session = models.RoleSession{
		ID:         ulid.Make().String(),
		OperatorID: operatorID,
		GuildID:    guildID,
		ChannelID:  channelID,
		MessageID:  messageID,
		Unique:     unique,
		StartedAt:  s.now(),
	}
	s.state = models.RoleSessionPending
	log.Info("📋 Reserved role mapping session", "session_id", s.session.ID, "message_id", messageID)
	return s.session, nil
}

func (s *RoleSessionService) Activate(sessionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != models.RoleSessionPending || s.session.ID != sessionID {
		return core.NewConflictError("The role mapping session is no longer pending.")
	}
	s.state = models.RoleSessionCollecting
	log.Info("✅ Role mapping session is collecting entries", "session_id", sessionID)
	return nil
}

func (s *RoleSessionService) Release(sessionID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != models.RoleSessionPending || s.session.ID != sessionID {
		return
	}
	log.Info("📋 Released pending role mapping session", "session_id", sessionID)
	s.reset()
}

func (s *RoleSessionService) Current() mo.Option[models.RoleSession] {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != models.RoleSessionCollecting {
		return mo.None[models.RoleSession]()
	}
	return mo.Some(s.snapshot())
}

// AddEntry appends an emote -> role pair. Roles and emotes may each appear once per session.
// It fails if the collecting session is no longer sessionID.
func (s *RoleSessionService) AddEntry(sessionID string, entry models.RoleMappingEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != models.RoleSessionCollecting {
		return noSessionError()
	}
	if s.session.ID != sessionID {
		return core.NewConflictError("The role mapping session changed while adding that entry. Nothing was added.")
	}
	for _, existing := range s.session.Entries {
		if existing.RoleID == entry.RoleID {
			return core.NewConflictError("Role %s is already mapped to %s in this session.",
				models.RoleMention(entry.RoleID), existing.Emote)
		}
		if existing.Emote.Key() == entry.Emote.Key() {
			return core.NewConflictError("%s is already mapped to %s in this session.",
				entry.Emote, models.RoleMention(existing.RoleID))
		}
	}
	s.session.Entries = append(s.session.Entries, entry)
	return nil
}

func (s *RoleSessionService) Finish() (models.RoleSession, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != models.RoleSessionCollecting {
		return models.RoleSession{}, noSessionError()
	}
	finished := s.snapshot()
	s.reset()
	log.Info("📋 Finished role mapping session", "session_id", finished.ID, "entries", len(finished.Entries))
	return finished, nil
}

func (s *RoleSessionService) reset() {
	s.state = models.RoleSessionIdle
	s.session = models.RoleSession{}
}

func (s *RoleSessionService) snapshot() models.RoleSession {
	session := s.session
	session.Entries = append([]models.RoleMappingEntry(nil), s.session.Entries...)
	return session
}

func noSessionError() error {
	return core.NewValidationError("There is no role mapping session in progress. Start one with `initialize_role_mapping`.")
}
