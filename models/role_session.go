package models

import "time"

// RoleSessionState is the position of the role mapping wizard
type RoleSessionState int

const (
	// RoleSessionIdle means no session exists
	RoleSessionIdle RoleSessionState = iota
	// RoleSessionPending means a session was reserved and is waiting on an overwrite confirmation
	RoleSessionPending
	// RoleSessionCollecting means entries may be added
	RoleSessionCollecting
)

func (s RoleSessionState) String() string {
	switch s {
	case RoleSessionPending:
		return "pending"
	case RoleSessionCollecting:
		return "collecting"
	default:
		return "idle"
	}
}

// RoleSession is the in-progress mapping collected by the wizard
type RoleSession struct {
	ID         string
	OperatorID string
	GuildID    string
	ChannelID  string
	MessageID  string
	Unique     bool
	Entries    []RoleMappingEntry
	StartedAt  time.Time
}

// Mapping converts the collected entries into the persisted form
func (s RoleSession) Mapping() RoleMapping {
	mapping := RoleMapping{
		Mapping: make(map[string]string, len(s.Entries)),
		Unique:  s.Unique,
	}
	for _, entry := range s.Entries {
		mapping.Mapping[entry.Emote.Key()] = entry.RoleID
	}
	return mapping
}
