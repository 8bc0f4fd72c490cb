package models

import "sort"

// RoleMapping is the persisted emote -> role association for a single message.
// Emote keys are either a unicode literal or the string form of a custom emote id.
type RoleMapping struct {
	Mapping map[string]string `json:"mapping"`
	Unique  bool              `json:"unique"`
}

// RoleIDs returns the mapped role ids in a stable order
func (m RoleMapping) RoleIDs() []string {
	roleIDs := make([]string, 0, len(m.Mapping))
	for _, roleID := range m.Mapping {
		roleIDs = append(roleIDs, roleID)
	}
	sort.Strings(roleIDs)
	return roleIDs
}

// HasRole reports whether roleID is mapped to any emote of this message
func (m RoleMapping) HasRole(roleID string) bool {
	for _, mapped := range m.Mapping {
		if mapped == roleID {
			return true
		}
	}
	return false
}

// RoleMappingDocument is keyed by message id
type RoleMappingDocument map[string]RoleMapping

func NewRoleMappingDocument() RoleMappingDocument {
	return RoleMappingDocument{}
}

// MessageForRole finds the message, other than excludeMessageID, whose mapping already uses roleID
func (d RoleMappingDocument) MessageForRole(roleID, excludeMessageID string) (string, bool) {
	messageIDs := make([]string, 0, len(d))
	for messageID := range d {
		messageIDs = append(messageIDs, messageID)
	}
	sort.Strings(messageIDs)

	for _, messageID := range messageIDs {
		if messageID == excludeMessageID {
			continue
		}
		if d[messageID].HasRole(roleID) {
			return messageID, true
		}
	}
	return "", false
}

// RoleMappingEntry is one emote -> role pair collected during a mapping session
type RoleMappingEntry struct {
	Emote  Emote
	RoleID string
}
