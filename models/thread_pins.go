package models

import (
	"slices"
	"sort"
)

// ThreadPinSet is keyed by guild id; each list holds the threads kept un-archived for that guild
type ThreadPinSet map[string][]Snowflake

func NewThreadPinSet() ThreadPinSet {
	return ThreadPinSet{}
}

func (s ThreadPinSet) Contains(guildID, threadID string) bool {
	return slices.Contains(s[guildID], Snowflake(threadID))
}

// Add appends threadID to the guild list. It returns false if it was already pinned.
func (s ThreadPinSet) Add(guildID, threadID string) bool {
	if s.Contains(guildID, threadID) {
		return false
	}
	s[guildID] = append(s[guildID], Snowflake(threadID))
	return true
}

// Remove drops threadID from the guild list. It returns false if it wasn't pinned.
func (s ThreadPinSet) Remove(guildID, threadID string) bool {
	threads := s[guildID]
	idx := slices.Index(threads, Snowflake(threadID))
	if idx < 0 {
		return false
	}
	s[guildID] = slices.Delete(threads, idx, idx+1)
	return true
}

// OwnerOf returns the guild whose list contains threadID
func (s ThreadPinSet) OwnerOf(threadID string) (string, bool) {
	for _, guildID := range s.guildIDs() {
		if s.Contains(guildID, threadID) {
			return guildID, true
		}
	}
	return "", false
}

// ThreadIDs flattens every guild list into one working set
func (s ThreadPinSet) ThreadIDs() []string {
	var threadIDs []string
	for _, guildID := range s.guildIDs() {
		for _, threadID := range s[guildID] {
			threadIDs = append(threadIDs, threadID.String())
		}
	}
	return threadIDs
}

func (s ThreadPinSet) guildIDs() []string {
	guildIDs := make([]string, 0, len(s))
	for guildID := range s {
		guildIDs = append(guildIDs, guildID)
	}
	sort.Strings(guildIDs)
	return guildIDs
}
