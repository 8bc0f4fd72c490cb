package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadPinSet(t *testing.T) {
	pins := NewThreadPinSet()

	assert.True(t, pins.Add("guild-1", "100"))
	assert.False(t, pins.Add("guild-1", "100"), "a thread appears at most once per guild")
	assert.True(t, pins.Add("guild-2", "200"))
	assert.True(t, pins.Add("guild-1", "101"))

	assert.Equal(t, []string{"100", "101", "200"}, pins.ThreadIDs())

	owner, ok := pins.OwnerOf("200")
	assert.True(t, ok)
	assert.Equal(t, "guild-2", owner)

	assert.True(t, pins.Remove("guild-1", "100"))
	assert.False(t, pins.Remove("guild-1", "100"))
	assert.Equal(t, []Snowflake{"101"}, pins["guild-1"])

	_, ok = pins.OwnerOf("100")
	assert.False(t, ok)
}
