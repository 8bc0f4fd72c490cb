package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecessbot/models"
)

func TestAssertInvariant(t *testing.T) {
	assert.NotPanics(t, func() { AssertInvariant(true, "this should not panic") })
	assert.PanicsWithValue(t, "invariant violated - test message", func() { AssertInvariant(false, "test message") })
}

func TestPaginate(t *testing.T) {
	entries := make([]string, 0, 27)
	for i := range 27 {
		entries = append(entries, fmt.Sprintf("entry %d", i))
	}

	embeds := Paginate(models.Listing{Title: "Available Courses", Entries: entries, EntriesPerPage: 25})
	require.Len(t, embeds, 2)
	assert.Equal(t, "Available Courses - 1 of 2", embeds[0].Title)
	assert.Equal(t, "Available Courses - 2 of 2", embeds[1].Title)
	assert.Equal(t, "entry 25\nentry 26", embeds[1].Description)

	assert.Empty(t, Paginate(models.Listing{Title: "Empty", EntriesPerPage: 10}))
	assert.Panics(t, func() { Paginate(models.Listing{Title: "Broken", Entries: entries}) })
}
