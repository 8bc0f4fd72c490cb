package utils

import (
	"fmt"
	"strings"

	"ecessbot/models"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// Paginate splits a listing into embeds titled "<title> - i of n"
func Paginate(listing models.Listing) []models.Embed {
	AssertInvariant(listing.EntriesPerPage > 0, "listing page size must be positive")

	var pages [][]string
	for start := 0; start < len(listing.Entries); start += listing.EntriesPerPage {
		end := min(start+listing.EntriesPerPage, len(listing.Entries))
		pages = append(pages, listing.Entries[start:end])
	}

	embeds := make([]models.Embed, 0, len(pages))
	for i, page := range pages {
		embeds = append(embeds, models.Embed{
			Title:       fmt.Sprintf("%s - %d of %d", listing.Title, i+1, len(pages)),
			Description: strings.Join(page, "\n"),
		})
	}
	return embeds
}
