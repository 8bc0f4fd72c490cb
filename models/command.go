package models

// CommandResult represents the result of processing a command
type CommandResult struct {
	Message  string
	Warnings []string
	Embeds   []Embed
	Listing  *Listing
}

// Listing is a paginated set of text entries
type Listing struct {
	Title          string
	Entries        []string
	EntriesPerPage int
}

func NewCommandResult(message string) *CommandResult {
	return &CommandResult{Message: message}
}
