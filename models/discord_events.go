package models

type ReactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	Emote     Emote
}

type IncomingMessage struct {
	ID          string
	GuildID     string
	ChannelID   string
	AuthorID    string
	AuthorIsBot bool
	Content     string
	Attachments []Attachment
}

type ComponentInteraction struct {
	CustomID  string
	UserID    string
	ChannelID string
}

type ThreadArchivedEvent struct {
	ThreadID string
	GuildID  string
}

// Invocation identifies who ran a command and where
type Invocation struct {
	GuildID     string
	ChannelID   string
	MessageID   string
	UserID      string
	Attachments []Attachment
}
