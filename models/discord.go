package models

import "fmt"

// Emote is either a unicode emoji (Name only) or a custom guild emote (ID + Name)
type Emote struct {
	ID       string
	Name     string
	Animated bool
}

func (e Emote) IsCustom() bool {
	return e.ID != ""
}

// Key is the form used in role mapping documents
func (e Emote) Key() string {
	if e.IsCustom() {
		return e.ID
	}
	return e.Name
}

// APIName is the form the reactions endpoints expect
func (e Emote) APIName() string {
	if e.IsCustom() {
		name := e.Name
		if name == "" {
			name = "_"
		}
		return name + ":" + e.ID
	}
	return e.Name
}

func (e Emote) String() string {
	if !e.IsCustom() {
		return e.Name
	}
	if e.Animated {
		return fmt.Sprintf("<a:%s:%s>", e.Name, e.ID)
	}
	return fmt.Sprintf("<:%s:%s>", e.Name, e.ID)
}

type Role struct {
	ID      string
	GuildID string
	Name    string
}

func (r Role) Mention() string {
	return RoleMention(r.ID)
}

func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

type Thread struct {
	ID       string
	GuildID  string
	ParentID string
	Name     string
	Archived bool
	Locked   bool
}

func (t Thread) Mention() string {
	return ChannelMention(t.ID)
}

// ThreadEdit carries the fields to change on a thread; nil fields are left untouched
type ThreadEdit struct {
	Archived            *bool
	Locked              *bool
	AutoArchiveDuration int
}

type Channel struct {
	ID      string
	GuildID string
	Name    string
}

func (c Channel) Mention() string {
	return ChannelMention(c.ID)
}

func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}

type Attachment struct {
	Filename string
	URL      string
}

type Message struct {
	ID          string
	ChannelID   string
	GuildID     string
	AuthorID    string
	Content     string
	Reactions   []Emote
	Attachments []Attachment
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

type Embed struct {
	Title       string
	Description string
	URL         string
	Footer      string
	Fields      []EmbedField
}

type Button struct {
	Label    string
	CustomID string
	Primary  bool
}

// OutgoingMessage is a message the bot sends. Mentions are never pinged unless AllowMentions is set.
type OutgoingMessage struct {
	Content       string
	ReplyTo       string
	Embeds        []Embed
	Buttons       []Button
	AllowMentions bool
}
