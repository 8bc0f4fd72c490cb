package discord

import (
	"github.com/bwmarrin/discordgo"

	"ecessbot/models"
)

func toThread(channel *discordgo.Channel) *models.Thread {
	thread := &models.Thread{
		ID:       channel.ID,
		GuildID:  channel.GuildID,
		ParentID: channel.ParentID,
		Name:     channel.Name,
	}
	if channel.ThreadMetadata != nil {
		thread.Archived = channel.ThreadMetadata.Archived
		thread.Locked = channel.ThreadMetadata.Locked
	}
	return thread
}

func toChannel(channel *discordgo.Channel) *models.Channel {
	return &models.Channel{
		ID:      channel.ID,
		GuildID: channel.GuildID,
		Name:    channel.Name,
	}
}

func toRole(guildID string, role *discordgo.Role) *models.Role {
	return &models.Role{
		ID:      role.ID,
		GuildID: guildID,
		Name:    role.Name,
	}
}

// ToEmote maps a discordgo emoji (from a reaction payload) to the domain emote
func ToEmote(emoji discordgo.Emoji) models.Emote {
	return models.Emote{
		ID:       emoji.ID,
		Name:     emoji.Name,
		Animated: emoji.Animated,
	}
}

func toMessage(message *discordgo.Message) *models.Message {
	result := &models.Message{
		ID:        message.ID,
		ChannelID: message.ChannelID,
		GuildID:   message.GuildID,
		Content:   message.Content,
	}
	if message.Author != nil {
		result.AuthorID = message.Author.ID
	}
	for _, reaction := range message.Reactions {
		if reaction.Emoji == nil {
			continue
		}
		result.Reactions = append(result.Reactions, ToEmote(*reaction.Emoji))
	}
	for _, attachment := range message.Attachments {
		result.Attachments = append(result.Attachments, ToAttachment(attachment))
	}
	return result
}

func ToAttachment(attachment *discordgo.MessageAttachment) models.Attachment {
	return models.Attachment{
		Filename: attachment.Filename,
		URL:      attachment.URL,
	}
}

func toDiscordEmbed(embed models.Embed) *discordgo.MessageEmbed {
	result := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		URL:         embed.URL,
	}
	if embed.Footer != "" {
		result.Footer = &discordgo.MessageEmbedFooter{Text: embed.Footer}
	}
	for _, field := range embed.Fields {
		result.Fields = append(result.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}
	return result
}
