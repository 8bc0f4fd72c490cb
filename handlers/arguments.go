package handlers

import (
	"regexp"
	"strconv"
	"strings"

	"ecessbot/core"
	"ecessbot/models"
)

var (
	messageLinkRegex = regexp.MustCompile(`^https?://(?:\w+\.)?discord(?:app)?\.com/channels/(?:\d+|@me)/(\d+)/(\d+)/?$`)
	channelMessage   = regexp.MustCompile(`^(\d+)-(\d+)$`)
	snowflakeRegex   = regexp.MustCompile(`^\d{5,20}$`)
	roleMention      = regexp.MustCompile(`^<@&(\d+)>$`)
	channelMention   = regexp.MustCompile(`^<#(\d+)>$`)
	customEmote      = regexp.MustCompile(`^<(a?):(\w+):(\d+)>$`)
)

// parseMessageRef accepts a message link, "channelID-messageID" or a bare message id
// in the invoking channel
func parseMessageRef(raw, invokingChannelID string) (string, string, error) {
	if match := messageLinkRegex.FindStringSubmatch(raw); match != nil {
		return match[1], match[2], nil
	}
	if match := channelMessage.FindStringSubmatch(raw); match != nil {
		return match[1], match[2], nil
	}
	if snowflakeRegex.MatchString(raw) {
		return invokingChannelID, raw, nil
	}
	return "", "", core.NewValidationError("`%s` isn't a message link or id.", raw)
}

func parseRole(raw string) (string, error) {
	if match := roleMention.FindStringSubmatch(raw); match != nil {
		return match[1], nil
	}
	if snowflakeRegex.MatchString(raw) {
		return raw, nil
	}
	return "", core.NewValidationError("`%s` isn't a role.", raw)
}

// parseChannel accepts a channel or thread mention or a bare id
func parseChannel(raw string) (string, error) {
	if match := channelMention.FindStringSubmatch(raw); match != nil {
		return match[1], nil
	}
	if snowflakeRegex.MatchString(raw) {
		return raw, nil
	}
	return "", core.NewValidationError("`%s` isn't a channel.", raw)
}

// parseEmote accepts a custom emote, a bare custom emote id or a unicode literal
func parseEmote(raw string) (models.Emote, error) {
	if match := customEmote.FindStringSubmatch(raw); match != nil {
		return models.Emote{ID: match[3], Name: match[2], Animated: match[1] == "a"}, nil
	}
	if snowflakeRegex.MatchString(raw) {
		return models.Emote{ID: raw}, nil
	}
	if raw == "" || strings.HasPrefix(raw, "<") {
		return models.Emote{}, core.NewValidationError("`%s` isn't an emote.", raw)
	}
	return models.Emote{Name: raw}, nil
}

// parseCourse joins the remaining arguments so "CPEN 211" and "CPEN211" both work
func parseCourse(args []string) (models.Course, error) {
	raw := strings.Join(args, "")
	course, err := models.ParseCourse(raw)
	if err != nil {
		return models.Course{}, core.NewValidationError(
			"`%s` isn't a valid course. It should look like `CPEN211`.", strings.Join(args, " "))
	}
	return course, nil
}

func parseCount(raw string) (int, error) {
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewValidationError("`%s` isn't a number.", raw)
	}
	return count, nil
}

func parseUniqueFlag(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch strings.ToLower(args[0]) {
	case "unique", "true", "yes", "y", "1":
		return true
	}
	return false
}
