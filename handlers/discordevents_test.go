package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ecessbot/clients/discord"
	"ecessbot/config"
	"ecessbot/middleware"
	"ecessbot/models"
	"ecessbot/services/prompts"
)

type eventsTestFixture struct {
	handler *DiscordEventsHandler
	mocks   *eventsMocks
	ctx     context.Context
}

type eventsMocks struct {
	discordClient  *discord.MockDiscordClient
	promptsService *prompts.MockPromptsService
	reactionRoles  *MockReactionRolesUseCase
	pins           *MockThreadReconciler
	courses        *MockThreadReconciler
}

func setupEventsTest(t *testing.T) *eventsTestFixture {
	mocks := &eventsMocks{
		discordClient:  new(discord.MockDiscordClient),
		promptsService: new(prompts.MockPromptsService),
		reactionRoles:  new(MockReactionRolesUseCase),
		pins:           new(MockThreadReconciler),
		courses:        new(MockThreadReconciler),
	}
	alerts := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{AppName: "ecessbot"})
	commands := NewCommandsHandler(
		mocks.discordClient,
		alerts,
		config.DiscordConfig{CommandPrefix: "!", OwnerIDs: []string{testOwnerID}},
		new(MockRoleMappingUseCase),
		new(MockPinsUseCase),
		new(MockCoursesUseCase),
	)
	handler := NewDiscordEventsHandler(
		mocks.discordClient,
		alerts,
		mocks.promptsService,
		commands,
		mocks.reactionRoles,
		2,
		mocks.pins,
		mocks.courses,
	)
	return &eventsTestFixture{handler: handler, mocks: mocks, ctx: context.Background()}
}

func (f *eventsTestFixture) assertAllExpectations(t *testing.T) {
	f.mocks.discordClient.AssertExpectations(t)
	f.mocks.promptsService.AssertExpectations(t)
	f.mocks.reactionRoles.AssertExpectations(t)
	f.mocks.pins.AssertExpectations(t)
	f.mocks.courses.AssertExpectations(t)
}

func messageCreate(authorID, content string, bot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        testMessageID,
		GuildID:   testGuildID,
		ChannelID: testChannelID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Bot: bot},
		Attachments: []*discordgo.MessageAttachment{
			{Filename: "schedule.ics", URL: "https://cdn.example.test/schedule.ics"},
		},
	}}
}

func TestDiscordEventsHandler_MessageCreated(t *testing.T) {
	t.Run("commands run on the pool", func(t *testing.T) {
		f := setupEventsTest(t)
		f.mocks.promptsService.On("HandleMessage", mock.AnythingOfType("models.IncomingMessage")).Return(false)
		f.mocks.discordClient.On("SendMessage", f.ctx, testChannelID, models.OutgoingMessage{
			Content: "Pong!",
			ReplyTo: testMessageID,
		}).Return(&models.Message{ID: "900"}, nil).Once()

		f.handler.handleMessageCreatedEvent(nil, messageCreate(testUserID, "!ping", false))
		f.handler.Stop()

		f.assertAllExpectations(t)
	})

	t.Run("prompt answers are not treated as commands", func(t *testing.T) {
		f := setupEventsTest(t)
		f.mocks.promptsService.On("HandleMessage", mock.AnythingOfType("models.IncomingMessage")).Return(true)

		f.handler.handleMessageCreatedEvent(nil, messageCreate(testUserID, "!ping", false))
		f.handler.Stop()

		f.mocks.discordClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
		f.assertAllExpectations(t)
	})

	t.Run("bot messages are dropped after prompts see them", func(t *testing.T) {
		f := setupEventsTest(t)
		f.mocks.promptsService.On("HandleMessage", mock.AnythingOfType("models.IncomingMessage")).Return(false)

		f.handler.handleMessageCreatedEvent(nil, messageCreate(testUserID, "!ping", true))
		f.handler.Stop()

		f.mocks.discordClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
		f.assertAllExpectations(t)
	})
}

func TestDiscordEventsHandler_Reactions(t *testing.T) {
	f := setupEventsTest(t)
	reaction := &discordgo.MessageReaction{
		UserID:    testUserID,
		MessageID: testMessageID,
		ChannelID: testChannelID,
		GuildID:   testGuildID,
		Emoji:     discordgo.Emoji{ID: "90001", Name: "ecess"},
	}
	event := models.ReactionEvent{
		GuildID:   testGuildID,
		ChannelID: testChannelID,
		MessageID: testMessageID,
		UserID:    testUserID,
		Emote:     models.Emote{ID: "90001", Name: "ecess"},
	}
	f.mocks.reactionRoles.On("ProcessReactionAdded", f.ctx, event).Return(nil).Once()
	f.mocks.reactionRoles.On("ProcessReactionRemoved", f.ctx, event).Return(errors.New("role gone")).Once()

	f.handler.handleReactionAddedEvent(nil, &discordgo.MessageReactionAdd{MessageReaction: reaction})
	f.handler.handleReactionRemovedEvent(nil, &discordgo.MessageReactionRemove{MessageReaction: reaction})

	dm := *reaction
	dm.GuildID = ""
	f.handler.handleReactionAddedEvent(nil, &discordgo.MessageReactionAdd{MessageReaction: &dm})
	f.handler.Stop()

	f.assertAllExpectations(t)
}

func TestDiscordEventsHandler_InteractionCreated(t *testing.T) {
	t.Run("button presses are delivered and acknowledged", func(t *testing.T) {
		f := setupEventsTest(t)
		f.mocks.promptsService.On("HandleComponent", models.ComponentInteraction{
			CustomID:  "confirm:abc:yes",
			UserID:    testUserID,
			ChannelID: testChannelID,
		}).Return(true)
		f.mocks.discordClient.On("AcknowledgeComponent", f.ctx, "interaction-1", "token-1").Return(nil)

		f.handler.handleInteractionCreatedEvent(nil, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			ID:        "interaction-1",
			Token:     "token-1",
			Type:      discordgo.InteractionMessageComponent,
			ChannelID: testChannelID,
			Member:    &discordgo.Member{User: &discordgo.User{ID: testUserID}},
			Data:      discordgo.MessageComponentInteractionData{CustomID: "confirm:abc:yes"},
		}})
		f.handler.Stop()

		f.assertAllExpectations(t)
	})

	t.Run("other interaction types are ignored", func(t *testing.T) {
		f := setupEventsTest(t)

		f.handler.handleInteractionCreatedEvent(nil, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
		}})
		f.handler.Stop()

		f.mocks.promptsService.AssertNotCalled(t, "HandleComponent", mock.Anything)
		f.assertAllExpectations(t)
	})
}

func TestDiscordEventsHandler_ThreadUpdated(t *testing.T) {
	thread := func(archived bool) *discordgo.ThreadUpdate {
		return &discordgo.ThreadUpdate{Channel: &discordgo.Channel{
			ID:             "20001",
			GuildID:        testGuildID,
			ThreadMetadata: &discordgo.ThreadMetadata{Archived: archived},
		}}
	}

	t.Run("archived threads go to the reconciler tracking them", func(t *testing.T) {
		f := setupEventsTest(t)
		f.mocks.pins.On("Tracks", f.ctx, "20001").Return(false, nil)
		f.mocks.courses.On("Tracks", f.ctx, "20001").Return(true, nil)
		f.mocks.courses.On("Domain").Return("course threads")
		f.mocks.courses.On("ReconcileThread", f.ctx, "20001").Return(nil).Once()

		f.handler.handleThreadUpdatedEvent(nil, thread(true))
		f.handler.Stop()

		f.mocks.pins.AssertNotCalled(t, "ReconcileThread", mock.Anything, mock.Anything)
		f.assertAllExpectations(t)
	})

	t.Run("unarchived updates are ignored", func(t *testing.T) {
		f := setupEventsTest(t)

		f.handler.handleThreadUpdatedEvent(nil, thread(false))
		f.handler.Stop()

		f.mocks.pins.AssertNotCalled(t, "Tracks", mock.Anything, mock.Anything)
		f.mocks.courses.AssertNotCalled(t, "Tracks", mock.Anything, mock.Anything)
	})

	t.Run("a lookup failure stops the repair", func(t *testing.T) {
		f := setupEventsTest(t)
		f.mocks.pins.On("Tracks", f.ctx, "20001").Return(false, errors.New("store unreadable"))

		err := f.handler.repairArchivedThread(f.ctx, models.ThreadArchivedEvent{ThreadID: "20001"})
		f.handler.Stop()

		assert.Error(t, err)
		f.mocks.courses.AssertNotCalled(t, "Tracks", mock.Anything, mock.Anything)
		f.assertAllExpectations(t)
	})
}

func TestMapToIncomingMessage(t *testing.T) {
	msg := mapToIncomingMessage(messageCreate(testUserID, "!courses list", true))

	assert.Equal(t, models.IncomingMessage{
		ID:          testMessageID,
		GuildID:     testGuildID,
		ChannelID:   testChannelID,
		AuthorID:    testUserID,
		AuthorIsBot: true,
		Content:     "!courses list",
		Attachments: []models.Attachment{{Filename: "schedule.ics", URL: "https://cdn.example.test/schedule.ics"}},
	}, msg)
}

func TestMapToComponentInteraction_DirectMessage(t *testing.T) {
	interaction := mapToComponentInteraction(&discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		User: &discordgo.User{ID: testUserID},
		Data: discordgo.MessageComponentInteractionData{CustomID: "confirm:abc:no"},
	})

	assert.Equal(t, models.ComponentInteraction{CustomID: "confirm:abc:no", UserID: testUserID}, interaction)
}
