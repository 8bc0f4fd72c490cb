package prompts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ecessbot/clients/discord"
	"ecessbot/models"
)

const (
	testChannelID = "30"
	testUserID    = "10"
)

func setupPromptsTest(t *testing.T) (*PromptsService, *discord.MockDiscordClient) {
	discordClient := new(discord.MockDiscordClient)
	t.Cleanup(func() { discordClient.AssertExpectations(t) })
	return NewPromptsService(discordClient), discordClient
}

// answerWhenSent sends reply once the prompt message went out
func answerWhenSent(discordClient *discord.MockDiscordClient, reply func(msg models.OutgoingMessage)) {
	discordClient.On("SendMessage", mock.Anything, testChannelID, mock.AnythingOfType("models.OutgoingMessage")).
		Run(func(args mock.Arguments) {
			go reply(args.Get(2).(models.OutgoingMessage))
		}).
		Return(&models.Message{ID: "1"}, nil).
		Once()
}

func TestPromptsService_ConfirmReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    bool
		handled bool
	}{
		{name: "yes", reply: "y", want: true, handled: true},
		{name: "full yes", reply: " YES ", want: true, handled: true},
		{name: "no", reply: "n", want: false, handled: true},
		{name: "any other reply is a no", reply: "wait, which message?", want: false, handled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, discordClient := setupPromptsTest(t)
			handled := make(chan bool, 1)
			answerWhenSent(discordClient, func(models.OutgoingMessage) {
				handled <- service.HandleMessage(models.IncomingMessage{
					ChannelID: testChannelID,
					AuthorID:  testUserID,
					Content:   tt.reply,
				})
			})

			got, err := service.ConfirmReply(context.Background(), testChannelID, testUserID, "Overwrite?", time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.handled, <-handled)
		})
	}
}

func TestPromptsService_ConfirmReply_IgnoresOtherUsers(t *testing.T) {
	service, discordClient := setupPromptsTest(t)
	handled := make(chan bool, 1)
	answerWhenSent(discordClient, func(models.OutgoingMessage) {
		handled <- service.HandleMessage(models.IncomingMessage{
			ChannelID: testChannelID,
			AuthorID:  "someone-else",
			Content:   "y",
		})
	})

	got, err := service.ConfirmReply(context.Background(), testChannelID, testUserID, "Overwrite?", 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, got, "timeout counts as no")
	assert.False(t, <-handled)
}

func TestPromptsService_HandleMessage_NoWaiter(t *testing.T) {
	service, _ := setupPromptsTest(t)
	assert.False(t, service.HandleMessage(models.IncomingMessage{
		ChannelID: testChannelID,
		AuthorID:  testUserID,
		Content:   "y",
	}))
}

func TestPromptsService_ConfirmButtons(t *testing.T) {
	t.Run("continue", func(t *testing.T) {
		service, discordClient := setupPromptsTest(t)
		answerWhenSent(discordClient, func(msg models.OutgoingMessage) {
			// Another user's press is ignored
			service.HandleComponent(models.ComponentInteraction{CustomID: msg.Buttons[1].CustomID, UserID: "intruder"})
			service.HandleComponent(models.ComponentInteraction{CustomID: msg.Buttons[0].CustomID, UserID: testUserID})
		})

		got, err := service.ConfirmButtons(context.Background(), testChannelID, testUserID,
			models.OutgoingMessage{Content: "Create 3 threads?"}, time.Second)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("cancel", func(t *testing.T) {
		service, discordClient := setupPromptsTest(t)
		answerWhenSent(discordClient, func(msg models.OutgoingMessage) {
			assert.Equal(t, "Continue", msg.Buttons[0].Label)
			assert.Equal(t, "Cancel", msg.Buttons[1].Label)
			assert.True(t, strings.HasPrefix(msg.Buttons[1].CustomID, confirmPrefix))
			service.HandleComponent(models.ComponentInteraction{CustomID: msg.Buttons[1].CustomID, UserID: testUserID})
		})

		got, err := service.ConfirmButtons(context.Background(), testChannelID, testUserID,
			models.OutgoingMessage{Content: "Create 3 threads?"}, time.Second)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("timeout", func(t *testing.T) {
		service, discordClient := setupPromptsTest(t)
		answerWhenSent(discordClient, func(models.OutgoingMessage) {})

		got, err := service.ConfirmButtons(context.Background(), testChannelID, testUserID,
			models.OutgoingMessage{Content: "Create 3 threads?"}, 20*time.Millisecond)
		require.NoError(t, err)
		assert.False(t, got)
	})
}

func TestPromptsService_HandleComponent_UnknownIDs(t *testing.T) {
	service, _ := setupPromptsTest(t)
	assert.False(t, service.HandleComponent(models.ComponentInteraction{CustomID: "something-else", UserID: testUserID}))
	assert.False(t, service.HandleComponent(models.ComponentInteraction{CustomID: "confirm:missing:yes", UserID: testUserID}))
}
