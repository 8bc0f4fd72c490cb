package prompts

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ecessbot/models"
)

// MockPromptsService is a mock implementation of the PromptsService interface
type MockPromptsService struct {
	mock.Mock
}

func (m *MockPromptsService) ConfirmReply(
	ctx context.Context,
	channelID, userID, prompt string,
	timeout time.Duration,
) (bool, error) {
	args := m.Called(ctx, channelID, userID, prompt, timeout)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromptsService) ConfirmButtons(
	ctx context.Context,
	channelID, userID string,
	msg models.OutgoingMessage,
	timeout time.Duration,
) (bool, error) {
	args := m.Called(ctx, channelID, userID, msg, timeout)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromptsService) HandleMessage(msg models.IncomingMessage) bool {
	args := m.Called(msg)
	return args.Bool(0)
}

func (m *MockPromptsService) HandleComponent(interaction models.ComponentInteraction) bool {
	args := m.Called(interaction)
	return args.Bool(0)
}
