package prompts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"ecessbot/clients"
	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
)

const (
	confirmPrefix = "confirm:"
	answerYes     = "yes"
	answerNo      = "no"
)

type replyWaiter struct {
	channelID string
	userID    string
	answers   chan bool
}

type buttonWaiter struct {
	userID  string
	answers chan bool
}

// PromptsService hands operator replies and button presses to whichever prompt is waiting for them
type PromptsService struct {
	discordClient clients.DiscordClient

	mutex   sync.Mutex
	replies map[string]*replyWaiter
	buttons map[string]*buttonWaiter
}

func NewPromptsService(discordClient clients.DiscordClient) *PromptsService {
	return &PromptsService{
		discordClient: discordClient,
		replies:       make(map[string]*replyWaiter),
		buttons:       make(map[string]*buttonWaiter),
	}
}

// ConfirmReply returns false without error when the operator replies with anything but y/yes or the timeout passes
func (s *PromptsService) ConfirmReply(
	ctx context.Context,
	channelID, userID, prompt string,
	timeout time.Duration,
) (bool, error) {
	key := replyKey(channelID, userID)
	waiter := &replyWaiter{channelID: channelID, userID: userID, answers: make(chan bool, 1)}

	s.mutex.Lock()
	if _, exists := s.replies[key]; exists {
		s.mutex.Unlock()
		return false, core.NewConflictError("Already waiting for your answer to another question.")
	}
	s.replies[key] = waiter
	s.mutex.Unlock()
	defer s.removeReply(key, waiter)

	_, err := s.discordClient.SendMessage(ctx, channelID, models.OutgoingMessage{
		Content: fmt.Sprintf("%s (y/n, %s to answer)", prompt, timeout),
	})
	if err != nil {
		return false, fmt.Errorf("failed to send confirmation prompt: %w", err)
	}

	return s.await(ctx, waiter.answers, timeout, channelID)
}

func (s *PromptsService) ConfirmButtons(
	ctx context.Context,
	channelID, userID string,
	msg models.OutgoingMessage,
	timeout time.Duration,
) (bool, error) {
	promptID := ulid.Make().String()
	waiter := &buttonWaiter{userID: userID, answers: make(chan bool, 1)}

	s.mutex.Lock()
	s.buttons[promptID] = waiter
	s.mutex.Unlock()
	defer func() {
		s.mutex.Lock()
		delete(s.buttons, promptID)
		s.mutex.Unlock()
	}()

	msg.Buttons = []models.Button{
		{Label: "Continue", CustomID: confirmPrefix + promptID + ":" + answerYes, Primary: true},
		{Label: "Cancel", CustomID: confirmPrefix + promptID + ":" + answerNo},
	}
	if _, err := s.discordClient.SendMessage(ctx, channelID, msg); err != nil {
		return false, fmt.Errorf("failed to send confirmation buttons: %w", err)
	}

	return s.await(ctx, waiter.answers, timeout, channelID)
}

func (s *PromptsService) await(ctx context.Context, answers <-chan bool, timeout time.Duration, channelID string) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case answer := <-answers:
		return answer, nil
	case <-timer.C:
		log.Info("⏱️ Confirmation timed out", "channel_id", channelID, "timeout", timeout)
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *PromptsService) HandleMessage(msg models.IncomingMessage) bool {
	if msg.AuthorIsBot {
		return false
	}

	s.mutex.Lock()
	waiter, exists := s.replies[replyKey(msg.ChannelID, msg.AuthorID)]
	s.mutex.Unlock()
	if !exists {
		return false
	}

	select {
	case waiter.answers <- isYes(msg.Content):
		return true
	default:
		return false
	}
}

func (s *PromptsService) HandleComponent(interaction models.ComponentInteraction) bool {
	rest, ok := strings.CutPrefix(interaction.CustomID, confirmPrefix)
	if !ok {
		return false
	}
	promptID, answer, ok := strings.Cut(rest, ":")
	if !ok {
		return false
	}

	s.mutex.Lock()
	waiter, exists := s.buttons[promptID]
	s.mutex.Unlock()
	if !exists || waiter.userID != interaction.UserID {
		return false
	}

	select {
	case waiter.answers <- answer == answerYes:
		return true
	default:
		return false
	}
}

func (s *PromptsService) removeReply(key string, waiter *replyWaiter) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.replies[key] == waiter {
		delete(s.replies, key)
	}
}

func replyKey(channelID, userID string) string {
	return channelID + ":" + userID
}

// isYes treats any reply other than y/yes as a no
func isYes(content string) bool {
	switch strings.ToLower(strings.TrimSpace(content)) {
	case "y", "yes":
		return true
	}
	return false
}
