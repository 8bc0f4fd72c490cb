package middleware

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"ecessbot/core/log"
)

type SlackAlertConfig struct {
	WebhookURL  string
	Environment string
	AppName     string
}

// ErrorAlertMiddleware is the fault boundary for commands, gateway events and
// background ticks. Panics and unexpected errors are logged and posted to a Slack
// webhook, with identical errors alerted at most once per cooldown.
type ErrorAlertMiddleware struct {
	config        SlackAlertConfig
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.Mutex
	alertCooldown time.Duration
	pending       sync.WaitGroup
}

func NewErrorAlertMiddleware(config SlackAlertConfig) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		config:        config,
		alertedErrors: make(map[string]time.Time),
		alertCooldown: 10 * time.Minute,
	}
}

// HTTPMiddleware wraps HTTP handlers
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer m.recoverAndAlert(fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

// WrapEventHandler runs a gateway event handler. Errors stop here.
func (m *ErrorAlertMiddleware) WrapEventHandler(eventName string, handler func() error) func() {
	return func() {
		defer m.recoverAndAlert(fmt.Sprintf("Gateway event: %s", eventName))

		if err := handler(); err != nil {
			log.Error("❌ Failed to handle gateway event", "event", eventName, "error", err)
			m.alertOnError(err, fmt.Sprintf("Gateway event: %s", eventName))
		}
	}
}

// WrapBackgroundTask runs one iteration of a background loop
func (m *ErrorAlertMiddleware) WrapBackgroundTask(taskName string, task func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		defer m.recoverAndAlert(fmt.Sprintf("Background task: %s", taskName))

		if err := task(ctx); err != nil {
			log.Error("❌ Background task failed", "task", taskName, "error", err)
			m.alertOnError(err, fmt.Sprintf("Background task: %s", taskName))
			return err
		}
		return nil
	}
}

// RunCommand executes a command and turns a panic into an error so the caller can
// still reply to the operator. Unexpected errors are alerted; the caller decides which
// errors are expected.
func (m *ErrorAlertMiddleware) RunCommand(commandName string, isExpected func(error) bool, command func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			errorMsg := fmt.Sprintf("Command %s: PANIC - %v", commandName, r)
			log.Error("❌ Command panicked", "command", commandName, "panic", r)
			m.sendAsync(errorMsg, fmt.Sprintf("Command: %s (PANIC)", commandName))
			err = fmt.Errorf("command %s panicked: %v", commandName, r)
		}
	}()

	err = command()
	if err != nil && !isExpected(err) {
		log.Error("❌ Command failed", "command", commandName, "error", err)
		m.alertOnError(err, fmt.Sprintf("Command: %s", commandName))
	}
	return err
}

// Wait blocks until in-flight alerts are delivered
func (m *ErrorAlertMiddleware) Wait() {
	m.pending.Wait()
}

func (m *ErrorAlertMiddleware) alertOnError(err error, source string) {
	errorMsg := fmt.Sprintf("%s: %v", source, err)
	hash := fmt.Sprintf("%x", md5.Sum([]byte(errorMsg)))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if lastAlert, exists := m.alertedErrors[hash]; exists && time.Since(lastAlert) < m.alertCooldown {
		return
	}

	m.sendAsync(errorMsg, source)
	m.alertedErrors[hash] = time.Now()
}

func (m *ErrorAlertMiddleware) recoverAndAlert(source string) {
	if r := recover(); r != nil {
		errorMsg := fmt.Sprintf("%s: PANIC - %v", source, r)
		log.Error("❌ Recovered from panic", "source", source, "panic", r)
		m.sendAsync(errorMsg, source+" (PANIC)")
	}
}

func (m *ErrorAlertMiddleware) sendAsync(errorMsg, source string) {
	if m.config.WebhookURL == "" {
		return
	}
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		m.sendSlackAlert(errorMsg, source)
	}()
}

func (m *ErrorAlertMiddleware) sendSlackAlert(errorMsg, source string) {
	envPrefix := ""
	if m.config.Environment == "dev" {
		envPrefix = "[dev] "
	}

	header := slack.NewHeaderBlock(slack.NewTextBlockObject(
		slack.PlainTextType, fmt.Sprintf("🚨 %s[%s] Error Alert", envPrefix, m.config.AppName), true, false))
	fields := slack.NewSectionBlock(nil, []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Service:* %s", m.config.AppName), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Environment:* %s", m.config.Environment), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Context:* %s", source), false, false),
	}, nil)
	body := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Error:*\n```%s```", errorMsg), false, false), nil, nil)

	msg := &slack.WebhookMessage{
		Text:   errorMsg,
		Blocks: &slack.Blocks{BlockSet: []slack.Block{header, fields, body}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := slack.PostWebhookContext(ctx, m.config.WebhookURL, msg); err != nil {
		log.Error("❌ Failed to send Slack alert", "error", err)
	}
}
