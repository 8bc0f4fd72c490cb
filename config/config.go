package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ecessbot/core/log"
)

type DiscordConfig struct {
	BotToken      string
	CommandPrefix string
	OwnerIDs      []string
}

// IsOwner reports whether userID is one of the configured bot owners
func (c DiscordConfig) IsOwner(userID string) bool {
	for _, ownerID := range c.OwnerIDs {
		if ownerID == userID {
			return true
		}
	}
	return false
}

type ReconcileConfig struct {
	Interval            time.Duration
	AutoArchiveDuration int // minutes
}

type SessionConfig struct {
	ConfirmTimeout       time.Duration
	ButtonConfirmTimeout time.Duration
}

type CourseLookupConfig struct {
	Delay   time.Duration
	Retries int
}

type AppConfig struct {
	DataDir              string
	Port                 string
	Environment          string
	LogLevel             string
	SlackAlertWebhookURL string
	EventWorkers         int

	DiscordConfig      DiscordConfig
	ReconcileConfig    ReconcileConfig
	SessionConfig      SessionConfig
	CourseLookupConfig CourseLookupConfig
}

// LoadConfig reads the optional envFile (".env" when empty) and then the process environment
func LoadConfig(envFile string) (*AppConfig, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Warn("⚠️ Could not load env file, continuing with system env vars", "file", envFile)
	}

	botToken, err := getEnvRequired("DISCORD_BOT_TOKEN")
	if err != nil {
		return nil, err
	}

	interval, err := getDurationWithDefault("RECONCILE_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}
	autoArchive, err := getIntWithDefault("AUTO_ARCHIVE_DURATION", 1440)
	if err != nil {
		return nil, err
	}
	confirmTimeout, err := getDurationWithDefault("CONFIRM_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	buttonTimeout, err := getDurationWithDefault("BUTTON_CONFIRM_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, err
	}
	lookupDelay, err := getDurationWithDefault("COURSE_LOOKUP_DELAY", time.Second)
	if err != nil {
		return nil, err
	}
	lookupRetries, err := getIntWithDefault("COURSE_LOOKUP_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	eventWorkers, err := getIntWithDefault("EVENT_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		DataDir:              getEnvWithDefault("DATA_DIR", "secrets"),
		Port:                 getEnvWithDefault("PORT", "8080"),
		Environment:          getEnvWithDefault("ENVIRONMENT", "dev"),
		LogLevel:             getEnvWithDefault("LOG_LEVEL", "info"),
		SlackAlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		EventWorkers:         eventWorkers,

		DiscordConfig: DiscordConfig{
			BotToken:      botToken,
			CommandPrefix: getEnvWithDefault("COMMAND_PREFIX", "!"),
			OwnerIDs:      splitList(os.Getenv("OWNER_IDS")),
		},
		ReconcileConfig: ReconcileConfig{
			Interval:            interval,
			AutoArchiveDuration: autoArchive,
		},
		SessionConfig: SessionConfig{
			ConfirmTimeout:       confirmTimeout,
			ButtonConfirmTimeout: buttonTimeout,
		},
		CourseLookupConfig: CourseLookupConfig{
			Delay:   lookupDelay,
			Retries: lookupRetries,
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	if len(config.DiscordConfig.OwnerIDs) == 0 {
		log.Warn("⚠️ OWNER_IDS not configured - owner-only commands will be rejected")
	}
	if config.SlackAlertWebhookURL == "" {
		log.Info("⚠️ Slack alert webhook not configured - error alerts will only be logged")
	}

	return config, nil
}

func (c *AppConfig) validate() error {
	if c.ReconcileConfig.Interval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}
	if c.ReconcileConfig.AutoArchiveDuration <= 0 {
		return fmt.Errorf("AUTO_ARCHIVE_DURATION must be positive")
	}
	if c.EventWorkers <= 0 {
		return fmt.Errorf("EVENT_WORKERS must be positive")
	}
	if c.CourseLookupConfig.Retries < 0 {
		return fmt.Errorf("COURSE_LOOKUP_RETRIES must not be negative")
	}
	return nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %w", key, err)
	}
	return parsed, nil
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid integer: %w", key, err)
	}
	return parsed, nil
}

func splitList(raw string) []string {
	var values []string
	for _, value := range strings.Split(raw, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}
