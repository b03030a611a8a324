package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	// KeyError is the key used for errors in log attributes.
	KeyError = "err"

	// KeyDal is the key used for the data access layer in log attributes.
	KeyDal = "dal"

	// KeyGuild is the key used for the guild ID.
	KeyGuild = "guild_id"

	// KeyChannel is the key used for the channel ID.
	KeyChannel = "channel_id"

	// KeyTicket is the key used for the ticket name.
	KeyTicket = "ticket"

	// KeyUser is the key used for the user ID.
	KeyUser = "user_id"

	// KeyCommand is the key used for the command or interaction name.
	KeyCommand = "command"

	// EnvLogLevel is the environment variable for the log level.
	EnvLogLevel = `LOG_LEVEL`
)

// Name is the name of the application, attached to every log line.
type Name string

// Config is the logger configuration.
type Config struct {
	// AppName is the name of the application.
	AppName Name

	// Level is the minimum level that is logged.
	Level slog.Level

	// AddSource adds the source file and line to each log line.
	AddSource bool
}

// NewConfig creates a new logging configuration. The level is read from LOG_LEVEL, defaulting to info.
func NewConfig(appName Name) *Config {
	return &Config{
		AppName:   appName,
		Level:     parseLevel(os.Getenv(EnvLogLevel)),
		AddSource: true,
	}
}

// CommonLogger creates the JSON logger used across the application and sets it as the default.
func CommonLogger(cfg *Config) (*slog.Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logging config is nil")
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: cfg.AddSource,
		Level:     cfg.Level,
	})

	l := slog.New(h).With(slog.String("app", string(cfg.AppName)))
	slog.SetDefault(l)
	return l, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
