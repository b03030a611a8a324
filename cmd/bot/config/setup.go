package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("no bot token provided")

// Parse builds the configuration. A .env file is loaded first if present, then the YAML file named
// by CONFIG_FILE, then the environment which overrides both.
func Parse(l *slog.Logger) (*Values, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	} else {
		l.Debug("Loaded .env file")
	}

	v := new(Values)
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := loadFile(path, v); err != nil {
			return nil, err
		}
		l.Debug("Loaded configuration file", slog.String("path", path))
	}

	fromEnv(l, v)
	applyDefaults(l, v)

	if err := v.validate(); err != nil {
		return nil, err
	}
	return v, nil
}

func loadFile(path string, v *Values) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("error parsing configuration file %s: %w", path, err)
	}
	return nil
}

func fromEnv(l *slog.Logger, v *Values) {
	set := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			l.Debug("Found value in environment", slog.String("key", key))
			*dst = val
		}
	}

	set(EnvDiscordBotToken, &v.BotToken)
	set(EnvBotToken, &v.BotToken)
	set(EnvApplicationId, &v.ApplicationId)
	set(EnvMonitoringPort, &v.Port)
	set(EnvPort, &v.Port)
	set(EnvDataDir, &v.DataDir)
	set(EnvTranscriptDir, &v.TranscriptDir)
	set(EnvMongoUri, &v.MongoUri)
	set(EnvMongoDatabase, &v.MongoDatabase)
	set(EnvAmqpUrl, &v.AmqpUrl)
	set(EnvAmqpExchange, &v.AmqpExchange)
	set(EnvLanguage, &v.Language)
}

func applyDefaults(l *slog.Logger, v *Values) {
	if v.Port == "" {
		// Default to 8080 if not provided.
		v.Port = DefaultPort
		l.Info("No port provided, defaulting to "+DefaultPort, slog.String("key", EnvPort))
	}
	if v.DataDir == "" {
		v.DataDir = DefaultDataDir
	}
	if v.TranscriptDir == "" {
		v.TranscriptDir = DefaultTranscriptDir
	}
	if v.Language == "" {
		v.Language = DefaultLanguage
	}
}

func (v *Values) validate() error {
	if v.BotToken == "" {
		return fmt.Errorf("%w: set %s or %s", ErrMissingToken, EnvBotToken, EnvDiscordBotToken)
	}
	if p, err := strconv.Atoi(v.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid port %q", v.Port)
	}
	return nil
}

// StorageDescription names the configured document backend for logging.
func (v *Values) StorageDescription() slog.Attr {
	if v.MongoUri != "" {
		return slog.String(logging.KeyDal, "mongo")
	}
	return slog.String(logging.KeyDal, "file:"+v.DataDir)
}
