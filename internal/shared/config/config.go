package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// AppEnv represents the application environment
type AppEnv string

const (
	AppEnvLocal       AppEnv = "local"
	AppEnvProduction  AppEnv = "production"
	AppEnvDevelopment AppEnv = "development"
	AppEnvTesting     AppEnv = "testing"
)

type Config struct {
	TelegramBotToken string  `koanf:"telegram_bot_token"`
	DBPath           string  `koanf:"db_path"`
	TargetChatID     string  `koanf:"target_chat_id"`
	WindowDays       int     `koanf:"window_days"`
	TopNMessages     int     `koanf:"top_n_messages"`
	SnippetLength    int     `koanf:"snippet_length"`
	HTTPPort         string  `koanf:"http_port"`
	ReportCron       string  `koanf:"report_cron"`
	DigestCron       string  `koanf:"digest_cron"`
	AllowedUsers     []int64 `koanf:"allowed_users"`
	AppEnv           AppEnv  `koanf:"app_env"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values:
	// TELEGRAM_BOT_TOKEN -> telegram_bot_token
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	setDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// AllowedUsers may arrive as a comma-separated string from env vars
	// or as a slice from config files.
	if allowedUsers := k.Get("allowed_users"); allowedUsers != nil {
		switch v := allowedUsers.(type) {
		case string:
			cfg.AllowedUsers = ParseAllowedUsers(v)
		case []interface{}:
			cfg.AllowedUsers = lo.FilterMap(v, func(item interface{}, _ int) (int64, bool) {
				switch val := item.(type) {
				case int64:
					return val, true
				case int:
					return int64(val), true
				case float64:
					return int64(val), true
				default:
					return 0, false
				}
			})
		}
	}

	switch cfg.AppEnv {
	case AppEnvLocal, AppEnvProduction, AppEnvDevelopment, AppEnvTesting:
	default:
		cfg.AppEnv = AppEnvProduction
	}

	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	if !k.Exists("db_path") {
		k.Set("db_path", "./data/tgpulse.db")
	}
	if !k.Exists("http_port") {
		k.Set("http_port", "8080")
	}
	if !k.Exists("window_days") {
		k.Set("window_days", 7)
	}
	if !k.Exists("top_n_messages") {
		k.Set("top_n_messages", 12)
	}
	if !k.Exists("snippet_length") {
		k.Set("snippet_length", 240)
	}
	if !k.Exists("app_env") {
		k.Set("app_env", "production")
	}
}

// RequireBotToken validates the token for commands that talk to Telegram.
// Offline commands (analyze, ingest, tags) work without it.
func (c *Config) RequireBotToken() error {
	if c.TelegramBotToken == "" {
		return oops.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}
	return nil
}

// ParseAllowedUsers parses a comma-separated user id list.
func ParseAllowedUsers(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}
