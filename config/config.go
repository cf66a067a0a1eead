package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/dobutsu/game"
)

const (
	ConfigDebug               = "debug"
	ConfigLogLevel            = "log-level"
	ConfigConfigFile          = "config-file"
	ConfigNatsURL             = "nats-url"
	ConfigBotChannel          = "bot-channel"
	ConfigRoomSubjectPrefix   = "room-subject-prefix"
	ConfigDBPath              = "db-path"
	ConfigDifficultyPresets   = "difficulty-presets"
	ConfigDefaultDifficulty   = "default-difficulty"
	ConfigForbidChickDropMate = "forbid-chick-drop-mate"
	ConfigSearchThreads       = "search-threads"
	ConfigSearchNodeLimit     = "search-node-limit"
	ConfigSearchTimeLimit     = "search-time-limit"
	ConfigGeminiAPIKey        = "gemini-api-key"
	ConfigGeminiModel         = "gemini-model"
	ConfigCPUProfile          = "cpu-profile"
)

type Config struct {
	*viper.Viper
}

func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigLogLevel, "info")
	c.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	c.SetDefault(ConfigBotChannel, "dobutsu.bot")
	c.SetDefault(ConfigRoomSubjectPrefix, "dobutsu.room")
	c.SetDefault(ConfigDBPath, "./dobutsu.db")
	c.SetDefault(ConfigDifficultyPresets, "")
	c.SetDefault(ConfigDefaultDifficulty, "medium")
	c.SetDefault(ConfigForbidChickDropMate, true)
	c.SetDefault(ConfigSearchThreads, 1)
	c.SetDefault(ConfigSearchNodeLimit, 0)
	c.SetDefault(ConfigSearchTimeLimit, time.Duration(0))
	c.SetDefault(ConfigGeminiAPIKey, "")
	c.SetDefault(ConfigGeminiModel, "gemini-2.5-pro")
	c.SetDefault(ConfigCPUProfile, "")
}

// Load reads, in increasing priority, an optional YAML file named by
// --config-file, DOBUTSU_* environment variables and the args.
func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("dobutsu", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigLogLevel, "info", "log level: debug, info, warn, error")
	fs.String(ConfigConfigFile, "", "path to a YAML config file")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "the NATS server URL")
	fs.String(ConfigBotChannel, "dobutsu.bot", "the subject on which the bot answers move requests")
	fs.String(ConfigRoomSubjectPrefix, "dobutsu.room", "the subject prefix for multiplayer rooms")
	fs.String(ConfigDBPath, "./dobutsu.db", "sqlite file for finished games")
	fs.String(ConfigDifficultyPresets, "", "YAML file overriding the difficulty presets")
	fs.String(ConfigDefaultDifficulty, "medium", "random, easy, medium or hard")
	fs.Bool(ConfigForbidChickDropMate, true, "forbid mating by dropping a chick")
	fs.Int(ConfigSearchThreads, 1, "goroutines splitting the root of the search")
	fs.Uint64(ConfigSearchNodeLimit, 0, "stop the search after this many nodes (0 is no limit)")
	fs.Duration(ConfigSearchTimeLimit, 0, "stop the search after this long (0 is no limit)")
	fs.String(ConfigGeminiAPIKey, "", "API key for the Gemini advisor")
	fs.String(ConfigGeminiModel, "gemini-2.5-pro", "the Gemini model to ask")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("dobutsu")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if f := c.GetString(ConfigConfigFile); f != "" {
		c.SetConfigFile(f)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}
	return nil
}

// Rules is the variant every new game gets.
func (c *Config) Rules() game.Rules {
	return game.Rules{AllowChickDropMate: !c.GetBool(ConfigForbidChickDropMate)}
}

// SanitizedSettings is AllSettings with secrets masked, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	s := c.AllSettings()
	if v, ok := s[ConfigGeminiAPIKey].(string); ok && v != "" {
		s[ConfigGeminiAPIKey] = "********"
	}
	return s
}
