// Package config assembles runtime configuration from the environment.
//
// A .env file is loaded first when present; variables already set in the
// process environment win over it. CLI flags are applied by the caller on
// top of the returned Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/pfrederiksen/league-schedule/internal/browser"
	"github.com/pfrederiksen/league-schedule/internal/feed"
	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/navigator"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// Config holds runtime configuration
type Config struct {
	SourceURL   string
	SeasonParam string
	Strategy    schedule.Strategy
	Browser     browser.Config
	Feed        feed.Config
	LookupFile  string
	LogLevel    logger.Level
}

// LoadEnvFile loads path into the process environment. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads envFile (if any) and then the environment
func Load(envFile string) (Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() (Config, error) {
	strategy, err := schedule.ParseStrategy(envOrDefault(envStrategy, defaultStrategy))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", envStrategy, err)
	}

	env := browser.DetectEnvironment(os.Getenv)
	if raw := envOrDefault(envBrowserEnv, ""); raw != "" {
		env, err = browser.ParseEnvironment(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envBrowserEnv, err)
		}
	}

	bcfg := browser.DefaultConfig()
	bcfg.Env = env
	bcfg.ExecPath = envOrDefault(envChromePath, "")
	bcfg.RemoteURL = envOrDefault(envChromeRemote, "")
	bcfg.DefaultTimeout = durationEnvOrDefault(envBrowserTO, defaultBrowserTO)
	bcfg.CloseGrace = durationEnvOrDefault(envCloseGrace, defaultCloseGrace)
	bcfg.Headful = boolEnvOrDefault(envHeadful, false)

	return Config{
		SourceURL:   envOrDefault(envSourceURL, ""),
		SeasonParam: envOrDefault(envSeasonParam, defaultSeasonParam),
		Strategy:    strategy,
		Browser:     bcfg,
		Feed: feed.Config{
			Endpoint: envOrDefault(envFeedEndpoint, ""),
			LeagueID: envOrDefault(envFeedLeague, ""),
			ClientID: envOrDefault(envFeedClient, ""),
			Timezone: envOrDefault(envFeedTimezone, defaultFeedTimezone),
			Timeout:  durationEnvOrDefault(envFeedTimeout, defaultFeedTimeout),
		},
		LookupFile: envOrDefault(envLookupFile, ""),
		LogLevel:   logger.ParseLevel(envOrDefault(envLogLevel, defaultLogLevel)),
	}, nil
}

// Navigator returns the navigation engine configuration for the source site
func (c Config) Navigator() navigator.Config {
	cfg := navigator.DefaultConfig(c.SourceURL)
	if c.SeasonParam != "" {
		cfg.SeasonParam = c.SeasonParam
	}
	return cfg
}

// Validate checks that the chosen strategy has what it needs
func (c Config) Validate() error {
	switch c.Strategy {
	case schedule.StrategyFeed:
		if c.Feed.Endpoint == "" {
			return fmt.Errorf("%s is required for the feed strategy", envFeedEndpoint)
		}
	default:
		if c.SourceURL == "" {
			return fmt.Errorf("%s is required for the table strategy", envSourceURL)
		}
	}
	return nil
}
