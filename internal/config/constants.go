package config

import "time"

const (
	envSourceURL    = "SCHEDULE_SOURCE_URL"
	envSeasonParam  = "SCHEDULE_SEASON_PARAM"
	envStrategy     = "SCHEDULE_STRATEGY"
	envFeedEndpoint = "FEED_ENDPOINT"
	envFeedLeague   = "FEED_LEAGUE_ID"
	envFeedClient   = "FEED_CLIENT_ID"
	envFeedTimezone = "FEED_TIMEZONE"
	envFeedTimeout  = "FEED_TIMEOUT"
	envChromePath   = "CHROME_PATH"
	envChromeRemote = "CHROME_REMOTE_URL"
	envBrowserEnv   = "BROWSER_ENV"
	envBrowserTO    = "BROWSER_TIMEOUT"
	envCloseGrace   = "BROWSER_CLOSE_GRACE"
	envLookupFile   = "LOOKUP_FILE"
	envLogLevel     = "LOG_LEVEL"
	envHeadful      = "BROWSER_HEADFUL"
)

const (
	defaultSeasonParam  = "season"
	defaultStrategy     = "table"
	defaultFeedTimezone = "America/Los_Angeles"
	defaultFeedTimeout  = 15 * time.Second
	defaultBrowserTO    = 25 * time.Second
	defaultCloseGrace   = 3 * time.Second
	defaultLogLevel     = "INFO"
)

// DefaultEnvFile is read by Load when present
const DefaultEnvFile = ".env"
