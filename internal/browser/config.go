package browser

import (
	"fmt"
	"strings"
	"time"
)

// Environment selects the Chrome launch profile
type Environment string

const (
	EnvLocal      Environment = "local"
	EnvServerless Environment = "serverless"
)

const (
	DefaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultViewportWidth  = 1366
	DefaultViewportHeight = 900
	DefaultTimeout        = 25 * time.Second
	DefaultCloseGrace     = 3 * time.Second
)

// serverlessMarkers are environment variables set by common function platforms
var serverlessMarkers = []string{"AWS_LAMBDA_FUNCTION_NAME", "K_SERVICE", "VERCEL"}

// Config describes how sessions are launched and how pages behave
type Config struct {
	Env            Environment
	ExecPath       string // empty uses chromedp's lookup
	RemoteURL      string // attach to a running browser instead of launching one
	UserAgent      string
	AcceptLanguage string
	ViewportWidth  int
	ViewportHeight int
	DefaultTimeout time.Duration // per page operation
	CloseGrace     time.Duration // bound on graceful close before the process is killed
	Headful        bool          // show the window; ignored when serverless
}

// DefaultConfig returns a local headless configuration
func DefaultConfig() Config {
	return Config{
		Env:            EnvLocal,
		UserAgent:      DefaultUserAgent,
		AcceptLanguage: DefaultAcceptLanguage,
		ViewportWidth:  DefaultViewportWidth,
		ViewportHeight: DefaultViewportHeight,
		DefaultTimeout: DefaultTimeout,
		CloseGrace:     DefaultCloseGrace,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Env == "" {
		c.Env = d.Env
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.AcceptLanguage == "" {
		c.AcceptLanguage = d.AcceptLanguage
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		c.ViewportWidth, c.ViewportHeight = d.ViewportWidth, d.ViewportHeight
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = d.DefaultTimeout
	}
	if c.CloseGrace <= 0 {
		c.CloseGrace = d.CloseGrace
	}
	return c
}

// ParseEnvironment parses a launch profile name, case-insensitively
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case EnvLocal:
		return EnvLocal, nil
	case EnvServerless:
		return EnvServerless, nil
	default:
		return "", fmt.Errorf("invalid browser environment: %s (must be 'local' or 'serverless')", s)
	}
}

// DetectEnvironment picks serverless when any function-platform marker is set
func DetectEnvironment(getenv func(string) string) Environment {
	for _, key := range serverlessMarkers {
		if getenv(key) != "" {
			return EnvServerless
		}
	}
	return EnvLocal
}

type launchFlag struct {
	name  string
	value interface{}
}

// launchFlags returns the Chrome switches for the environment. They are
// applied over chromedp's defaults, so headless is always set explicitly:
// a false value removes the default switch. Serverless sandboxes lack user
// namespaces and a usable /dev/shm.
func launchFlags(cfg Config) []launchFlag {
	flags := []launchFlag{
		{"disable-gpu", true},
		{"hide-scrollbars", true},
		{"mute-audio", true},
		{"headless", !cfg.Headful || cfg.Env == EnvServerless},
	}
	if cfg.Env == EnvServerless {
		flags = append(flags,
			launchFlag{"no-sandbox", true},
			launchFlag{"disable-setuid-sandbox", true},
			launchFlag{"disable-dev-shm-usage", true},
			launchFlag{"no-zygote", true},
			launchFlag{"single-process", true},
		)
	}
	return flags
}
