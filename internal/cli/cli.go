package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/league-schedule/internal/browser"
	"github.com/pfrederiksen/league-schedule/internal/config"
	"github.com/pfrederiksen/league-schedule/internal/discovery"
	"github.com/pfrederiksen/league-schedule/internal/feed"
	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/lookup"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
	"github.com/pfrederiksen/league-schedule/internal/scraper"
	"github.com/pfrederiksen/league-schedule/internal/service"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitNoData  = 2
)

// ServiceFactory builds the service from resolved configuration
type ServiceFactory func(cfg config.Config, log *logger.Logger) (*service.Service, error)

// app carries the flags and collaborators of one CLI invocation
type app struct {
	newService ServiceFactory
	stdout     io.Writer
	stderr     io.Writer

	envFile      string
	sourceURL    string
	seasonParam  string
	feedEndpoint string
	lookupFile   string
	chromePath   string
	chromeRemote string
	format       string
	logLevel     string
	verbose      bool

	cfg    config.Config
	log    *logger.Logger
	output OutputFormat
}

func newApp(factory ServiceFactory) *app {
	return &app{
		newService: factory,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		output:     FormatText,
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newApp(DefaultServiceFactory).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "league-schedule",
		Short: "Discover and retrieve youth league game schedules",
		Long: `A CLI tool to discover season, division and team options on a league
schedule site and retrieve normalized game schedules, either from the
rendered results table or from the league's calendar feed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", config.DefaultEnvFile, "Environment file to load if present")
	flags.StringVar(&a.sourceURL, "source-url", "", "Schedule page URL (or env: SCHEDULE_SOURCE_URL)")
	flags.StringVar(&a.seasonParam, "season-param", "", "Query parameter carrying the season id (or env: SCHEDULE_SEASON_PARAM)")
	flags.StringVar(&a.feedEndpoint, "feed-endpoint", "", "Calendar feed endpoint (or env: FEED_ENDPOINT)")
	flags.StringVar(&a.lookupFile, "lookup", "", "Label lookup table, JSON5 (or env: LOOKUP_FILE)")
	flags.StringVar(&a.chromePath, "chrome-path", "", "Chrome executable (or env: CHROME_PATH)")
	flags.StringVar(&a.chromeRemote, "chrome-remote", "", "DevTools websocket of a running browser (or env: CHROME_REMOTE_URL)")
	flags.StringVar(&a.format, "format", "text", "Output format: text or json")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (or env: LOG_LEVEL)")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable verbose output and debug logging")

	cmd.AddCommand(a.discoverCmd(), a.gamesCmd(), a.teamCmd(), a.exportCmd())
	return cmd
}

// setup resolves configuration: .env, then environment, then flags
func (a *app) setup(cmd *cobra.Command, args []string) error {
	format, err := ParseFormat(a.format)
	if err != nil {
		return err
	}
	a.output = format

	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.sourceURL != "" {
		cfg.SourceURL = a.sourceURL
	}
	if a.seasonParam != "" {
		cfg.SeasonParam = a.seasonParam
	}
	if a.feedEndpoint != "" {
		cfg.Feed.Endpoint = a.feedEndpoint
	}
	if a.lookupFile != "" {
		cfg.LookupFile = a.lookupFile
	}
	if a.chromePath != "" {
		cfg.Browser.ExecPath = a.chromePath
	}
	if a.chromeRemote != "" {
		cfg.Browser.RemoteURL = a.chromeRemote
	}
	if a.logLevel != "" {
		cfg.LogLevel = logger.ParseLevel(a.logLevel)
	}
	if a.verbose {
		cfg.LogLevel = logger.LevelDebug
	}
	a.cfg = cfg

	a.log = logger.New(cfg.LogLevel, a.stderr)
	logger.SetDefault(a.log)
	return nil
}

func (a *app) service() (*service.Service, error) {
	return a.newService(a.cfg, a.log)
}

// DefaultServiceFactory wires the browser-backed table path, the feed path
// and the lookup table from configuration. Components without their
// settings are left out and report InvalidRequest when used.
func DefaultServiceFactory(cfg config.Config, log *logger.Logger) (*service.Service, error) {
	opts := service.Options{DefaultStrategy: cfg.Strategy, Logger: log}

	if cfg.SourceURL != "" {
		manager := browser.NewManager(cfg.Browser, log)
		nav := cfg.Navigator()
		opts.Discoverer = discovery.New(manager, nav, log)
		opts.Table = scraper.NewTableSource(manager, nav, log)
	}
	if cfg.Feed.Endpoint != "" {
		src, err := feed.New(cfg.Feed, log)
		if err != nil {
			return nil, err
		}
		opts.Feed = src
	}
	if cfg.LookupFile != "" {
		table, err := lookup.Load(cfg.LookupFile)
		if err != nil {
			return nil, fmt.Errorf("loading lookup table: %w", err)
		}
		opts.Lookup = table
	}
	return service.New(opts), nil
}

// Execute runs the CLI. Every failure, including a panic, is written as a
// structured error payload and mapped to an exit code.
func Execute() {
	os.Exit(run(newApp(DefaultServiceFactory), os.Args[1:]))
}

func run(a *app, args []string) (code int) {
	cmd := a.rootCmd()
	cmd.SetArgs(args)

	defer func() {
		if r := recover(); r != nil {
			err := schedule.NewError(schedule.CodeInternal, "unexpected failure").With("panic", fmt.Sprint(r))
			a.reportError(err)
			code = ExitError
		}
	}()

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		a.reportError(err)
		return exitCode(err)
	}
	return ExitSuccess
}

func (a *app) reportError(err error) {
	if a.output == FormatJSON {
		WriteError(a.stdout, err, FormatJSON)
		return
	}
	WriteError(a.stderr, err, FormatText)
}

func exitCode(err error) int {
	switch schedule.CodeOf(err) {
	case schedule.CodeNoScheduleData, schedule.CodeTeamNotFound:
		return ExitNoData
	default:
		return ExitError
	}
}
