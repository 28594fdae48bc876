package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/schedule"

	// venue zones must resolve on images without a system zoneinfo
	_ "time/tzdata"
)

const (
	DefaultTimezone = "America/Los_Angeles"
	DefaultTimeout  = 15 * time.Second
	UserAgent       = "league-schedule/1.0 (github.com/pfrederiksen/league-schedule)"
)

// Query parameter names understood by the feed endpoint
const (
	ParamLeagueID   = "LeagueID"
	ParamClientID   = "ClientID"
	ParamSeasonID   = "SeasonID"
	ParamDivisionID = "DivisionID"
	ParamTeamID     = "TeamID"
)

// Config identifies the feed endpoint and the league it serves
type Config struct {
	Endpoint string
	LeagueID string
	ClientID string
	Timezone string // IANA zone of the venues
	Timeout  time.Duration
}

// Source implements schedule.Source over the calendar feed
type Source struct {
	client *resty.Client
	cfg    Config
	loc    *time.Location
	log    *logger.Logger
}

var _ schedule.Source = (*Source)(nil)

// New creates a feed source. It fails when the endpoint is missing or the
// venue timezone is unknown.
func New(cfg Config, log *logger.Logger) (*Source, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("feed endpoint is required")
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading feed timezone %q: %w", cfg.Timezone, err)
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", UserAgent)
	client.SetHeader("Accept", "text/calendar, */*;q=0.5")

	return &Source{
		client: client,
		cfg:    cfg,
		loc:    loc,
		log:    logger.OrDefault(log).With(logger.Fields{"component": "feed"}),
	}, nil
}

// Params builds the query for q. Empty ids are omitted.
func (s *Source) Params(q schedule.Query) map[string]string {
	params := map[string]string{
		ParamLeagueID: s.cfg.LeagueID,
		ParamClientID: s.cfg.ClientID,
	}
	for name, value := range map[string]string{
		ParamSeasonID:   q.SeasonID,
		ParamDivisionID: q.DivisionID,
		ParamTeamID:     q.TeamID,
	} {
		if value != "" {
			params[name] = value
		}
	}
	return params
}

// FetchGames issues a single GET and parses the calendar it returns
func (s *Source) FetchGames(ctx context.Context, q schedule.Query) ([]schedule.Game, error) {
	start := time.Now()
	defer logger.Since("feed.fetch", start)

	params := s.Params(q)
	target := feedURL(s.cfg.Endpoint, params)

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(s.cfg.Endpoint)
	if err != nil {
		logger.IncrCounter("feed.failures")
		return nil, schedule.NewError(schedule.CodeFeedUnavailable, "feed request failed").
			With("url", target).
			Wrap(err)
	}
	if !resp.IsSuccess() {
		logger.IncrCounter("feed.failures")
		return nil, schedule.NewError(schedule.CodeFeedUnavailable, "feed returned non-success status").
			With("url", target).
			With("status", strconv.Itoa(resp.StatusCode()))
	}

	games, err := ParseCalendar(bytes.NewReader(resp.Body()), q, s.loc, s.log)
	if err != nil {
		if sErr, ok := schedule.AsError(err); ok {
			sErr.With("url", target)
		}
		return nil, err
	}

	s.log.Info("Fetched games from feed", logger.Fields{
		"season":   q.SeasonID,
		"division": q.DivisionID,
		"team":     q.TeamID,
		"games":    len(games),
	})
	return games, nil
}

// feedURL renders the request URL for diagnostics
func feedURL(endpoint string, params map[string]string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
