package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// GamesResult is the payload of the games and team commands
type GamesResult struct {
	Query     schedule.Query  `json:"query"`
	Strategy  string          `json:"strategy"`
	Team      string          `json:"team,omitempty"`
	Filter    string          `json:"filter,omitempty"`
	GameCount int             `json:"game_count"`
	Games     []schedule.Game `json:"games"`
}

// ErrorPayload is what every failure is rendered as
type ErrorPayload struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a classified failure
type ErrorBody struct {
	Code         schedule.Code     `json:"code"`
	Message      string            `json:"message"`
	Details      map[string]string `json:"details,omitempty"`
	Alternatives []string          `json:"alternatives,omitempty"`
}

// NewErrorPayload classifies err. Unclassified errors are reported as
// InvalidRequest since they come from flags or configuration.
func NewErrorPayload(err error) ErrorPayload {
	e, ok := schedule.AsError(err)
	if !ok {
		return ErrorPayload{Error: ErrorBody{Code: schedule.CodeInvalidRequest, Message: err.Error()}}
	}

	body := ErrorBody{
		Code:         e.Code,
		Message:      e.Message,
		Alternatives: e.Alternatives,
	}
	if len(e.Details) > 0 || e.Err != nil {
		body.Details = make(map[string]string, len(e.Details)+1)
		for k, v := range e.Details {
			body.Details[k] = v
		}
		if e.Err != nil {
			body.Details["cause"] = e.Err.Error()
		}
	}
	return ErrorPayload{Error: body}
}

// WriteGames writes a games result in the specified format
func WriteGames(w io.Writer, result *GamesResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeGamesText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteOptions writes discovered options in the specified format
func WriteOptions(w io.Writer, opts schedule.ScheduleOptions, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, opts)
	case FormatText:
		writeOptionsTable(w, "Seasons", opts.Seasons)
		if len(opts.Divisions) > 0 {
			writeOptionsTable(w, "Divisions", opts.Divisions)
		}
		if len(opts.Teams) > 0 {
			writeOptionsTable(w, "Teams", opts.Teams)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteError renders err as a structured payload
func WriteError(w io.Writer, err error, format OutputFormat) error {
	payload := NewErrorPayload(err)
	if format == FormatJSON {
		return writeJSON(w, payload)
	}

	fmt.Fprintf(w, "Error [%s]: %s\n", payload.Error.Code, payload.Error.Message)
	keys := make([]string, 0, len(payload.Error.Details))
	for k := range payload.Error.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, payload.Error.Details[k])
	}
	if len(payload.Error.Alternatives) > 0 {
		fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(payload.Error.Alternatives, ", "))
	}
	return nil
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func writeGamesText(w io.Writer, result *GamesResult, verbose bool) error {
	if result.GameCount == 0 {
		fmt.Fprintln(w, "No games found.")
		return nil
	}

	t := newTable(w)
	header := table.Row{"Date", "Time", "Away", "Home", "Venue"}
	if verbose {
		header = append(header, "Rink", "Division", "Status")
	}
	t.AppendHeader(header)

	for _, g := range result.Games {
		clock := g.Time
		if clock == "" {
			clock = "TBD"
		}
		row := table.Row{g.Date, clock, g.Away, g.Home, g.Venue}
		if verbose {
			row = append(row, g.Rink, g.Division, g.Status)
		}
		t.AppendRow(row)
	}
	t.Render()

	if result.Filter != "" {
		fmt.Fprintf(w, "Filters: %s\n", result.Filter)
	}
	fmt.Fprintf(w, "Total: %d games\n", result.GameCount)
	return nil
}

func writeOptionsTable(w io.Writer, title string, opts []schedule.SelectOption) {
	t := newTable(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Value", "Label", "Selected"})
	for _, o := range opts {
		selected := ""
		if o.Selected {
			selected = "*"
		}
		t.AppendRow(table.Row{o.Value, o.Label, selected})
	}
	t.Render()
}
