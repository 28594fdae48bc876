package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/normalize"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

type role int

const (
	roleDate role = iota
	roleTime
	roleHome
	roleAway
	roleVenue
	roleRink
	roleStatus
	roleDivision
)

// roleKeywords are matched as case-insensitive substrings of the header,
// in role order. A column takes the first unassigned role it matches.
var roleKeywords = []struct {
	role     role
	keywords []string
}{
	{roleDate, []string{"date"}},
	{roleTime, []string{"time"}},
	{roleHome, []string{"home"}},
	{roleAway, []string{"away", "visitor", "opponent"}},
	{roleVenue, []string{"venue", "location", "arena", "facility", "rink"}},
	{roleRink, []string{"rink", "sheet", "surface"}},
	{roleStatus, []string{"status", "result"}},
	{roleDivision, []string{"division", "level"}},
}

// placeholderTimes mean "not scheduled yet" and leave Time empty
var placeholderTimes = map[string]bool{"": true, "tbd": true, "tba": true, "-": true, "--": true}

const venueSeparator = " - "

// columns maps roles to cell indexes
type columns map[role]int

func (c columns) has(r role) bool {
	_, ok := c[r]
	return ok
}

// ParseGames reads the results table from a rendered page. division and
// season fill the Division field and anchor weekday dates to a year.
func ParseGames(r io.Reader, division, season string, log *logger.Logger) ([]schedule.Game, error) {
	log = logger.OrDefault(log)

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table, header, headers := findResultsTable(doc)
	if table == nil {
		return nil, schedule.NewError(schedule.CodeTableNotFound, "no table has a date and home/team header").
			With("tables", fmt.Sprint(doc.Find("table").Length()))
	}

	cols := mapColumns(headers)
	for _, required := range []struct {
		role role
		name string
	}{{roleDate, "date"}, {roleHome, "home"}, {roleAway, "away"}} {
		if !cols.has(required.role) {
			return nil, schedule.NewError(schedule.CodeTableFormatUnrecognized, "required column missing").
				With("field", required.name).
				With("headers", strings.Join(headers, " | "))
		}
	}

	games := make([]schedule.Game, 0)
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if row.IsSelection(header) || row.ParentsFiltered("thead").Length() > 0 {
			return
		}
		cells := rowCells(row)
		if len(cells) == 0 {
			return
		}
		if isHeaderRepeat(cells, headers, cols) {
			logger.IncrCounter("scraper.duplicate_headers")
			return
		}

		game, err := parseRow(cells, cols, division, season)
		if err != nil {
			logger.IncrCounter("scraper.rows_skipped")
			log.Warn("Skipping table row", logger.Fields{
				"row":    i,
				"cells":  strings.Join(cells, " | "),
				"reason": err.Error(),
			})
			return
		}
		games = append(games, game)
	})

	return games, nil
}

// findResultsTable returns the first table whose header mentions a date
// column and a home or team column.
func findResultsTable(doc *goquery.Document) (*goquery.Selection, *goquery.Selection, []string) {
	var table, header *goquery.Selection
	var headers []string

	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		h := headerRow(t)
		if h.Length() == 0 {
			return true
		}
		texts := rowCells(h)
		if !qualifies(texts) {
			return true
		}
		table, header, headers = t, h, texts
		return false
	})

	return table, header, headers
}

func headerRow(t *goquery.Selection) *goquery.Selection {
	if h := t.Find("thead tr").First(); h.Length() > 0 {
		return h
	}
	if h := t.Find("tr:has(th)").First(); h.Length() > 0 {
		return h
	}
	return t.Find("tr").First()
}

func qualifies(headers []string) bool {
	var hasDate, hasTeam bool
	for _, h := range headers {
		lower := strings.ToLower(h)
		if strings.Contains(lower, "date") {
			hasDate = true
		}
		if strings.Contains(lower, "home") || strings.Contains(lower, "team") {
			hasTeam = true
		}
	}
	return hasDate && hasTeam
}

func rowCells(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("td, th")
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		out = append(out, normalize.CleanCell(c.Text()))
	})
	return out
}

// mapColumns assigns roles by header text. Tables that label the first
// team generically ("Team") get it mapped to home.
func mapColumns(headers []string) columns {
	cols := columns{}
	taken := make(map[int]bool)

	for i, h := range headers {
		lower := strings.ToLower(h)
		for _, rk := range roleKeywords {
			if cols.has(rk.role) || !containsAny(lower, rk.keywords) {
				continue
			}
			cols[rk.role] = i
			taken[i] = true
			break
		}
	}

	if !cols.has(roleHome) {
		for i, h := range headers {
			if !taken[i] && strings.Contains(strings.ToLower(h), "team") {
				cols[roleHome] = i
				taken[i] = true
				break
			}
		}
	}
	return cols
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// isHeaderRepeat catches header rows rendered again inside the body
func isHeaderRepeat(cells, headers []string, cols columns) bool {
	for _, r := range []role{roleDate, roleHome} {
		i := cols[r]
		if i < len(cells) && strings.EqualFold(cells[i], headers[i]) {
			return true
		}
	}
	return false
}

func parseRow(cells []string, cols columns, division, season string) (schedule.Game, error) {
	cell := func(r role) string {
		i, ok := cols[r]
		if !ok || i >= len(cells) {
			return ""
		}
		return cells[i]
	}

	for _, r := range []role{roleDate, roleHome, roleAway} {
		if cols[r] >= len(cells) {
			return schedule.Game{}, fmt.Errorf("row has %d cells, too short for the header", len(cells))
		}
	}

	dateText, timeText := cell(roleDate), cell(roleTime)
	if !cols.has(roleTime) {
		dateText, timeText = normalize.SplitDateTime(dateText)
	}

	date, err := normalize.ParseDate(dateText, season)
	if err != nil {
		return schedule.Game{}, err
	}

	var clock string
	if !placeholderTimes[strings.ToLower(strings.TrimSpace(timeText))] {
		if clock, err = normalize.ParseTime(timeText); err != nil {
			return schedule.Game{}, err
		}
	}

	venue, rink := normalize.SplitVenue(cell(roleVenue), venueSeparator)
	if r := cell(roleRink); r != "" {
		rink = r
	}

	home := normalize.FirstTeam(cell(roleHome))
	away := normalize.FirstTeam(cell(roleAway))

	div := cell(roleDivision)
	if div == "" {
		div = division
	}
	if div == "" {
		div = normalize.InferDivision(home)
	}

	game := schedule.Game{
		Date:     date,
		Time:     clock,
		Home:     home,
		Away:     away,
		Venue:    venue,
		Rink:     rink,
		Division: div,
		Status:   cell(roleStatus),
	}
	if err := game.Validate(); err != nil {
		return schedule.Game{}, err
	}
	return game, nil
}
