// Package lookup maps human season and division labels to source ids.
//
// Tables are plain data loaded at startup from a JSON5 file, optionally
// overlaid by a sibling <name>.local.<ext> file. Nothing here talks to the
// source site; discovery covers labels the table does not know.
package lookup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

var (
	// ErrNotFound is returned when no entry matches a label
	ErrNotFound = errors.New("lookup: label not found")
	// ErrAmbiguous is matched by *AmbiguousError
	ErrAmbiguous = errors.New("lookup: label is ambiguous")
)

// AmbiguousError reports a division label that exists under several seasons.
// The caller has to name the season.
type AmbiguousError struct {
	Label   string
	Seasons []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("lookup: division %q exists in several seasons (%s); specify the season",
		e.Label, strings.Join(e.Seasons, ", "))
}

// Is lets errors.Is match ErrAmbiguous
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}

// Table is the label to id mapping
type Table struct {
	// Seasons maps a season label to its id
	Seasons map[string]string `json:"seasons"`
	// Divisions maps a season id to its division labels and ids
	Divisions map[string]map[string]string `json:"divisions"`
}

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// Load reads the table at path, merging <name>.local.<ext> over it when
// present. It returns an error wrapping os.ErrNotExist when neither exists.
func Load(path string) (*Table, error) {
	var out Table
	found := false

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading lookup table: %w", err)
	}
	if len(data) > 0 {
		if err := json5.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		found = true
	}

	prefix, ext := splitExt(filepath.Base(path))
	localPath := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.local.%s", prefix, ext))
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading lookup overlay: %w", err)
	}
	if len(local) > 0 {
		var override Table
		if err := json5.Unmarshal(local, &override); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", localPath, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging %s: %w", localPath, err)
		}
		found = true
	}

	if !found {
		return nil, fmt.Errorf("lookup table %s: %w", path, os.ErrNotExist)
	}
	return &out, nil
}

// SeasonID resolves a season label. An exact case-insensitive label wins,
// then a known id given verbatim, then a label containing the input when
// exactly one does.
func (t *Table) SeasonID(label string) (string, error) {
	id, err := resolve(t.Seasons, label)
	if err != nil {
		return "", fmt.Errorf("season %q: %w", label, err)
	}
	return id, nil
}

// DivisionID resolves a division label within one season
func (t *Table) DivisionID(seasonID, label string) (string, error) {
	id, err := resolve(t.Divisions[seasonID], label)
	if err != nil {
		return "", fmt.Errorf("division %q in season %s: %w", label, seasonID, err)
	}
	return id, nil
}

// ResolveDivision finds a division label without a season. A label present
// under more than one season yields an *AmbiguousError listing them.
func (t *Table) ResolveDivision(label string) (seasonID, divisionID string, err error) {
	var seasons []string
	for sid, divisions := range t.Divisions {
		if id, err := resolve(divisions, label); err == nil {
			seasons = append(seasons, sid)
			seasonID, divisionID = sid, id
		}
	}
	switch len(seasons) {
	case 0:
		return "", "", fmt.Errorf("division %q: %w", label, ErrNotFound)
	case 1:
		return seasonID, divisionID, nil
	default:
		sort.Strings(seasons)
		return "", "", &AmbiguousError{Label: label, Seasons: seasons}
	}
}

// Resolve maps optional season and division labels to ids
func (t *Table) Resolve(seasonLabel, divisionLabel string) (seasonID, divisionID string, err error) {
	if seasonLabel == "" {
		if divisionLabel == "" {
			return "", "", nil
		}
		return t.ResolveDivision(divisionLabel)
	}

	seasonID, err = t.SeasonID(seasonLabel)
	if err != nil {
		return "", "", err
	}
	if divisionLabel == "" {
		return seasonID, "", nil
	}
	divisionID, err = t.DivisionID(seasonID, divisionLabel)
	if err != nil {
		return "", "", err
	}
	return seasonID, divisionID, nil
}

// SeasonLabel returns the label for a season id, or "" when unknown
func (t *Table) SeasonLabel(id string) string {
	return labelFor(t.Seasons, id)
}

// DivisionLabel returns the label for a division id within a season, or ""
func (t *Table) DivisionLabel(seasonID, id string) string {
	return labelFor(t.Divisions[seasonID], id)
}

func resolve(entries map[string]string, label string) (string, error) {
	want := strings.ToLower(strings.TrimSpace(label))
	if want == "" {
		return "", ErrNotFound
	}
	for l, id := range entries {
		if strings.ToLower(l) == want {
			return id, nil
		}
	}
	for _, id := range entries {
		if id == strings.TrimSpace(label) {
			return id, nil
		}
	}

	var matches []string
	for l := range entries {
		if strings.Contains(strings.ToLower(l), want) {
			matches = append(matches, l)
		}
	}
	switch len(matches) {
	case 0:
		return "", ErrNotFound
	case 1:
		return entries[matches[0]], nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: matches %s", ErrAmbiguous, strings.Join(matches, ", "))
	}
}

func labelFor(entries map[string]string, id string) string {
	var labels []string
	for l, v := range entries {
		if v == id {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return ""
	}
	sort.Strings(labels)
	return labels[0]
}
