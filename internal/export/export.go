// Package export writes a user's habits, completions and stats as a
// portable YAML or JSON document.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitara/internal/models"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q (expected yaml or json)", s)
}

type Document struct {
	ExportedAt string  `yaml:"exported_at" json:"exported_at"`
	User       string  `yaml:"user" json:"user"`
	Timezone   string  `yaml:"timezone" json:"timezone"`
	Habits     []Habit `yaml:"habits" json:"habits"`
	// Orphans are completions whose habit no longer exists.
	Orphans []models.HabitCompletion `yaml:"orphaned_completions,omitempty" json:"orphaned_completions,omitempty"`
}

type Habit struct {
	models.Habit `yaml:",inline"`
	Stats        models.Stats             `yaml:"stats" json:"stats"`
	Completions  []models.HabitCompletion `yaml:"completions" json:"completions"`
}

// Build assembles the document. Completions are listed oldest first under
// their habit; stats missing from the map are exported as zero.
func Build(user string, now time.Time, habits []models.Habit, completions map[string]models.HabitCompletion, stats map[string]models.Stats) Document {
	doc := Document{
		ExportedAt: now.Format(time.RFC3339),
		User:       user,
		Timezone:   now.Location().String(),
		Habits:     make([]Habit, 0, len(habits)),
	}

	byHabit := make(map[string][]models.HabitCompletion)
	for _, c := range completions {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c)
	}

	for _, h := range habits {
		records := byHabit[h.ID]
		delete(byHabit, h.ID)
		sortByDate(records)
		if records == nil {
			records = []models.HabitCompletion{}
		}
		doc.Habits = append(doc.Habits, Habit{Habit: h, Stats: stats[h.ID], Completions: records})
	}

	for _, records := range byHabit {
		doc.Orphans = append(doc.Orphans, records...)
	}
	sortByDate(doc.Orphans)
	return doc
}

func sortByDate(cs []models.HabitCompletion) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Date != cs[j].Date {
			return cs[i].Date < cs[j].Date
		}
		return cs[i].ID < cs[j].ID
	})
}

// Write encodes doc to w.
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported export format %q", format)
}
