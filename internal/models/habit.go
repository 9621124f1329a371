package models

import (
	"fmt"
	"time"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Frequencies lists every frequency in display order.
var Frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// ParseFrequency converts a user supplied string into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

type Goal string

const (
	// GoalAchieve habits are built up: marking one extends the streak.
	GoalAchieve Goal = "achieve"
	// GoalAvoid habits are broken: marking one records a relapse.
	GoalAvoid Goal = "avoid"
)

func (g Goal) Valid() bool {
	return g == GoalAchieve || g == GoalAvoid
}

func ParseGoal(s string) (Goal, error) {
	g := Goal(s)
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGoal, s)
	}
	return g, nil
}

// Habit is a tracked routine.
type Habit struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Frequency  Frequency `json:"frequency" yaml:"frequency"`
	Goal       Goal      `json:"goal" yaml:"goal"`
	Active     bool      `json:"active" yaml:"active"`
	CreatedAt  int64     `json:"created_at" yaml:"created_at"` // epoch milliseconds
	Details    string    `json:"details,omitempty" yaml:"details,omitempty"`
	Emoji      string    `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	AskDetails bool      `json:"ask_details,omitempty" yaml:"ask_details,omitempty"`
}

// CreatedTime returns CreatedAt as a time.Time in loc.
func (h Habit) CreatedTime(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(h.CreatedAt).In(loc)
}

// ApplyDefaults fills the values a freshly loaded or created record may be missing.
func (h *Habit) ApplyDefaults(now time.Time) {
	if h.Goal == "" {
		h.Goal = GoalAchieve
	}
	if h.CreatedAt == 0 {
		h.CreatedAt = now.UnixMilli()
	}
}

// HabitPatch is a partial update. Nil fields are left unchanged.
type HabitPatch struct {
	Name       *string
	Frequency  *Frequency
	Goal       *Goal
	Active     *bool
	Details    *string
	Emoji      *string
	AskDetails *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p HabitPatch) IsEmpty() bool {
	return p.Name == nil && p.Frequency == nil && p.Goal == nil && p.Active == nil &&
		p.Details == nil && p.Emoji == nil && p.AskDetails == nil
}

// Apply returns a copy of h with the patch applied.
func (p HabitPatch) Apply(h Habit) Habit {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Frequency != nil {
		h.Frequency = *p.Frequency
	}
	if p.Goal != nil {
		h.Goal = *p.Goal
	}
	if p.Active != nil {
		h.Active = *p.Active
	}
	if p.Details != nil {
		h.Details = *p.Details
	}
	if p.Emoji != nil {
		h.Emoji = *p.Emoji
	}
	if p.AskDetails != nil {
		h.AskDetails = *p.AskDetails
	}
	return h
}
