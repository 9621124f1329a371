package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/period"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitName  ConflictType = "duplicate_habit_name"
	ConflictInvalidHabit        ConflictType = "invalid_habit"
	ConflictOrphanCompletion    ConflictType = "orphan_completion"
	ConflictMisalignedPeriodKey ConflictType = "misaligned_period_key"
	ConflictMismatchedID        ConflictType = "mismatched_completion_id"
)

// Conflict represents one inconsistency in a user's records
type Conflict struct {
	Type          ConflictType
	Description   string
	Items         []string // habit names involved
	HabitIDs      []string
	CompletionIDs []string // completions involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks a habit directory and its completions for records the
// engine would silently ignore or mis-key.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateRecords reports duplicate names, invalid habits, orphaned
// completions and completions whose key is not a period start for their
// habit's current frequency (left behind by a frequency change).
func (v *Validator) ValidateRecords(habits []models.Habit, completions map[string]models.HabitCompletion) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	byID := make(map[string]models.Habit, len(habits))
	names := make(map[string][]models.Habit)
	for _, h := range habits {
		byID[h.ID] = h
		if h.Name != "" {
			key := strings.ToLower(strings.TrimSpace(h.Name))
			names[key] = append(names[key], h)
		}

		if err := ValidateHabit(h.Name, string(h.Frequency), string(h.Goal)); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidHabit,
				Description: fmt.Sprintf("Habit \"%s\" is invalid: %v", h.Name, err),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}
	}

	for _, group := range names {
		if len(group) < 2 {
			continue
		}
		ids := make([]string, len(group))
		for i, h := range group {
			ids[i] = h.ID
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateHabitName,
			Description: fmt.Sprintf("Duplicate habit name: \"%s\" (IDs: %v)", group[0].Name, ids),
			Items:       []string{group[0].Name},
			HabitIDs:    ids,
		})
	}

	orphans := make(map[string][]string)
	keys := make([]string, 0, len(completions))
	for id := range completions {
		keys = append(keys, id)
	}
	sort.Strings(keys)

	for _, id := range keys {
		c := completions[id]
		h, ok := byID[c.HabitID]
		if !ok {
			orphans[c.HabitID] = append(orphans[c.HabitID], id)
			continue
		}

		if want := models.CompletionID(c.HabitID, c.Date); want != id {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:          ConflictMismatchedID,
				Description:   fmt.Sprintf("Completion %s of \"%s\" should be keyed %s", id, h.Name, want),
				Items:         []string{h.Name},
				HabitIDs:      []string{h.ID},
				CompletionIDs: []string{id},
			})
			continue
		}

		day, err := period.ParseDay(c.Date)
		if err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:          ConflictMisalignedPeriodKey,
				Description:   fmt.Sprintf("Completion %s of \"%s\" has an unreadable date %q", id, h.Name, c.Date),
				Items:         []string{h.Name},
				HabitIDs:      []string{h.ID},
				CompletionIDs: []string{id},
			})
			continue
		}
		key, err := period.Resolve(h.Frequency, day)
		if err != nil {
			// Already reported as an invalid habit.
			continue
		}
		if key != c.Date {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictMisalignedPeriodKey,
				Description: fmt.Sprintf("Completion on %s of %s habit \"%s\" is not a period start (expected %s); it no longer counts",
					c.Date, h.Frequency, h.Name, key),
				Items:         []string{h.Name},
				HabitIDs:      []string{h.ID},
				CompletionIDs: []string{id},
			})
		}
	}

	habitIDs := make([]string, 0, len(orphans))
	for habitID := range orphans {
		habitIDs = append(habitIDs, habitID)
	}
	sort.Strings(habitIDs)
	for _, habitID := range habitIDs {
		ids := orphans[habitID]
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:          ConflictOrphanCompletion,
			Description:   fmt.Sprintf("%d completion(s) belong to deleted habit %s", len(ids), habitID),
			HabitIDs:      []string{habitID},
			CompletionIDs: ids,
		})
	}

	return result
}

// AutoFixOrphans deletes completions of habits that no longer exist.
// Other conflict types need a human decision and are left alone.
func AutoFixOrphans(conflicts []Conflict, deleteFunc func(id string) error) []FixAction {
	var actions []FixAction
	for _, conflict := range conflicts {
		if conflict.Type != ConflictOrphanCompletion {
			continue
		}
		removed := 0
		for _, id := range conflict.CompletionIDs {
			if err := deleteFunc(id); err != nil {
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Failed to delete completion %s: %v", id, err),
					SourceConflict: conflict,
				})
				continue
			}
			removed++
		}
		if removed > 0 {
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Deleted %d orphaned completion(s) of habit %s", removed, conflict.HabitIDs[0]),
				SourceConflict: conflict,
			})
		}
	}
	return actions
}
