package dashboard

import "github.com/julianstephens/habitara/internal/models"

// Groups partitions the directory for display. Archived habits only appear
// in Archived; the frequency groups hold active habits.
type Groups struct {
	Active   []models.Habit
	Archived []models.Habit
	Daily    []models.Habit
	Weekly   []models.Habit
	Monthly  []models.Habit
}

// Group keeps the input order within every group.
func Group(habits []models.Habit) Groups {
	var g Groups
	for _, h := range habits {
		if !h.Active {
			g.Archived = append(g.Archived, h)
			continue
		}
		g.Active = append(g.Active, h)
		switch h.Frequency {
		case models.FrequencyDaily:
			g.Daily = append(g.Daily, h)
		case models.FrequencyWeekly:
			g.Weekly = append(g.Weekly, h)
		case models.FrequencyMonthly:
			g.Monthly = append(g.Monthly, h)
		}
	}
	return g
}

// ByFrequency returns the active group for freq.
func (g Groups) ByFrequency(freq models.Frequency) []models.Habit {
	switch freq {
	case models.FrequencyDaily:
		return g.Daily
	case models.FrequencyWeekly:
		return g.Weekly
	case models.FrequencyMonthly:
		return g.Monthly
	}
	return nil
}

func ActiveCount(habits []models.Habit) int {
	n := 0
	for _, h := range habits {
		if h.Active {
			n++
		}
	}
	return n
}
