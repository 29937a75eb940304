package views

import (
	"time"

	"github.com/vantix/vantix/internal/vantixapi"
)

// MondayOf returns the Monday of t's week at midnight, counting Sunday as
// the last day of the week.
func MondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(isoWeekday(t) - 1))
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SelectPlan picks the plan whose week starts on today's Monday. Failing
// that it picks the plan with the latest week start (first one on ties).
// ok is false only for an empty list.
func SelectPlan(plans []vantixapi.Plan, today time.Time) (vantixapi.Plan, bool) {
	if len(plans) == 0 {
		return vantixapi.Plan{}, false
	}
	monday := MondayOf(today)
	for _, p := range plans {
		if sameDate(p.WeekStart.Time, monday) {
			return p, true
		}
	}
	best := plans[0]
	for _, p := range plans[1:] {
		if p.WeekStart.After(best.WeekStart.Time) {
			best = p
		}
	}
	return best, true
}

// FindPlan returns the plan with id.
func FindPlan(plans []vantixapi.Plan, id int64) (vantixapi.Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return vantixapi.Plan{}, false
}

// WeekEnd is the last working day of a plan week: the Saturday after start.
func WeekEnd(start time.Time) time.Time { return start.AddDate(0, 0, 5) }

// InWeek reports whether t falls within the plan's week, end date inclusive.
func InWeek(p vantixapi.Plan, t time.Time) bool {
	start := p.WeekStart.Time
	end := p.WeekEnd.Time
	if end.IsZero() {
		end = WeekEnd(start)
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(start) && !d.After(end)
}
