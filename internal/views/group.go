package views

import (
	"strings"

	"github.com/vantix/vantix/internal/vantixapi"
)

type Group[T any] struct {
	Key   string
	Items []T
}

// GroupBy buckets items by key. Buckets appear in the order their key is
// first seen and keep the input order inside each bucket.
func GroupBy[T any](items []T, key func(T) string) []Group[T] {
	index := map[string]int{}
	var groups []Group[T]
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// ActivityDay labels an agenda entry by its date ("Lunes 08 de enero"), or
// by the weekday name stored on it when it has no date.
func ActivityDay(a vantixapi.Activity) string {
	if !a.Date.IsZero() {
		return DayLabel(a.Date.Time)
	}
	if day := strings.TrimSpace(a.Weekday); day != "" {
		return capitalize(strings.ToLower(day))
	}
	return "Sin fecha"
}

func GroupActivities(agenda []vantixapi.Activity) []Group[vantixapi.Activity] {
	return GroupBy(agenda, ActivityDay)
}

// VisitDay groups visits by check-in date.
func VisitDay(v vantixapi.Visit) string {
	if v.CheckedInAt.IsZero() {
		return "Sin fecha"
	}
	return DayLabel(v.CheckedInAt.Time)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
