package views

import (
	"sort"
	"time"

	"github.com/vantix/vantix/internal/vantixapi"
)

const (
	FeedVisit = "visita"
	FeedCall  = "llamada"
	FeedEmail = "correo"
)

type FeedItem struct {
	Kind   string
	Title  string
	Detail string
	At     time.Time
}

// ActivityFeed merges visits, calls and emails newest first and keeps the top limit.
func ActivityFeed(visits []vantixapi.Visit, calls []vantixapi.Call, emails []vantixapi.Email, limit int) []FeedItem {
	items := make([]FeedItem, 0, len(visits)+len(calls)+len(emails))
	for _, v := range visits {
		items = append(items, FeedItem{Kind: FeedVisit, Title: v.ClientName(), Detail: v.Result, At: v.CheckedInAt.Time})
	}
	for _, c := range calls {
		title := c.Recipient
		if title == "" {
			title = c.Number
		}
		items = append(items, FeedItem{Kind: FeedCall, Title: title, Detail: c.Result, At: c.At.Time})
	}
	for _, e := range emails {
		items = append(items, FeedItem{Kind: FeedEmail, Title: e.To, Detail: e.Subject, At: e.At.Time})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].At.After(items[j].At) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// ActivitiesInMonth counts visits, calls and emails dated in now's calendar month.
func ActivitiesInMonth(visits []vantixapi.Visit, calls []vantixapi.Call, emails []vantixapi.Email, now time.Time) int {
	same := func(t time.Time) bool { return t.Year() == now.Year() && t.Month() == now.Month() }
	n := 0
	for _, v := range visits {
		if same(v.CheckedInAt.Time) {
			n++
		}
	}
	for _, c := range calls {
		if same(c.At.Time) {
			n++
		}
	}
	for _, e := range emails {
		if same(e.At.Time) {
			n++
		}
	}
	return n
}
