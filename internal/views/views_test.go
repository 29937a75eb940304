package views

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantix/vantix/internal/vantixapi"
)

func TestFilterBlankTermIsIdentity(t *testing.T) {
	calls := []vantixapi.Call{{Number: "1"}, {Number: "2"}}
	for _, term := range []string{"", "   "} {
		got := SearchCalls(calls, term)
		if diff := cmp.Diff(calls, got); diff != "" {
			t.Fatalf("blank term %q changed list (-want +got):\n%s", term, diff)
		}
	}
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	emails := []vantixapi.Email{
		{ID: 1, To: "compras@acme.pe", Subject: "Cotización"},
		{ID: 2, To: "ventas@otro.pe", Subject: "Seguimiento ACME"},
		{ID: 3, To: "x@y.pe", Subject: "Nada"},
	}
	lower := SearchEmails(emails, "acme")
	upper := SearchEmails(emails, "ACME")
	assert.Equal(t, lower, upper)
	require.Len(t, lower, 2)
	assert.Equal(t, int64(1), lower[0].ID)
	assert.Equal(t, int64(2), lower[1].ID)
}

func TestFilterSingleton(t *testing.T) {
	one := []vantixapi.Employee{{FullName: "Lucía Paredes", DNI: "45879632"}}
	assert.Len(t, SearchEmployees(one, "paredes"), 1)
	assert.Len(t, SearchEmployees(one, "4587"), 1)
	assert.Empty(t, SearchEmployees(one, "gómez"))
}

func TestSearchVisitsByClientOrNotes(t *testing.T) {
	visits := []vantixapi.Visit{
		{ID: 1, Client: &vantixapi.ClientRef{Name: "Minera Sur"}},
		{ID: 2, Notes: "pedido de muestras sur"},
		{ID: 3, Notes: "sin interés"},
	}
	got := SearchVisits(visits, "SUR")
	require.Len(t, got, 2)
}

func TestGroupByIsOrderPreservingPartition(t *testing.T) {
	mon := vantixapi.NewDate(2024, time.January, 8)
	tue := vantixapi.NewDate(2024, time.January, 9)
	agenda := []vantixapi.Activity{
		{ID: 1, Date: tue},
		{ID: 2, Date: mon},
		{ID: 3, Date: tue},
		{ID: 4, Date: mon},
		{ID: 5, Date: tue},
	}
	groups := GroupActivities(agenda)
	require.Len(t, groups, 2)
	assert.Equal(t, "Martes 09 de enero", groups[0].Key)
	assert.Equal(t, "Lunes 08 de enero", groups[1].Key)

	var ids []int64
	total := 0
	for _, g := range groups {
		total += len(g.Items)
		for _, a := range g.Items {
			ids = append(ids, a.ID)
		}
	}
	assert.Equal(t, len(agenda), total)
	assert.Equal(t, []int64{1, 3, 5, 2, 4}, ids)
}

func TestActivityDayFallsBackToWeekday(t *testing.T) {
	assert.Equal(t, "Miércoles", ActivityDay(vantixapi.Activity{Weekday: "MIÉRCOLES"}))
	assert.Equal(t, "Sin fecha", ActivityDay(vantixapi.Activity{}))
}

func TestPct(t *testing.T) {
	assert.Equal(t, 0.0, Pct(0, 0))
	assert.Equal(t, 100.0, Pct(7, 7))
	assert.Equal(t, 50.0, Pct(1, 2))
	for n := 0; n < 20; n++ {
		for k := 0; k <= n; k++ {
			p := Pct(k, n)
			if p < 0 || p > 100 {
				t.Fatalf("pct(%d,%d)=%v out of range", k, n, p)
			}
		}
	}
	assert.Equal(t, 33, RoundPct(1, 3))
}

func TestMondayOf(t *testing.T) {
	cases := map[string]string{
		"2024-01-08": "2024-01-08", // Monday
		"2024-01-10": "2024-01-08",
		"2024-01-13": "2024-01-08",
		"2024-01-14": "2024-01-08", // Sunday belongs to the week before
		"2024-01-01": "2024-01-01",
		"2024-03-03": "2024-02-26",
	}
	for in, want := range cases {
		day, _ := time.Parse("2006-01-02", in)
		assert.Equal(t, want, MondayOf(day.Add(15*time.Hour)).Format("2006-01-02"), in)
	}
}

func plan(id int64, start string) vantixapi.Plan {
	d, _ := vantixapi.ParseDate(start)
	return vantixapi.Plan{ID: id, WeekStart: d}
}

func TestSelectPlanMatchesCurrentWeek(t *testing.T) {
	plans := []vantixapi.Plan{plan(1, "2024-01-01"), plan(2, "2024-01-08"), plan(3, "2024-01-15")}
	today := time.Date(2024, time.January, 10, 11, 0, 0, 0, time.Local)
	got, ok := SelectPlan(plans, today)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)
}

func TestSelectPlanFallsBackToLatest(t *testing.T) {
	plans := []vantixapi.Plan{plan(1, "2024-01-01"), plan(3, "2024-01-15")}
	today := time.Date(2024, time.January, 24, 9, 0, 0, 0, time.Local)
	got, ok := SelectPlan(plans, today)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.ID)

	_, ok = SelectPlan(nil, today)
	assert.False(t, ok)
}

func TestSelectPlanSundayStaysInWeek(t *testing.T) {
	plans := []vantixapi.Plan{plan(1, "2024-01-08"), plan(2, "2024-01-15")}
	sunday := time.Date(2024, time.January, 14, 20, 0, 0, 0, time.Local)
	got, _ := SelectPlan(plans, sunday)
	assert.Equal(t, int64(1), got.ID)
}

func TestAssistedNotesRoundTrip(t *testing.T) {
	notes := AssistedNotes(" Carlos Vega ", "Se presentó catálogo")
	assert.Equal(t, "[VISITA ASISTIDA - Acompañante: Carlos Vega] Se presentó catálogo", notes)
	assert.True(t, IsAssisted(notes))

	companion, rest, ok := ParseAssisted(notes)
	require.True(t, ok)
	assert.Equal(t, "Carlos Vega", companion)
	assert.Equal(t, "Se presentó catálogo", rest)

	_, rest, ok = ParseAssisted("visita normal")
	assert.False(t, ok)
	assert.Equal(t, "visita normal", rest)

	notes = AssistedNotes("Ana [jefa] Ruiz", "Pedido [urgente]")
	assert.Equal(t, "[VISITA ASISTIDA - Acompañante: Ana (jefa) Ruiz] Pedido [urgente]", notes)
	companion, rest, ok = ParseAssisted(notes)
	require.True(t, ok)
	assert.Equal(t, "Ana (jefa) Ruiz", companion)
	assert.Equal(t, "Pedido [urgente]", rest)
}

func TestComputeVisitStats(t *testing.T) {
	lat, lon := -12.1, -77.0
	visits := []vantixapi.Visit{
		{ClientID: 1, Result: vantixapi.ResultSold, PlacePhoto: "a", SealPhoto: "b", Latitude: &lat, Longitude: &lon},
		{ClientID: 1, Result: vantixapi.ResultInterested, Notes: AssistedNotes("Ana", "")},
		{ClientID: 2, Result: vantixapi.ResultSold, PlacePhoto: "a"},
		{ClientID: 3},
	}
	stats := ComputeVisitStats(visits)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Assisted)
	assert.Equal(t, 1, stats.WithPhotos)
	assert.Equal(t, 1, stats.Georeferenced)
	assert.Equal(t, 3, stats.DistinctClients)
	assert.Equal(t, 2, stats.ByResult[vantixapi.ResultSold])
	assert.Equal(t, 50, stats.Effectiveness())

	empty := ComputeVisitStats(nil)
	assert.Equal(t, 0, empty.AssistedPct())
}

func TestActivityFeedNewestFirstAndLimited(t *testing.T) {
	at := func(h int) vantixapi.Timestamp {
		return vantixapi.Timestamp{Time: time.Date(2024, 1, 10, h, 0, 0, 0, time.UTC)}
	}
	feed := ActivityFeed(
		[]vantixapi.Visit{{Result: "v", CheckedInAt: at(9)}},
		[]vantixapi.Call{{Number: "999", At: at(11)}},
		[]vantixapi.Email{{To: "a@b.pe", At: at(10)}, {To: "c@d.pe", At: at(8)}},
		3,
	)
	require.Len(t, feed, 3)
	kinds := []string{feed[0].Kind, feed[1].Kind, feed[2].Kind}
	assert.Equal(t, []string{FeedCall, FeedEmail, FeedVisit}, kinds)
	assert.Equal(t, "999", feed[0].Title)
}

func TestActivitiesInMonth(t *testing.T) {
	on := func(y int, m time.Month, d int) vantixapi.Timestamp {
		return vantixapi.Timestamp{Time: time.Date(y, m, d, 10, 0, 0, 0, time.UTC)}
	}
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	n := ActivitiesInMonth(
		[]vantixapi.Visit{{CheckedInAt: on(2024, time.January, 2)}, {CheckedInAt: on(2023, time.December, 30)}},
		[]vantixapi.Call{{At: on(2024, time.January, 31)}, {At: on(2023, time.January, 10)}},
		[]vantixapi.Email{{At: on(2024, time.February, 1)}, {At: on(2024, time.January, 9)}},
		now,
	)
	assert.Equal(t, 3, n)
	assert.Zero(t, ActivitiesInMonth(nil, nil, nil, now))
}

func TestPaginate(t *testing.T) {
	items := make([]int, 53)
	p := Paginate(items, 3, 25)
	assert.Equal(t, 3, p.Pages)
	assert.Len(t, p.Items, 3)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)

	p = Paginate(items, 99, 25)
	assert.Equal(t, 3, p.Page)

	empty := Paginate([]int{}, 1, 25)
	assert.Equal(t, 1, empty.Pages)
	assert.Empty(t, empty.Items)
}

func TestClientPickerCapsResults(t *testing.T) {
	clients := make([]vantixapi.Client, 80)
	for i := range clients {
		clients[i] = vantixapi.Client{ID: int64(i), Name: "Cliente " + strings.Repeat("x", i%3)}
	}
	assert.Len(t, ClientPicker(clients, "cliente", 50), 50)
	assert.Len(t, ClientPicker(clients, "", 50), 50)
}

func TestFilterEmployeesByStatusAndCategories(t *testing.T) {
	employees := []vantixapi.Employee{{ID: 1, Active: true}, {ID: 2}}
	assert.Len(t, FilterEmployeesByStatus(employees, StatusActive), 1)
	assert.Len(t, FilterEmployeesByStatus(employees, StatusInactive), 1)
	assert.Len(t, FilterEmployeesByStatus(employees, ""), 2)

	clients := []vantixapi.Client{{Category: vantixapi.CategoryRetail}, {Category: vantixapi.CategoryGovernment}}
	assert.Len(t, FilterClientsByCategory(clients, "retail"), 1)
	assert.Len(t, FilterClientsByCategory(clients, ""), 2)
}

func TestMoneyAndTotals(t *testing.T) {
	expenses := []vantixapi.Expense{
		{Amount: decimal.RequireFromString("1200.5")},
		{Amount: decimal.RequireFromString("34.25")},
	}
	total := ExpenseTotal(expenses)
	assert.Equal(t, "S/ 1,234.75", Money(total))
	assert.Equal(t, "S/ 0.00", Money(decimal.Zero))
	assert.Equal(t, "-S/ 5.00", Money(decimal.NewFromInt(-5)))
}

func TestQuotesInWeek(t *testing.T) {
	p := plan(1, "2024-01-08")
	lines := []vantixapi.QuoteLine{
		{Number: 1, Date: vantixapi.NewDate(2024, 1, 7)},
		{Number: 2, Date: vantixapi.NewDate(2024, 1, 8)},
		{Number: 3, Date: vantixapi.NewDate(2024, 1, 13)},
		{Number: 4, Date: vantixapi.NewDate(2024, 1, 14)},
		{Number: 5, Date: vantixapi.NewDate(2024, 1, 15)},
	}
	got := QuotesInWeek(lines, p)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Number)
	assert.Equal(t, int64(3), got[1].Number)

	// An explicit end from the backend wins over the Saturday default.
	p.WeekEnd = vantixapi.NewDate(2024, 1, 14)
	assert.Len(t, QuotesInWeek(lines, p), 3)
	assert.Equal(t, "2024-01-13", vantixapi.DateOf(WeekEnd(p.WeekStart.Time)).String())
}

func TestLabels(t *testing.T) {
	d := time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Domingo 01 de septiembre", DayLabel(d))
	assert.Equal(t, "01/09/2024", DateLabel(d))
	assert.Equal(t, "2:05", Duration(125))
	assert.Equal(t, "26 ago - 01 sep 2024", WeekLabel(d.AddDate(0, 0, -6), d))
}
