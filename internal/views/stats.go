package views

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vantix/vantix/internal/vantixapi"
)

type VisitStats struct {
	Total           int
	Assisted        int
	WithPhotos      int
	Georeferenced   int
	DistinctClients int
	ByResult        map[string]int
}

func (s VisitStats) AssistedPct() int      { return RoundPct(s.Assisted, s.Total) }
func (s VisitStats) PhotoPct() int         { return RoundPct(s.WithPhotos, s.Total) }
func (s VisitStats) GeoreferencedPct() int { return RoundPct(s.Georeferenced, s.Total) }

// Effectiveness is the share of visits that closed a sale.
func (s VisitStats) Effectiveness() int {
	return RoundPct(s.ByResult[vantixapi.ResultSold], s.Total)
}

func ComputeVisitStats(visits []vantixapi.Visit) VisitStats {
	stats := VisitStats{Total: len(visits), ByResult: map[string]int{}}
	for _, v := range visits {
		if IsAssisted(v.Notes) {
			stats.Assisted++
		}
		if v.PlacePhoto != "" && v.SealPhoto != "" {
			stats.WithPhotos++
		}
		if v.HasLocation() {
			stats.Georeferenced++
		}
		if v.Result != "" {
			stats.ByResult[v.Result]++
		}
	}
	stats.DistinctClients = DistinctClients(visits)
	return stats
}

// DistinctClients counts different clients visited.
func DistinctClients(visits []vantixapi.Visit) int {
	seen := map[int64]struct{}{}
	for _, v := range visits {
		seen[v.ClientID] = struct{}{}
	}
	return len(seen)
}

// VisitsByRecency orders newest check-in first without touching the input.
func VisitsByRecency(visits []vantixapi.Visit) []vantixapi.Visit {
	out := append([]vantixapi.Visit(nil), visits...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CheckedInAt.After(out[j].CheckedInAt.Time) })
	return out
}

func ExpenseTotal(expenses []vantixapi.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// QuotesInWeek keeps the quote lines dated inside the plan's week.
func QuotesInWeek(lines []vantixapi.QuoteLine, plan vantixapi.Plan) []vantixapi.QuoteLine {
	return keep(lines, func(q vantixapi.QuoteLine) bool { return InWeek(plan, q.Date.Time) })
}

func QuotesTotal(lines []vantixapi.QuoteLine) decimal.Decimal {
	total := decimal.Zero
	for _, q := range lines {
		total = total.Add(q.LineTotal)
	}
	return total
}

// MeanScore is the average weekly score over reports, zero when there are none.
func MeanScore(reports []vantixapi.KPIReport) float64 {
	if len(reports) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reports {
		sum += r.WeeklyScore
	}
	return float64(sum) / float64(len(reports))
}

func PendingIncentives(incentives []vantixapi.Incentive) decimal.Decimal {
	total := decimal.Zero
	for _, i := range incentives {
		if !i.Paid() {
			total = total.Add(i.Amount)
		}
	}
	return total
}

// PlanCounts tallies plans per status.
func PlanCounts(plans []vantixapi.Plan) map[string]int {
	out := map[string]int{}
	for _, p := range plans {
		out[p.Status]++
	}
	return out
}

// ActiveEmployees counts employees whose account is enabled.
func ActiveEmployees(employees []vantixapi.Employee) int {
	n := 0
	for _, e := range employees {
		if e.Active {
			n++
		}
	}
	return n
}
