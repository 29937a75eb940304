package views

import (
	"strings"

	"github.com/vantix/vantix/internal/vantixapi"
)

func SearchCalls(calls []vantixapi.Call, term string) []vantixapi.Call {
	return Filter(calls, term,
		func(c vantixapi.Call) string { return c.Number },
		func(c vantixapi.Call) string { return c.Recipient },
	)
}

func SearchEmails(emails []vantixapi.Email, term string) []vantixapi.Email {
	return Filter(emails, term,
		func(e vantixapi.Email) string { return e.To },
		func(e vantixapi.Email) string { return e.Subject },
	)
}

func SearchEmployees(employees []vantixapi.Employee, term string) []vantixapi.Employee {
	return Filter(employees, term,
		func(e vantixapi.Employee) string { return e.FullName },
		func(e vantixapi.Employee) string { return e.DNI },
	)
}

func SearchClients(clients []vantixapi.Client, term string) []vantixapi.Client {
	return Filter(clients, term,
		func(c vantixapi.Client) string { return c.Name },
		func(c vantixapi.Client) string { return c.RUC },
	)
}

func SearchVisits(visits []vantixapi.Visit, term string) []vantixapi.Visit {
	return Filter(visits, term,
		func(v vantixapi.Visit) string { return v.ClientName() },
		func(v vantixapi.Visit) string { return v.Notes },
	)
}

func SearchPlans(plans []vantixapi.Plan, term string) []vantixapi.Plan {
	return Filter(plans, term, func(p vantixapi.Plan) string { return p.EmployeeName() })
}

func SearchExpenses(expenses []vantixapi.Expense, term string) []vantixapi.Expense {
	return Filter(expenses, term,
		func(e vantixapi.Expense) string { return e.Institution },
		func(e vantixapi.Expense) string { return e.Destination },
	)
}

func SearchQuotes(lines []vantixapi.QuoteLine, term string) []vantixapi.QuoteLine {
	return Filter(lines, term,
		func(q vantixapi.QuoteLine) string { return q.ClientName },
		func(q vantixapi.QuoteLine) string { return q.Product },
		func(q vantixapi.QuoteLine) string { return q.Brand },
	)
}

// Employee status filter values.
const (
	StatusAll      = "todos"
	StatusActive   = "activos"
	StatusInactive = "inactivos"
)

func FilterEmployeesByStatus(employees []vantixapi.Employee, status string) []vantixapi.Employee {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusActive:
		return keep(employees, func(e vantixapi.Employee) bool { return e.Active })
	case StatusInactive:
		return keep(employees, func(e vantixapi.Employee) bool { return !e.Active })
	default:
		return employees
	}
}

// FilterClientsByCategory keeps clients of category; blank keeps all.
func FilterClientsByCategory(clients []vantixapi.Client, category string) []vantixapi.Client {
	category = strings.TrimSpace(category)
	if category == "" {
		return clients
	}
	return keep(clients, func(c vantixapi.Client) bool { return strings.EqualFold(c.Category, category) })
}

// ClientPicker is the typeahead behind the client selector: name or RUC
// match, at most limit results.
func ClientPicker(clients []vantixapi.Client, term string, limit int) []vantixapi.Client {
	matches := SearchClients(clients, term)
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

func keep[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}
