package webapp

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vantix/vantix/internal/logging"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

const feedSize = 6

type dashboardFetch struct {
	mu          sync.Mutex
	unavailable []string
}

// card runs one dashboard fetch. Only an expired session fails the group;
// anything else blanks that card.
func card[T any](ctx context.Context, f *dashboardFetch, name string, out *[]T, fetch func(context.Context) ([]T, error)) func() error {
	return func() error {
		items, err := fetch(ctx)
		if err == nil {
			*out = items
			return nil
		}
		if errors.Is(err, vantixapi.ErrSessionExpired) {
			return err
		}
		logging.FromContext(ctx).Warn("dashboard card unavailable", zap.String("card", name), zap.Error(err))
		f.mu.Lock()
		f.unavailable = append(f.unavailable, name)
		f.mu.Unlock()
		return nil
	}
}

func (s *server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	data := s.page(r, "Dashboard")
	employeeID := s.viewedEmployee(r)
	data.ViewedEmployeeID = employeeID

	scopeID := employeeID
	if sess.IsAdmin() && employeeID == sess.User.ID {
		scopeID = 0
	}

	var (
		clients   []vantixapi.Client
		visits    []vantixapi.Visit
		employees []vantixapi.Employee
		calls     []vantixapi.Call
		emails    []vantixapi.Email
		reports   []vantixapi.KPIReport
		fetch     dashboardFetch
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(card(ctx, &fetch, "clientes", &clients, func(ctx context.Context) ([]vantixapi.Client, error) {
		return s.api.ListClients(ctx, sess.Token, vantixapi.ClientFilter{ListParams: vantixapi.ListParams{Limit: 500}, EmployeeID: scopeID})
	}))
	g.Go(card(ctx, &fetch, "visitas", &visits, func(ctx context.Context) ([]vantixapi.Visit, error) {
		return s.api.ListVisits(ctx, sess.Token, vantixapi.VisitFilter{ListParams: vantixapi.ListParams{Limit: 500}, EmployeeID: scopeID})
	}))
	g.Go(card(ctx, &fetch, "empleados", &employees, func(ctx context.Context) ([]vantixapi.Employee, error) {
		if !sess.IsAdmin() {
			return nil, nil
		}
		return s.api.ListEmployees(ctx, sess.Token, vantixapi.ListParams{Limit: 100})
	}))
	g.Go(card(ctx, &fetch, "llamadas", &calls, func(ctx context.Context) ([]vantixapi.Call, error) {
		return s.api.ListCalls(ctx, sess.Token, vantixapi.CRMFilter{ListParams: vantixapi.ListParams{Limit: 50}, EmployeeID: scopeID})
	}))
	g.Go(card(ctx, &fetch, "correos", &emails, func(ctx context.Context) ([]vantixapi.Email, error) {
		return s.api.ListEmails(ctx, sess.Token, vantixapi.CRMFilter{ListParams: vantixapi.ListParams{Limit: 50}, EmployeeID: scopeID})
	}))
	g.Go(card(ctx, &fetch, "kpi", &reports, func(ctx context.Context) ([]vantixapi.KPIReport, error) {
		return s.api.ListKPIReports(ctx, sess.Token, scopeID)
	}))
	if err := g.Wait(); err != nil {
		s.expireSession(w, r, err)
		return
	}

	dash := &dashboardView{
		ActiveEmployees: views.ActiveEmployees(employees),
		TotalClients:    len(clients),
		TotalVisits:     len(visits),
		MonthActivities: views.ActivitiesInMonth(visits, calls, emails, s.now()),
		MeanScore:       views.MeanScore(reports),
		VisitStats:      views.ComputeVisitStats(visits),
		Feed:            views.ActivityFeed(visits, calls, emails, feedSize),
		Unavailable:     fetch.unavailable,
	}
	data.PickerEmployees = employees

	scope, err := s.planScope(r, employeeID)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Warn("dashboard plans unavailable", zap.Error(err))
		dash.Unavailable = append(dash.Unavailable, "planes")
	} else {
		dash.PlanCounts = views.PlanCounts(scope.Plans)
		if scope.HasPlan {
			current := scope.Selected
			dash.CurrentPlan = &current
		}
	}
	data.Dashboard = dash
	s.render(w, r, s.dashboardTmpl, data)
}
