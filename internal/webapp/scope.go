package webapp

import (
	"context"
	"net/http"

	"github.com/vantix/vantix/internal/screens"
	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/vantixapi"
)

// viewedEmployee resolves whose data the page shows. An admin's choice
// (?empleado=) is remembered in the session for the following screens.
func (s *server) viewedEmployee(r *http.Request) int64 {
	sess := sessionFrom(r.Context())
	requested := parseID(r.URL.Query().Get("empleado"))
	if requested == 0 {
		requested = parseID(r.FormValue("empleado"))
	}
	if requested == 0 {
		requested = sess.ViewedEmployeeID
	}
	id := screens.ResolveViewedEmployee(sess.User, requested)
	if sess.IsAdmin() && id != sess.ViewedEmployeeID {
		s.sessions.SetViewedEmployee(sess.ID, id)
	}
	return id
}

// pickerEmployees is the employee selector shown to admins. It is a
// secondary fetch: failures leave the picker empty.
func (s *server) pickerEmployees(ctx context.Context, sess *session.Session) ([]vantixapi.Employee, error) {
	if !sess.IsAdmin() {
		return nil, nil
	}
	list := session.ListFor[vantixapi.Employee](sess.Views(), "picker-employees")
	return screens.Secondary(ctx, "picker-employees", func(ctx context.Context) ([]vantixapi.Employee, error) {
		snap := list.Load(ctx, "picker-employees", func(ctx context.Context) ([]vantixapi.Employee, error) {
			return s.api.ListEmployees(ctx, sess.Token, vantixapi.ListParams{Limit: 100})
		})
		return snap.Items, snap.Err
	})
}

// planScope loads the viewed employee's plans and focuses the one named by
// ?plan= or the one for the current week.
func (s *server) planScope(r *http.Request, employeeID int64) (screens.PlanScope, error) {
	sess := sessionFrom(r.Context())
	requested := parseID(r.URL.Query().Get("plan"))
	if requested == 0 {
		requested = parseID(r.FormValue("id_plan"))
	}
	return screens.LoadPlanScope(r.Context(), s.api, sess.Token, employeeID, requested, s.now())
}

func (s *server) scopedPage(r *http.Request, title string) (pageData, screens.PlanScope, error) {
	sess := sessionFrom(r.Context())
	data := s.page(r, title)
	employeeID := s.viewedEmployee(r)
	data.ViewedEmployeeID = employeeID

	pickers, err := s.pickerEmployees(r.Context(), sess)
	if err != nil {
		return data, screens.PlanScope{}, err
	}
	data.PickerEmployees = pickers

	scope, err := s.planScope(r, employeeID)
	if err != nil {
		return data, scope, err
	}
	data.Plans = scope.Plans
	if scope.HasPlan {
		selected := scope.Selected
		data.Plan = &selected
		data.SelectedPlanID = selected.ID
	}
	return data, scope, nil
}
