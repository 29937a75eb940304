package webapp

import (
	"context"
	"net/http"
	"strings"

	"github.com/vantix/vantix/internal/forms"
	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

func (s *server) employeesPage(w http.ResponseWriter, r *http.Request) {
	var modal *forms.Modal[forms.EmployeeDraft]
	q := r.URL.Query()
	if q.Get("modal") == "nuevo" || parseID(q.Get("editar")) > 0 {
		modal = forms.NewModal(forms.NewEmployeeDraft)
		_ = modal.Open(r.Context())
	}
	s.renderEmployees(w, r, modal)
}

func (s *server) renderEmployees(w http.ResponseWriter, r *http.Request, modal *forms.Modal[forms.EmployeeDraft]) {
	sess := sessionFrom(r.Context())
	data := s.page(r, "Empleados")
	list := session.ListFor[vantixapi.Employee](sess.Views(), "employees")
	snap := list.Load(r.Context(), "employees", func(ctx context.Context) ([]vantixapi.Employee, error) {
		return s.api.ListEmployees(ctx, sess.Token, vantixapi.ListParams{Limit: 100})
	})
	if s.expireSession(w, r, snap.Err) {
		return
	}
	if snap.Err != nil && data.Error == "" {
		data.Error = vantixapi.Message(snap.Err, "Error al obtener empleados")
	}

	if editID := parseID(r.URL.Query().Get("editar")); editID > 0 && modal != nil && modal.Draft().ID == 0 {
		for _, e := range snap.Items {
			if e.ID == editID {
				*modal.Draft() = forms.EmployeeDraftFrom(e)
			}
		}
	}

	data.EmployeeStatus = r.URL.Query().Get("estado")
	filtered := views.FilterEmployeesByStatus(views.SearchEmployees(snap.Items, data.Search), data.EmployeeStatus)
	data.EmployeePage = views.Paginate(filtered, parsePositiveInt(r.URL.Query().Get("page"), 1), 25)
	data.Pager = newPager(r, data.EmployeePage)
	data.Modal = openModal("employee", modal)
	s.render(w, r, s.employeesTmpl, data)
}

func employeeDraftFromForm(r *http.Request) forms.EmployeeDraft {
	return forms.EmployeeDraft{
		ID:       formID(r, "id_empleado"),
		FullName: r.FormValue("nombre_completo"),
		DNI:      strings.TrimSpace(r.FormValue("dni")),
		Role:     r.FormValue("cargo"),
		Email:    r.FormValue("email_corporativo"),
		Active:   formBool(r, "activo"),
		IsAdmin:  formBool(r, "is_admin"),
		Password: r.FormValue("password"),
	}
}

func (s *server) saveEmployee(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	modal := forms.NewModal(forms.NewEmployeeDraft)
	_ = modal.Open(r.Context())
	*modal.Draft() = employeeDraftFromForm(r)

	editing := modal.Draft().ID > 0
	err := modal.Submit(r.Context(), forms.SaveEmployee(s.api, sess.Token), nil)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		s.renderEmployees(w, r, modal)
		return
	}
	msg := "Empleado registrado"
	if editing {
		msg = "Empleado actualizado"
	}
	redirectWithMessage(w, r, "/empleados", msg)
}

func (s *server) toggleEmployee(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	id := pathID(r, "employeeID")
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	employee, err := s.api.ToggleEmployeeActive(r.Context(), sess.Token, id)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, "/empleados", vantixapi.Message(err, "No se pudo cambiar el estado"))
		return
	}
	msg := "Empleado desactivado"
	if employee.Active {
		msg = "Empleado activado"
	}
	redirectWithMessage(w, r, "/empleados", msg)
}
