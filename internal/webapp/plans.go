package webapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vantix/vantix/internal/forms"
	"github.com/vantix/vantix/internal/logging"
	"github.com/vantix/vantix/internal/report"
	"github.com/vantix/vantix/internal/screens"
	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

func (s *server) plansPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	data := s.page(r, "Planes semanales")
	scopeID := s.clientScope(r)
	data.ViewedEmployeeID = scopeID

	pickers, err := s.pickerEmployees(r.Context(), sess)
	if s.expireSession(w, r, err) {
		return
	}
	data.PickerEmployees = pickers

	list := session.ListFor[vantixapi.Plan](sess.Views(), "plans")
	snap := list.Load(r.Context(), "plans", func(ctx context.Context) ([]vantixapi.Plan, error) {
		return s.api.ListPlans(ctx, sess.Token, vantixapi.PlanFilter{ListParams: vantixapi.ListParams{Limit: 100}, EmployeeID: scopeID})
	})
	if s.expireSession(w, r, snap.Err) {
		return
	}
	if snap.Err != nil && data.Error == "" {
		data.Error = vantixapi.Message(snap.Err, "Error al obtener planes")
	}

	plans := views.SearchPlans(snap.Items, data.Search)
	if status := strings.TrimSpace(r.URL.Query().Get("estado")); status != "" {
		data.Tab = status
		filtered := make([]vantixapi.Plan, 0, len(plans))
		for _, p := range plans {
			if strings.EqualFold(p.Status, status) {
				filtered = append(filtered, p)
			}
		}
		plans = filtered
	}
	data.Plans = plans
	if selected, ok := views.SelectPlan(snap.Items, s.now()); ok {
		data.SelectedPlanID = selected.ID
	}
	s.render(w, r, s.plansTmpl, data)
}

func (s *server) planPage(w http.ResponseWriter, r *http.Request) {
	s.renderPlan(w, r, nil)
}

func (s *server) renderPlan(w http.ResponseWriter, r *http.Request, review *forms.Modal[forms.PlanReview]) {
	sess := sessionFrom(r.Context())
	id := pathID(r, "planID")
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	data := s.page(r, "Detalle del plan")

	plan, err := s.api.GetPlan(r.Context(), sess.Token, id)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, "/planes", vantixapi.Message(err, "Error al obtener el plan"))
		return
	}
	if !sess.IsAdmin() && plan.EmployeeID != sess.User.ID {
		redirectWithError(w, r, "/planes", "No tienes acceso a este plan")
		return
	}
	data.Plan = &plan
	data.SelectedPlanID = plan.ID
	data.Groups = views.GroupActivities(plan.Agenda)

	visits, err := screens.Secondary(r.Context(), "plan-visits", func(ctx context.Context) ([]vantixapi.Visit, error) {
		return s.api.ListVisits(ctx, sess.Token, vantixapi.VisitFilter{ListParams: vantixapi.ListParams{Limit: 500}, PlanID: plan.ID})
	})
	if s.expireSession(w, r, err) {
		return
	}
	data.Visits = visitRows(views.VisitsByRecency(visits))
	data.VisitStats = views.ComputeVisitStats(visits)

	reports, err := screens.Secondary(r.Context(), "plan-kpi", func(ctx context.Context) ([]vantixapi.KPIReport, error) {
		rep, err := s.api.GetKPIReport(ctx, sess.Token, plan.ID)
		if err != nil {
			return nil, err
		}
		return []vantixapi.KPIReport{rep}, nil
	})
	if s.expireSession(w, r, err) {
		return
	}
	if len(reports) > 0 {
		data.Report = &reports[0]
	}

	if review == nil && sess.IsAdmin() && r.URL.Query().Get("modal") == "revisar" {
		review = forms.NewModal(func() forms.PlanReview { return forms.PlanReview{PlanID: plan.ID} })
		_ = review.Open(r.Context())
	}
	data.Modal = openModal("review", review)
	s.render(w, r, s.planTmpl, data)
}

func planPath(id int64) string { return fmt.Sprintf("/planes/%d", id) }

func (s *server) reviewPlan(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	id := pathID(r, "planID")
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	modal := forms.NewModal(func() forms.PlanReview { return forms.PlanReview{PlanID: id} })
	_ = modal.Open(r.Context())
	modal.Draft().Decision = r.FormValue("estado")
	modal.Draft().Notes = r.FormValue("observaciones_supervisor")

	err := modal.Submit(r.Context(), forms.SaveReview(s.api, sess.Token), nil)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		s.renderPlan(w, r, modal)
		return
	}
	logging.FromContext(r.Context()).Info("plan reviewed", zap.Int64("plan_id", id), zap.String("estado", modal.Draft().Decision))
	redirectWithMessage(w, r, planPath(id), "Plan "+strings.ToLower(r.FormValue("estado")))
}

// submitPlan sends a draft (or rejected) plan to the supervisor.
func (s *server) submitPlan(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	id := pathID(r, "planID")
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	_, err := s.api.UpdatePlan(r.Context(), sess.Token, id, vantixapi.PlanUpdate{Status: vantixapi.PlanSubmitted})
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, planPath(id), vantixapi.Message(err, "No se pudo enviar el plan"))
		return
	}
	redirectWithMessage(w, r, planPath(id), "Plan enviado a revisión")
}

func (s *server) deletePlan(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	id := pathID(r, "planID")
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	err := s.api.DeletePlan(r.Context(), sess.Token, id)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, planPath(id), vantixapi.Message(err, "No se pudo eliminar el plan"))
		return
	}
	redirectWithMessage(w, r, "/planes", "Plan eliminado")
}

func (s *server) planReport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	id := pathID(r, "planID")
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	plan, err := s.api.GetPlan(r.Context(), sess.Token, id)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, planPath(id), vantixapi.Message(err, "Error al obtener el plan"))
		return
	}
	visits, err := screens.Secondary(r.Context(), "report-visits", func(ctx context.Context) ([]vantixapi.Visit, error) {
		return s.api.ListVisits(ctx, sess.Token, vantixapi.VisitFilter{ListParams: vantixapi.ListParams{Limit: 500}, PlanID: plan.ID})
	})
	if s.expireSession(w, r, err) {
		return
	}
	pdf, err := report.PlanPDF(plan, visits)
	if err != nil {
		logging.FromContext(r.Context()).Error("plan report failed", zap.Int64("plan_id", id), zap.Error(err))
		redirectWithError(w, r, planPath(id), "No se pudo generar el reporte")
		return
	}
	writeDownload(w, "application/pdf", fmt.Sprintf("plan-%d-%s.pdf", plan.ID, plan.WeekStart.String()), pdf)
}

func (s *server) newPlanPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	employeeID := s.viewedEmployee(r)
	modal := forms.NewModal(func() forms.PlanDraft { return forms.NewPlanDraft(employeeID, s.now()) })
	_ = modal.Open(r.Context())
	if start, err := vantixapi.ParseDate(r.URL.Query().Get("semana")); err == nil {
		modal.Draft().WeekStart = vantixapi.DateOf(views.MondayOf(start.Time))
	}
	if !sess.IsAdmin() {
		modal.Draft().EmployeeID = sess.User.ID
	}
	s.renderNewPlan(w, r, modal)
}

func (s *server) renderNewPlan(w http.ResponseWriter, r *http.Request, modal *forms.Modal[forms.PlanDraft]) {
	sess := sessionFrom(r.Context())
	data := s.page(r, "Nuevo plan semanal")
	data.ActivityTypes = forms.ActivityTypes
	data.ViewedEmployeeID = modal.Draft().EmployeeID

	pickers, err := s.pickerEmployees(r.Context(), sess)
	if s.expireSession(w, r, err) {
		return
	}
	data.PickerEmployees = pickers

	clients, err := screens.Secondary(r.Context(), "plan-clients", func(ctx context.Context) ([]vantixapi.Client, error) {
		snap := s.loadClients(ctx, sess, modal.Draft().EmployeeID)
		return snap.Items, snap.Err
	})
	if s.expireSession(w, r, err) {
		return
	}
	data.Clients = clients
	data.Modal = openModal("plan", modal)
	s.render(w, r, s.planNewTmpl, data)
}

// agendaFromForm reads the wizard's parallel tipo/fecha/hora/cliente/notas
// columns. Rows without a type are blank and skipped.
func agendaFromForm(r *http.Request) []forms.ActivityDraft {
	types := r.Form["tipo_actividad"]
	dates := r.Form["fecha_programada"]
	times := r.Form["hora_programada"]
	clients := r.Form["id_cliente"]
	notes := r.Form["notas"]
	at := func(values []string, i int) string {
		if i < len(values) {
			return strings.TrimSpace(values[i])
		}
		return ""
	}

	var agenda []forms.ActivityDraft
	for i := range types {
		if at(types, i) == "" {
			continue
		}
		date, _ := vantixapi.ParseDate(at(dates, i))
		agenda = append(agenda, forms.ActivityDraft{
			Type:     at(types, i),
			Date:     date,
			Time:     at(times, i),
			ClientID: parseID(at(clients, i)),
			Notes:    at(notes, i),
		})
	}
	return agenda
}

func (s *server) createPlan(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/planes/nuevo", "Formulario inválido")
		return
	}
	employeeID := formID(r, "id_empleado")
	if !sess.IsAdmin() || employeeID == 0 {
		employeeID = sess.User.ID
	}

	modal := forms.NewModal(func() forms.PlanDraft { return forms.NewPlanDraft(employeeID, s.now()) })
	_ = modal.Open(r.Context())
	d := modal.Draft()
	d.WeekStart = formDate(r, "fecha_inicio_semana")
	d.ExpectedSales = formDecimal(r, "venta_esperada")
	d.GoalVisits = formInt(r, "meta_visitas", forms.DefaultGoalVisits)
	d.GoalAssistedVisits = formInt(r, "meta_visitas_asistidas", forms.DefaultGoalAssistedVisits)
	d.GoalCalls = formInt(r, "meta_llamadas", forms.DefaultGoalCalls)
	d.GoalEmails = formInt(r, "meta_emails", forms.DefaultGoalEmails)
	d.Agenda = agendaFromForm(r)

	var created vantixapi.Plan
	err := modal.Submit(r.Context(), func(ctx context.Context, d forms.PlanDraft) error {
		plan, err := s.api.CreatePlan(ctx, sess.Token, d.EmployeeID, d.Input())
		created = plan
		return err
	}, nil)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		s.renderNewPlan(w, r, modal)
		return
	}
	redirectWithMessage(w, r, planPath(created.ID), "Plan creado")
}
