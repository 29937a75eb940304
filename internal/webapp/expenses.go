package webapp

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vantix/vantix/internal/forms"
	"github.com/vantix/vantix/internal/logging"
	"github.com/vantix/vantix/internal/screens"
	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/spreadsheet"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

func (s *server) loadExpenses(ctx context.Context, sess *session.Session, planID int64) screens.Snapshot[vantixapi.Expense] {
	return session.ListFor[vantixapi.Expense](sess.Views(), "expenses").Load(ctx, "expenses", func(ctx context.Context) ([]vantixapi.Expense, error) {
		return s.api.ListExpenses(ctx, sess.Token, planID)
	})
}

func (s *server) expensesPage(w http.ResponseWriter, r *http.Request) {
	var modal *forms.Modal[forms.ExpenseDraft]
	q := r.URL.Query()
	if q.Get("modal") == "nuevo" || parseID(q.Get("editar")) > 0 {
		modal = forms.NewModal(func() forms.ExpenseDraft {
			return forms.ExpenseDraft{Date: vantixapi.DateOf(s.now())}
		})
	}
	s.renderExpenses(w, r, modal)
}

func (s *server) renderExpenses(w http.ResponseWriter, r *http.Request, modal *forms.Modal[forms.ExpenseDraft]) {
	sess := sessionFrom(r.Context())
	data, scope, err := s.scopedPage(r, "Gastos de movilidad")
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil && data.Error == "" {
		data.Error = vantixapi.Message(err, "Error al obtener planes")
	}

	if scope.HasPlan {
		snap := s.loadExpenses(r.Context(), sess, scope.Selected.ID)
		if s.expireSession(w, r, snap.Err) {
			return
		}
		if snap.Err != nil && data.Error == "" {
			data.Error = vantixapi.Message(snap.Err, "Error al obtener gastos")
		}
		data.Expenses = views.SearchExpenses(snap.Items, data.Search)
		data.ExpenseTotal = views.ExpenseTotal(snap.Items)

		total, err := s.api.ExpenseTotal(r.Context(), sess.Token, scope.Selected.ID)
		if s.expireSession(w, r, err) {
			return
		}
		if err != nil {
			logging.FromContext(r.Context()).Warn("expense total unavailable", zap.Error(err))
		} else {
			data.ExpenseTotal = total.Total
		}

		if modal != nil && !modal.IsOpen() {
			_ = modal.Open(r.Context())
			modal.Draft().PlanID = scope.Selected.ID
			if editID := parseID(r.URL.Query().Get("editar")); editID > 0 {
				for _, e := range snap.Items {
					if e.ID == editID {
						*modal.Draft() = expenseDraftFrom(e)
					}
				}
			}
		}
	}
	data.Modal = openModal("expense", modal)
	s.render(w, r, s.expensesTmpl, data)
}

func expenseDraftFrom(e vantixapi.Expense) forms.ExpenseDraft {
	return forms.ExpenseDraft{
		ID:          e.ID,
		PlanID:      e.PlanID,
		ClientID:    e.ClientID,
		Date:        e.Date,
		Origin:      e.Origin,
		Destination: e.Destination,
		Institution: e.Institution,
		Reason:      e.Reason,
		Amount:      e.Amount,
	}
}

func (s *server) saveExpense(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	modal := forms.NewModal(func() forms.ExpenseDraft { return forms.ExpenseDraft{} })
	_ = modal.Open(r.Context())
	*modal.Draft() = forms.ExpenseDraft{
		ID:          formID(r, "id_gasto"),
		PlanID:      formID(r, "id_plan"),
		ClientID:    formID(r, "id_cliente"),
		Date:        formDate(r, "fecha_gasto"),
		Origin:      r.FormValue("lugar_origen"),
		Destination: r.FormValue("lugar_destino"),
		Institution: r.FormValue("institucion_visitada"),
		Reason:      r.FormValue("motivo_visita"),
		Amount:      formDecimal(r, "monto_gastado"),
	}
	d := modal.Draft()
	editing := d.ID > 0

	err := modal.Submit(r.Context(), forms.SaveExpense(s.api, sess.Token), nil)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		s.renderExpenses(w, r, modal)
		return
	}
	msg := "Gasto registrado"
	if editing {
		msg = "Gasto actualizado"
	}
	redirectWithMessage(w, r, withQuery("/finanzas", "plan", idString(d.PlanID)), msg)
}

func (s *server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	expenseID := pathID(r, "expenseID")
	if expenseID == 0 {
		http.NotFound(w, r)
		return
	}
	back := refererPath(r)
	err := s.api.DeleteExpense(r.Context(), sess.Token, expenseID)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, back, vantixapi.Message(err, "No se pudo eliminar el gasto"))
		return
	}
	redirectWithMessage(w, r, back, "Gasto eliminado")
}

func (s *server) exportExpenses(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	scope, err := s.planScope(r, s.viewedEmployee(r))
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil || !scope.HasPlan {
		redirectWithError(w, r, "/finanzas", "No hay un plan seleccionado para exportar")
		return
	}
	snap := s.loadExpenses(r.Context(), sess, scope.Selected.ID)
	if s.expireSession(w, r, snap.Err) {
		return
	}
	if snap.Err != nil {
		redirectWithError(w, r, withQuery("/finanzas", "plan", idString(scope.Selected.ID)), vantixapi.Message(snap.Err, "Error al obtener gastos"))
		return
	}

	expenses := views.SearchExpenses(snap.Items, r.URL.Query().Get("q"))
	rows := make([][]any, 0, len(expenses)+1)
	for _, e := range expenses {
		amount, _ := e.Amount.Float64()
		rows = append(rows, []any{views.DateLabel(e.Date.Time), e.Origin, e.Destination, e.Institution, e.Reason, amount})
	}
	total, _ := views.ExpenseTotal(expenses).Float64()
	rows = append(rows, []any{"", "", "", "", "Total", total})

	body, err := spreadsheet.WriteSheet("Gastos", []string{"Fecha", "Origen", "Destino", "Institución", "Motivo", "Monto (S/)"}, rows)
	if err != nil {
		logging.FromContext(r.Context()).Error("expense export failed", zap.Error(err))
		redirectWithError(w, r, "/finanzas", "No se pudo generar el archivo")
		return
	}
	writeDownload(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fmt.Sprintf("gastos-plan-%d.xlsx", scope.Selected.ID), body)
}
