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

const (
	tabCalls  = "llamadas"
	tabEmails = "correos"
)

func newCallDraft() forms.CallDraft   { return forms.CallDraft{} }
func newEmailDraft() forms.EmailDraft { return forms.EmailDraft{Status: "Enviado"} }

func crmTab(r *http.Request) string {
	if r.URL.Query().Get("tab") == tabEmails || r.FormValue("tab") == tabEmails {
		return tabEmails
	}
	return tabCalls
}

func (s *server) crmPage(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("modal") {
	case "llamada":
		m := forms.NewModal(newCallDraft)
		_ = m.Open(r.Context())
		s.renderCRM(w, r, openModal("call", m))
	case "correo":
		m := forms.NewModal(newEmailDraft)
		_ = m.Open(r.Context())
		s.renderCRM(w, r, openModal("email", m))
	default:
		s.renderCRM(w, r, nil)
	}
}

func (s *server) loadCRM(ctx context.Context, sess *session.Session, planID int64) (screens.Snapshot[vantixapi.Call], screens.Snapshot[vantixapi.Email]) {
	filter := vantixapi.CRMFilter{ListParams: vantixapi.ListParams{Limit: 500}, PlanID: planID}
	calls := session.ListFor[vantixapi.Call](sess.Views(), "calls").Load(ctx, "calls", func(ctx context.Context) ([]vantixapi.Call, error) {
		return s.api.ListCalls(ctx, sess.Token, filter)
	})
	emails := session.ListFor[vantixapi.Email](sess.Views(), "emails").Load(ctx, "emails", func(ctx context.Context) ([]vantixapi.Email, error) {
		return s.api.ListEmails(ctx, sess.Token, filter)
	})
	return calls, emails
}

func (s *server) renderCRM(w http.ResponseWriter, r *http.Request, modal *modalView) {
	sess := sessionFrom(r.Context())
	data, scope, err := s.scopedPage(r, "CRM")
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil && data.Error == "" {
		data.Error = vantixapi.Message(err, "Error al obtener planes")
	}
	data.Tab = crmTab(r)

	if scope.HasPlan {
		calls, emails := s.loadCRM(r.Context(), sess, scope.Selected.ID)
		for _, e := range []error{calls.Err, emails.Err} {
			if s.expireSession(w, r, e) {
				return
			}
			if e != nil && data.Error == "" {
				data.Error = vantixapi.Message(e, "Error al obtener el historial")
			}
		}
		data.Calls = views.SearchCalls(calls.Items, data.Search)
		data.Emails = views.SearchEmails(emails.Items, data.Search)
	}
	if modal != nil {
		switch d := modal.Draft.(type) {
		case forms.CallDraft:
			if d.PlanID == 0 {
				d.PlanID = data.SelectedPlanID
			}
			modal.Draft = d
		case forms.EmailDraft:
			if d.PlanID == 0 {
				d.PlanID = data.SelectedPlanID
			}
			modal.Draft = d
		}
	}
	data.Modal = modal
	s.render(w, r, s.crmTmpl, data)
}

func crmBack(planID int64, tab string) string {
	return fmt.Sprintf("/crm?plan=%d&tab=%s", planID, tab)
}

func (s *server) createCall(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	modal := forms.NewModal(newCallDraft)
	_ = modal.Open(r.Context())
	d := modal.Draft()
	d.PlanID = formID(r, "id_plan")
	d.Number = r.FormValue("numero_destino")
	d.Recipient = r.FormValue("nombre_destinatario")
	d.DurationSecs = formInt(r, "duracion_segundos", 0)
	d.Result = r.FormValue("resultado")
	d.Notes = r.FormValue("notas_llamada")
	proof, proofErr := forms.ReadPhoto(r, "foto_prueba")
	d.Proof = proof

	var err error
	if proofErr != nil {
		modal.Error = proofErr.Error()
		err = proofErr
	} else {
		err = modal.Submit(r.Context(), forms.SaveCall(s.api, sess.Token), nil)
	}
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		s.renderCRM(w, r, openModal("call", modal))
		return
	}
	redirectWithMessage(w, r, crmBack(d.PlanID, tabCalls), "Llamada registrada")
}

func (s *server) createEmail(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	modal := forms.NewModal(newEmailDraft)
	_ = modal.Open(r.Context())
	d := modal.Draft()
	d.PlanID = formID(r, "id_plan")
	d.To = r.FormValue("email_destino")
	d.Subject = r.FormValue("asunto")
	if status := r.FormValue("estado_envio"); status != "" {
		d.Status = status
	}
	proof, proofErr := forms.ReadPhoto(r, "foto_prueba")
	d.Proof = proof

	var err error
	if proofErr != nil {
		modal.Error = proofErr.Error()
		err = proofErr
	} else {
		err = modal.Submit(r.Context(), forms.SaveEmail(s.api, sess.Token), nil)
	}
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		s.renderCRM(w, r, openModal("email", modal))
		return
	}
	redirectWithMessage(w, r, crmBack(d.PlanID, tabEmails), "Correo registrado")
}

func (s *server) exportCRM(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	scope, err := s.planScope(r, s.viewedEmployee(r))
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil || !scope.HasPlan {
		redirectWithError(w, r, "/crm", "No hay un plan seleccionado para exportar")
		return
	}
	calls, emails := s.loadCRM(r.Context(), sess, scope.Selected.ID)
	for _, e := range []error{calls.Err, emails.Err} {
		if s.expireSession(w, r, e) {
			return
		}
		if e != nil {
			redirectWithError(w, r, crmBack(scope.Selected.ID, crmTab(r)), vantixapi.Message(e, "Error al obtener el historial"))
			return
		}
	}

	var (
		body []byte
		name string
	)
	if crmTab(r) == tabEmails {
		rows := make([][]any, 0, len(emails.Items))
		for _, e := range views.SearchEmails(emails.Items, r.URL.Query().Get("q")) {
			rows = append(rows, []any{views.DateTimeLabel(e.At.Time), e.To, e.Subject, e.Status})
		}
		body, err = spreadsheet.WriteSheet("Correos", []string{"Fecha", "Destino", "Asunto", "Estado"}, rows)
		name = fmt.Sprintf("correos-plan-%d.xlsx", scope.Selected.ID)
	} else {
		rows := make([][]any, 0, len(calls.Items))
		for _, c := range views.SearchCalls(calls.Items, r.URL.Query().Get("q")) {
			rows = append(rows, []any{views.DateTimeLabel(c.At.Time), c.Number, c.Recipient, views.Duration(c.DurationSecs), c.Result, c.Notes})
		}
		body, err = spreadsheet.WriteSheet("Llamadas", []string{"Fecha", "Número", "Destinatario", "Duración", "Resultado", "Notas"}, rows)
		name = fmt.Sprintf("llamadas-plan-%d.xlsx", scope.Selected.ID)
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("crm export failed", zap.Error(err))
		redirectWithError(w, r, crmBack(scope.Selected.ID, crmTab(r)), "No se pudo generar el archivo")
		return
	}
	writeDownload(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name, body)
}
