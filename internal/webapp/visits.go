package webapp

import (
	"context"
	"net/http"

	"github.com/vantix/vantix/internal/forms"
	"github.com/vantix/vantix/internal/screens"
	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

func visitRows(visits []vantixapi.Visit) []visitRow {
	rows := make([]visitRow, 0, len(visits))
	for _, v := range visits {
		row := visitRow{Visit: v, NotesText: v.Notes}
		if companion, rest, ok := views.ParseAssisted(v.Notes); ok {
			row.Assisted, row.Companion, row.NotesText = true, companion, rest
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *server) visitsPage(w http.ResponseWriter, r *http.Request) {
	var modal *forms.Modal[forms.VisitDraft]
	if r.URL.Query().Get("modal") == "nuevo" {
		modal = forms.NewModal(forms.NewVisitDraft)
	}
	s.renderVisits(w, r, modal)
}

func (s *server) renderVisits(w http.ResponseWriter, r *http.Request, modal *forms.Modal[forms.VisitDraft]) {
	sess := sessionFrom(r.Context())
	data, scope, err := s.scopedPage(r, "Registro de visitas")
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil && data.Error == "" {
		data.Error = vantixapi.Message(err, "Error al obtener planes")
	}
	data.VisitResults = vantixapi.VisitResults

	var visits []vantixapi.Visit
	if scope.HasPlan {
		list := session.ListFor[vantixapi.Visit](sess.Views(), "visits")
		snap := list.Load(r.Context(), "visits", func(ctx context.Context) ([]vantixapi.Visit, error) {
			return s.api.ListVisits(ctx, sess.Token, vantixapi.VisitFilter{ListParams: vantixapi.ListParams{Limit: 500}, PlanID: scope.Selected.ID})
		})
		if s.expireSession(w, r, snap.Err) {
			return
		}
		if snap.Err != nil && data.Error == "" {
			data.Error = vantixapi.Message(snap.Err, "Error al obtener visitas")
		}
		visits = snap.Items
	}

	data.VisitStats = views.ComputeVisitStats(visits)
	data.Visits = visitRows(views.VisitsByRecency(views.SearchVisits(visits, data.Search)))
	data.VisitGroups = views.GroupBy(data.Visits, func(v visitRow) string { return views.VisitDay(v.Visit) })

	if modal != nil {
		loadClients := func(ctx context.Context) error {
			clients, err := screens.Secondary(ctx, "visit-clients", func(ctx context.Context) ([]vantixapi.Client, error) {
				snap := s.loadClients(ctx, sess, scope.EmployeeID)
				return snap.Items, snap.Err
			})
			data.Clients = clients
			return err
		}
		if modal.IsOpen() {
			err = loadClients(r.Context())
		} else {
			err = modal.Open(r.Context(), loadClients)
			modal.Draft().PlanID = data.SelectedPlanID
		}
		if s.expireSession(w, r, err) {
			return
		}
	}
	data.Modal = openModal("visit", modal)
	s.render(w, r, s.visitsTmpl, data)
}

func (s *server) createVisit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	modal := forms.NewModal(forms.NewVisitDraft)
	_ = modal.Open(r.Context())
	d := modal.Draft()
	d.PlanID = formID(r, "id_plan")
	d.ClientID = formID(r, "id_cliente")
	d.Result = r.FormValue("resultado")
	d.Notes = r.FormValue("observaciones")
	d.Companion = r.FormValue("acompanante")
	d.Latitude = formFloat(r, "lat")
	d.Longitude = formFloat(r, "lon")
	forms.SetAssisted(modal, formBool(r, "asistida"))

	photoErrors := map[string]string{}
	if slot, err := forms.ReadPhoto(r, "foto_lugar"); err != nil {
		photoErrors["PlacePhoto"] = err.Error()
	} else {
		d.PlacePhoto = slot
	}
	if slot, err := forms.ReadPhoto(r, "foto_sello"); err != nil {
		photoErrors["SealPhoto"] = err.Error()
	} else {
		d.SealPhoto = slot
	}

	err := modal.Submit(r.Context(), forms.SaveVisit(s.api, sess.Token), nil)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		for field, msg := range photoErrors {
			if modal.Fields == nil {
				modal.Fields = map[string]string{}
			}
			modal.Fields[field] = msg
		}
		s.renderVisits(w, r, modal)
		return
	}
	redirectWithMessage(w, r, withQuery("/visitas", "plan", idString(d.PlanID)), "Visita registrada")
}

func (s *server) deleteVisit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	visitID := pathID(r, "visitID")
	if visitID == 0 {
		http.NotFound(w, r)
		return
	}
	back := refererPath(r)
	err := s.api.DeleteVisit(r.Context(), sess.Token, visitID)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, back, vantixapi.Message(err, "No se pudo eliminar la visita"))
		return
	}
	redirectWithMessage(w, r, back, "Visita eliminada")
}
