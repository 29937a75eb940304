package webapp

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/vantix/vantix/internal/logging"
	"github.com/vantix/vantix/internal/screens"
	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

func (s *server) kpiPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	data, _, err := s.scopedPage(r, "Rendimiento (KPI)")
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil && data.Error == "" {
		data.Error = vantixapi.Message(err, "Error al obtener planes")
	}

	snap := session.ListFor[vantixapi.KPIReport](sess.Views(), "kpi").Load(r.Context(), "kpi", func(ctx context.Context) ([]vantixapi.KPIReport, error) {
		return s.api.ListKPIReports(ctx, sess.Token, data.ViewedEmployeeID)
	})
	if s.expireSession(w, r, snap.Err) {
		return
	}
	if snap.Err != nil && data.Error == "" {
		data.Error = vantixapi.Message(snap.Err, "Error al obtener informes")
	}
	data.Reports = snap.Items
	data.MeanScore = views.MeanScore(snap.Items)
	if data.Plan != nil {
		for i := range snap.Items {
			if snap.Items[i].PlanID == data.Plan.ID {
				data.Report = &snap.Items[i]
			}
		}
	}

	pendingOnly := r.URL.Query().Get("incentivos") == "pendientes"
	if pendingOnly {
		data.Tab = "pendientes"
	}
	incentives, err := screens.Secondary(r.Context(), "incentives", func(ctx context.Context) ([]vantixapi.Incentive, error) {
		return s.api.ListIncentives(ctx, sess.Token, data.ViewedEmployeeID, pendingOnly)
	})
	if s.expireSession(w, r, err) {
		return
	}
	data.Incentives = incentives
	data.Pending = views.PendingIncentives(incentives)
	s.render(w, r, s.kpiTmpl, data)
}

func (s *server) syncKPI(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	planID := pathID(r, "planID")
	if planID == 0 {
		http.NotFound(w, r)
		return
	}
	back := withQuery("/kpi", "plan", idString(planID))
	rep, err := s.api.SyncKPIReport(r.Context(), sess.Token, planID)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, back, vantixapi.Message(err, "No se pudo calcular el informe"))
		return
	}
	logging.FromContext(r.Context()).Info("kpi synced", zap.Int64("plan_id", planID), zap.Int("score", rep.WeeklyScore))
	redirectWithMessage(w, r, back, "Informe actualizado")
}

func (s *server) payIncentive(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	incentiveID := pathID(r, "incentiveID")
	if incentiveID == 0 {
		http.NotFound(w, r)
		return
	}
	back := refererPath(r)
	_, err := s.api.PayIncentive(r.Context(), sess.Token, incentiveID)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, back, vantixapi.Message(err, "No se pudo registrar el pago"))
		return
	}
	redirectWithMessage(w, r, back, "Incentivo marcado como pagado")
}
