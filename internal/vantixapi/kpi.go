package vantixapi

import (
	"context"
	"net/http"
	"net/url"
)

func (c *API) ListKPIReports(ctx context.Context, token string, employeeID int64) ([]KPIReport, error) {
	q := url.Values{}
	setID(q, "id_empleado", employeeID)
	var out []KPIReport
	err := c.do(ctx, request{
		op:       "list kpi reports",
		fallback: "Error al obtener informes KPI",
		method:   http.MethodGet,
		path:     "/kpi/informes/",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}

func (c *API) GetKPIReport(ctx context.Context, token string, planID int64) (KPIReport, error) {
	var out KPIReport
	err := c.do(ctx, request{
		op:       "get kpi report",
		fallback: "Error al obtener el informe KPI",
		method:   http.MethodGet,
		path:     "/kpi/informes/" + pathID(planID),
		token:    token,
	}, &out)
	return out, err
}

// SyncKPIReport asks the backend to recompute the report of a plan.
func (c *API) SyncKPIReport(ctx context.Context, token string, planID int64) (KPIReport, error) {
	var out KPIReport
	err := c.do(ctx, request{
		op:       "sync kpi report",
		fallback: "Error al sincronizar el informe KPI",
		method:   http.MethodPost,
		path:     "/kpi/informes/" + pathID(planID) + "/sincronizar",
		token:    token,
	}, &out)
	return out, err
}

func (c *API) ListIncentives(ctx context.Context, token string, employeeID int64, pendingOnly bool) ([]Incentive, error) {
	q := url.Values{}
	setID(q, "id_empleado", employeeID)
	if pendingOnly {
		q.Set("solo_pendientes", "true")
	}
	var out []Incentive
	err := c.do(ctx, request{
		op:       "list incentives",
		fallback: "Error al obtener incentivos",
		method:   http.MethodGet,
		path:     "/kpi/incentivos/",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}

func (c *API) PayIncentive(ctx context.Context, token string, id int64) (Incentive, error) {
	var out Incentive
	err := c.do(ctx, request{
		op:       "pay incentive",
		fallback: "Error al registrar el pago",
		method:   http.MethodPatch,
		path:     "/kpi/incentivos/" + pathID(id) + "/pagar",
		token:    token,
	}, &out)
	return out, err
}
