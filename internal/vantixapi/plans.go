package vantixapi

import (
	"context"
	"net/http"
	"net/url"
)

type PlanFilter struct {
	ListParams
	EmployeeID int64
}

func (c *API) ListPlans(ctx context.Context, token string, f PlanFilter) ([]Plan, error) {
	q := url.Values{}
	f.apply(q)
	setID(q, "id_empleado", f.EmployeeID)
	var out []Plan
	err := c.do(ctx, request{
		op:       "list plans",
		fallback: "Error al obtener planes",
		method:   http.MethodGet,
		path:     "/planes/",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}

func (c *API) GetPlan(ctx context.Context, token string, id int64) (Plan, error) {
	var out Plan
	err := c.do(ctx, request{
		op:       "get plan",
		fallback: "Error al obtener el plan",
		method:   http.MethodGet,
		path:     "/planes/" + pathID(id),
		token:    token,
	}, &out)
	return out, err
}

// CreatePlan creates a weekly plan owned by employeeID.
func (c *API) CreatePlan(ctx context.Context, token string, employeeID int64, in PlanInput) (Plan, error) {
	q := url.Values{}
	setID(q, "id_empleado", employeeID)
	var out Plan
	err := c.do(ctx, request{
		op:       "create plan",
		fallback: "Error al crear el plan",
		method:   http.MethodPost,
		path:     "/planes/",
		query:    q,
		token:    token,
		json:     in,
	}, &out)
	return out, err
}

func (c *API) UpdatePlan(ctx context.Context, token string, id int64, in PlanUpdate) (Plan, error) {
	var out Plan
	err := c.do(ctx, request{
		op:       "update plan",
		fallback: "Error al actualizar el plan",
		method:   http.MethodPut,
		path:     "/planes/" + pathID(id),
		token:    token,
		json:     in,
	}, &out)
	return out, err
}

// ReviewPlan records a supervisor decision (approve or reject) on a submitted plan.
func (c *API) ReviewPlan(ctx context.Context, token string, id int64, status, notes string) (Plan, error) {
	var out Plan
	err := c.do(ctx, request{
		op:       "review plan",
		fallback: "Error al revisar el plan",
		method:   http.MethodPut,
		path:     "/planes/" + pathID(id),
		token:    token,
		json:     PlanUpdate{Status: status, SupervisorNotes: notes},
	}, &out)
	return out, err
}

func (c *API) DeletePlan(ctx context.Context, token string, id int64) error {
	return c.do(ctx, request{
		op:       "delete plan",
		fallback: "Error al eliminar el plan",
		method:   http.MethodDelete,
		path:     "/planes/" + pathID(id),
		token:    token,
	}, nil)
}
