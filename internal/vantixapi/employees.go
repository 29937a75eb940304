package vantixapi

import (
	"context"
	"net/http"
	"net/url"
)

func (c *API) ListEmployees(ctx context.Context, token string, p ListParams) ([]Employee, error) {
	q := url.Values{}
	p.apply(q)
	var out []Employee
	err := c.do(ctx, request{
		op:       "list employees",
		fallback: "Error al obtener empleados",
		method:   http.MethodGet,
		path:     "/empleados/",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}

func (c *API) CreateEmployee(ctx context.Context, token string, in EmployeeInput) (Employee, error) {
	var out Employee
	err := c.do(ctx, request{
		op:       "create employee",
		fallback: "Error al crear empleado",
		method:   http.MethodPost,
		path:     "/empleados/",
		token:    token,
		json:     in,
	}, &out)
	return out, err
}

func (c *API) UpdateEmployee(ctx context.Context, token string, id int64, in EmployeeInput) (Employee, error) {
	var out Employee
	err := c.do(ctx, request{
		op:       "update employee",
		fallback: "Error al actualizar empleado",
		method:   http.MethodPut,
		path:     "/empleados/" + pathID(id),
		token:    token,
		json:     in,
	}, &out)
	return out, err
}

func (c *API) ToggleEmployeeActive(ctx context.Context, token string, id int64) (Employee, error) {
	var out Employee
	err := c.do(ctx, request{
		op:       "toggle employee",
		fallback: "Error al cambiar estado del empleado",
		method:   http.MethodPost,
		path:     "/empleados/" + pathID(id) + "/toggle-active",
		token:    token,
	}, &out)
	return out, err
}
