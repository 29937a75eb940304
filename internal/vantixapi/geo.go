package vantixapi

import (
	"context"
	"net/http"
	"net/url"
)

func (c *API) ListDepartments(ctx context.Context, token string) ([]Department, error) {
	var out []Department
	err := c.do(ctx, request{
		op:       "list departments",
		fallback: "Error al obtener departamentos",
		method:   http.MethodGet,
		path:     "/geo/departamentos",
		token:    token,
	}, &out)
	return out, err
}

func (c *API) ListProvinces(ctx context.Context, token string, departmentID int64) ([]Province, error) {
	q := url.Values{}
	setID(q, "id_departamento", departmentID)
	var out []Province
	err := c.do(ctx, request{
		op:       "list provinces",
		fallback: "Error al obtener provincias",
		method:   http.MethodGet,
		path:     "/geo/provincias",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}

func (c *API) ListDistricts(ctx context.Context, token string, provinceID int64) ([]District, error) {
	q := url.Values{}
	setID(q, "id_provincia", provinceID)
	var out []District
	err := c.do(ctx, request{
		op:       "list districts",
		fallback: "Error al obtener distritos",
		method:   http.MethodGet,
		path:     "/geo/distritos",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}
