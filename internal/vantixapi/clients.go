package vantixapi

import (
	"context"
	"net/http"
	"net/url"
)

type ClientFilter struct {
	ListParams
	EmployeeID int64
}

func (c *API) ListClients(ctx context.Context, token string, f ClientFilter) ([]Client, error) {
	q := url.Values{}
	f.apply(q)
	setID(q, "id_empleado", f.EmployeeID)
	var out []Client
	err := c.do(ctx, request{
		op:       "list clients",
		fallback: "Error al obtener clientes",
		method:   http.MethodGet,
		path:     "/cartera/",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}

func (c *API) CreateClient(ctx context.Context, token string, in ClientInput) (Client, error) {
	var out Client
	err := c.do(ctx, request{
		op:       "create client",
		fallback: "Error al crear cliente",
		method:   http.MethodPost,
		path:     "/cartera/",
		token:    token,
		json:     in,
	}, &out)
	return out, err
}

func (c *API) UpdateClient(ctx context.Context, token string, id int64, in ClientInput) (Client, error) {
	var out Client
	err := c.do(ctx, request{
		op:       "update client",
		fallback: "Error al actualizar cliente",
		method:   http.MethodPut,
		path:     "/cartera/" + pathID(id),
		token:    token,
		json:     in,
	}, &out)
	return out, err
}

// ImportClients uploads a spreadsheet of clients for bulk insertion.
func (c *API) ImportClients(ctx context.Context, token string, file *FilePart) (ImportResult, error) {
	var out ImportResult
	upload := *file
	upload.Field = "file"
	err := c.do(ctx, request{
		op:       "import clients",
		fallback: "Error en la importación masiva",
		method:   http.MethodPost,
		path:     "/cartera/importar-masivo/",
		token:    token,
		files:    []*FilePart{&upload},
	}, &out)
	return out, err
}
