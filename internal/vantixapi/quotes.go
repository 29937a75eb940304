package vantixapi

import (
	"context"
	"net/http"
	"net/url"
)

// ListQuoteLines reads detailed quotations from the external sales system,
// scoped to one employee when employeeID is set.
func (c *API) ListQuoteLines(ctx context.Context, token string, employeeID int64) ([]QuoteLine, error) {
	q := url.Values{}
	setID(q, "id_empleado", employeeID)
	var out []QuoteLine
	err := c.do(ctx, request{
		op:       "list quotes",
		fallback: "Error al obtener cotizaciones",
		method:   http.MethodGet,
		path:     "/sync-externa/cotizaciones-detalladas",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}
