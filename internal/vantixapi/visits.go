package vantixapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type VisitFilter struct {
	ListParams
	EmployeeID int64
	PlanID     int64
	ClientID   int64
}

func (c *API) ListVisits(ctx context.Context, token string, f VisitFilter) ([]Visit, error) {
	q := url.Values{}
	f.apply(q)
	setID(q, "id_empleado", f.EmployeeID)
	setID(q, "id_plan", f.PlanID)
	setID(q, "id_cliente", f.ClientID)
	var out []Visit
	err := c.do(ctx, request{
		op:       "list visits",
		fallback: "Error al obtener visitas",
		method:   http.MethodGet,
		path:     "/visitas/",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}

// CreateVisit posts a check-in with its two photos as multipart.
func (c *API) CreateVisit(ctx context.Context, token string, in VisitInput) (Visit, error) {
	fields := map[string]string{
		"id_plan":       strconv.FormatInt(in.PlanID, 10),
		"id_cliente":    strconv.FormatInt(in.ClientID, 10),
		"resultado":     in.Result,
		"observaciones": in.Notes,
	}
	if in.Latitude != nil && in.Longitude != nil {
		fields["lat"] = strconv.FormatFloat(*in.Latitude, 'f', -1, 64)
		fields["lon"] = strconv.FormatFloat(*in.Longitude, 'f', -1, 64)
	}
	files := []*FilePart{}
	if in.PlacePhoto != nil {
		place := *in.PlacePhoto
		place.Field = "foto_lugar"
		files = append(files, &place)
	}
	if in.SealPhoto != nil {
		seal := *in.SealPhoto
		seal.Field = "foto_sello"
		files = append(files, &seal)
	}

	var out Visit
	err := c.do(ctx, request{
		op:       "create visit",
		fallback: "Error al registrar la visita",
		method:   http.MethodPost,
		path:     "/visitas/",
		token:    token,
		fields:   fields,
		files:    files,
	}, &out)
	return out, err
}

func (c *API) DeleteVisit(ctx context.Context, token string, id int64) error {
	return c.do(ctx, request{
		op:       "delete visit",
		fallback: "Error al eliminar la visita",
		method:   http.MethodDelete,
		path:     "/visitas/" + pathID(id),
		token:    token,
	}, nil)
}
