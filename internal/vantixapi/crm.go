package vantixapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type CRMFilter struct {
	ListParams
	EmployeeID int64
	PlanID     int64
}

func (f CRMFilter) query() url.Values {
	q := url.Values{}
	f.apply(q)
	setID(q, "id_empleado", f.EmployeeID)
	setID(q, "id_plan", f.PlanID)
	return q
}

func (c *API) ListCalls(ctx context.Context, token string, f CRMFilter) ([]Call, error) {
	var out []Call
	err := c.do(ctx, request{
		op:       "list calls",
		fallback: "Error al obtener llamadas",
		method:   http.MethodGet,
		path:     "/crm/llamadas/",
		query:    f.query(),
		token:    token,
	}, &out)
	return out, err
}

// CreateCall is JSON unless a proof screenshot is attached.
func (c *API) CreateCall(ctx context.Context, token string, in CallInput) (Call, error) {
	req := request{
		op:       "create call",
		fallback: "Error al registrar la llamada",
		method:   http.MethodPost,
		path:     "/crm/llamadas/",
		token:    token,
	}
	if in.Proof.empty() {
		req.json = struct {
			PlanID       int64  `json:"id_plan"`
			Number       string `json:"numero_destino"`
			Recipient    string `json:"nombre_destinatario,omitempty"`
			DurationSecs int    `json:"duracion_segundos"`
			Result       string `json:"resultado,omitempty"`
			Notes        string `json:"notas_llamada,omitempty"`
		}{in.PlanID, in.Number, in.Recipient, in.DurationSecs, in.Result, in.Notes}
	} else {
		proof := *in.Proof
		proof.Field = "foto_prueba"
		req.fields = map[string]string{
			"id_plan":             strconv.FormatInt(in.PlanID, 10),
			"numero_destino":      in.Number,
			"nombre_destinatario": in.Recipient,
			"duracion_segundos":   strconv.Itoa(in.DurationSecs),
			"resultado":           in.Result,
			"notas_llamada":       in.Notes,
		}
		req.files = []*FilePart{&proof}
	}
	var out Call
	err := c.do(ctx, req, &out)
	return out, err
}

func (c *API) ListEmails(ctx context.Context, token string, f CRMFilter) ([]Email, error) {
	var out []Email
	err := c.do(ctx, request{
		op:       "list emails",
		fallback: "Error al obtener correos",
		method:   http.MethodGet,
		path:     "/crm/emails/",
		query:    f.query(),
		token:    token,
	}, &out)
	return out, err
}

// CreateEmail is JSON unless a proof screenshot is attached. An empty status
// is sent as "Enviado".
func (c *API) CreateEmail(ctx context.Context, token string, in EmailInput) (Email, error) {
	status := in.Status
	if status == "" {
		status = "Enviado"
	}
	req := request{
		op:       "create email",
		fallback: "Error al registrar el correo",
		method:   http.MethodPost,
		path:     "/crm/emails/",
		token:    token,
	}
	if in.Proof.empty() {
		req.json = struct {
			PlanID  int64  `json:"id_plan"`
			To      string `json:"email_destino"`
			Subject string `json:"asunto"`
			Status  string `json:"estado_envio"`
		}{in.PlanID, in.To, in.Subject, status}
	} else {
		proof := *in.Proof
		proof.Field = "foto_prueba"
		req.fields = map[string]string{
			"id_plan":       strconv.FormatInt(in.PlanID, 10),
			"email_destino": in.To,
			"asunto":        in.Subject,
			"estado_envio":  status,
		}
		req.files = []*FilePart{&proof}
	}
	var out Email
	err := c.do(ctx, req, &out)
	return out, err
}
