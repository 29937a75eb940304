package vantixapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Date is a calendar date as the backend sends it ("2024-01-08"). Datetime
// strings are accepted and truncated to their date.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return Date{t}, nil
	}
	if t, err := parseTimestamp(raw); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("invalid date %q", raw)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Timestamp is a backend datetime. FastAPI omits the zone for naive columns.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := parseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = Timestamp{parsed}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func parseTimestamp(raw string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

type Employee struct {
	ID       int64  `json:"id_empleado"`
	FullName string `json:"nombre_completo"`
	DNI      string `json:"dni"`
	Role     string `json:"cargo"`
	Email    string `json:"email_corporativo"`
	Active   bool   `json:"activo"`
	IsAdmin  bool   `json:"is_admin"`
	HiredOn  Date   `json:"fecha_ingreso"`
}

// EmployeeInput is the create/update payload. An empty Password is omitted,
// which on update means "keep the current one".
type EmployeeInput struct {
	FullName string `json:"nombre_completo"`
	DNI      string `json:"dni"`
	Role     string `json:"cargo,omitempty"`
	Email    string `json:"email_corporativo,omitempty"`
	Active   bool   `json:"activo"`
	IsAdmin  bool   `json:"is_admin"`
	Password string `json:"password,omitempty"`
}

type District struct {
	ID         int64  `json:"id_distrito"`
	Name       string `json:"nombre"`
	Ubigeo     string `json:"ubigeo,omitempty"`
	ProvinceID int64  `json:"id_provincia,omitempty"`
	Active     bool   `json:"activo"`
}

type Province struct {
	ID           int64  `json:"id_provincia"`
	Name         string `json:"nombre"`
	DepartmentID int64  `json:"id_departamento"`
	Active       bool   `json:"activo"`
}

type Department struct {
	ID     int64  `json:"id_departamento"`
	Name   string `json:"nombre"`
	Active bool   `json:"activo"`
}

// Client categories accepted by the backend.
const (
	CategoryCorporate  = "Corporativo"
	CategoryGovernment = "Gobierno"
	CategoryRetail     = "Retail"
)

type Client struct {
	Contacts

	ID          int64     `json:"id_cliente"`
	Name        string    `json:"nombre_cliente"`
	RUC         string    `json:"ruc_dni"`
	Category    string    `json:"categoria"`
	Address     string    `json:"direccion"`
	DistrictID  int64     `json:"id_distrito"`
	EmployeeID  int64     `json:"id_empleado"`
	Notes       string    `json:"observaciones"`
	Active      bool      `json:"activo"`
	LastVisitAt Timestamp `json:"fecha_ultima_visita"`
	District    *District `json:"distrito,omitempty"`
}

// Contacts are the three people the backend tracks per client.
type Contacts struct {
	ContactName    string `json:"nombre_contacto,omitempty"`
	ContactPhone   string `json:"celular_contacto,omitempty"`
	ContactEmail   string `json:"email_contacto,omitempty"`
	ManagerName    string `json:"nombre_gerente,omitempty"`
	ManagerPhone   string `json:"celular_gerente,omitempty"`
	ManagerEmail   string `json:"email_gerente,omitempty"`
	LogisticsName  string `json:"nombre_logistico,omitempty"`
	LogisticsPhone string `json:"celular_logistico,omitempty"`
	LogisticsEmail string `json:"email_logistico,omitempty"`
}

type ClientInput struct {
	Contacts

	Name       string `json:"nombre_cliente"`
	RUC        string `json:"ruc_dni,omitempty"`
	Category   string `json:"categoria,omitempty"`
	Address    string `json:"direccion,omitempty"`
	DistrictID int64  `json:"id_distrito,omitempty"`
	EmployeeID int64  `json:"id_empleado,omitempty"`
	Notes      string `json:"observaciones,omitempty"`
	Active     bool   `json:"activo"`
}

type ImportResult struct {
	Inserted int `json:"registros_insertados"`
	Skipped  int `json:"registros_omitidos_o_duplicados"`
}

// Plan statuses.
const (
	PlanDraft     = "Borrador"
	PlanSubmitted = "Enviado"
	PlanApproved  = "Aprobado"
	PlanClosed    = "Cerrado"
	PlanRejected  = "Rechazado"
)

// Activity types used in a plan agenda.
const (
	ActivityVisit         = "Visita"
	ActivityAssistedVisit = "Visita asistida"
	ActivityCall          = "Llamada"
	ActivityEmail         = "Correo"
)

type Activity struct {
	ID       int64      `json:"id_detalle,omitempty"`
	Type     string     `json:"tipo_actividad"`
	Date     Date       `json:"fecha_programada"`
	Weekday  string     `json:"dia_semana,omitempty"`
	Time     string     `json:"hora_programada,omitempty"`
	ClientID int64      `json:"id_cliente,omitempty"`
	Client   *ClientRef `json:"cliente,omitempty"`
	Notes    string     `json:"notas,omitempty"`
}

// ClientRef is the slim client object nested in other resources.
type ClientRef struct {
	ID   int64  `json:"id_cliente,omitempty"`
	Name string `json:"nombre_cliente"`
	RUC  string `json:"ruc_dni,omitempty"`
}

func (a Activity) ClientName() string {
	if a.Client == nil {
		return ""
	}
	return a.Client.Name
}

type Plan struct {
	ID              int64           `json:"id_plan"`
	EmployeeID      int64           `json:"id_empleado"`
	WeekStart       Date            `json:"fecha_inicio_semana"`
	WeekEnd         Date            `json:"fecha_fin_semana"`
	Status          string          `json:"estado"`
	ExpectedSales   decimal.Decimal `json:"venta_esperada"`
	PlannedVisits   int             `json:"total_visitas_programadas"`
	CallsMade       int             `json:"total_llamadas_realizadas"`
	EmailsSent      int             `json:"total_emails_enviados"`
	SupervisorNotes string          `json:"observaciones_supervisor"`
	Employee        *Employee       `json:"empleado,omitempty"`
	Agenda          []Activity      `json:"detalles_agenda"`
}

func (p Plan) EmployeeName() string {
	if p.Employee == nil {
		return ""
	}
	return p.Employee.FullName
}

type PlanInput struct {
	WeekStart          Date            `json:"fecha_inicio_semana"`
	WeekEnd            Date            `json:"fecha_fin_semana"`
	ExpectedSales      decimal.Decimal `json:"venta_esperada"`
	GoalVisits         int             `json:"meta_visitas"`
	GoalAssistedVisits int             `json:"meta_visitas_asistidas"`
	GoalCalls          int             `json:"meta_llamadas"`
	GoalEmails         int             `json:"meta_emails"`
	Agenda             []Activity      `json:"detalles_agenda"`
}

// PlanUpdate changes a plan's status, optionally with supervisor notes.
type PlanUpdate struct {
	Status          string `json:"estado,omitempty"`
	SupervisorNotes string `json:"observaciones_supervisor,omitempty"`
}

// Visit results.
const (
	ResultInterested    = "Cliente interesado"
	ResultEvaluating    = "En evaluación"
	ResultSold          = "Venta cerrada"
	ResultNotInterested = "No interesado"
)

var VisitResults = []string{ResultInterested, ResultEvaluating, ResultSold, ResultNotInterested}

type Visit struct {
	ID          int64      `json:"id_visita"`
	PlanID      int64      `json:"id_plan"`
	ClientID    int64      `json:"id_cliente"`
	Result      string     `json:"resultado"`
	Notes       string     `json:"observaciones"`
	PlacePhoto  string     `json:"url_foto_lugar"`
	SealPhoto   string     `json:"url_foto_sello"`
	Latitude    *float64   `json:"geolocalizacion_lat"`
	Longitude   *float64   `json:"geolocalizacion_lon"`
	CheckedInAt Timestamp  `json:"fecha_hora_checkin"`
	Client      *ClientRef `json:"cliente,omitempty"`
}

func (v Visit) ClientName() string {
	if v.Client == nil {
		return ""
	}
	return v.Client.Name
}

func (v Visit) HasLocation() bool { return v.Latitude != nil && v.Longitude != nil }

// VisitInput is always sent as multipart; both photos are required by the backend.
type VisitInput struct {
	PlanID     int64
	ClientID   int64
	Result     string
	Notes      string
	Latitude   *float64
	Longitude  *float64
	PlacePhoto *FilePart
	SealPhoto  *FilePart
}

type Call struct {
	ID           int64     `json:"id_llamada"`
	PlanID       int64     `json:"id_plan"`
	Number       string    `json:"numero_destino"`
	Recipient    string    `json:"nombre_destinatario"`
	DurationSecs int       `json:"duracion_segundos"`
	Result       string    `json:"resultado"`
	Notes        string    `json:"notas_llamada"`
	ProofPhoto   string    `json:"url_foto_prueba"`
	At           Timestamp `json:"fecha_hora"`
}

type CallInput struct {
	PlanID       int64
	Number       string
	Recipient    string
	DurationSecs int
	Result       string
	Notes        string
	Proof        *FilePart
}

type Email struct {
	ID         int64     `json:"id_email"`
	PlanID     int64     `json:"id_plan"`
	To         string    `json:"email_destino"`
	Subject    string    `json:"asunto"`
	Status     string    `json:"estado_envio"`
	ProofPhoto string    `json:"url_foto_prueba"`
	At         Timestamp `json:"fecha_hora"`
}

type EmailInput struct {
	PlanID  int64
	To      string
	Subject string
	Status  string
	Proof   *FilePart
}

type KPIReport struct {
	ID              int64           `json:"id_informe"`
	PlanID          int64           `json:"id_plan"`
	SalesAmount     decimal.Decimal `json:"monto_ventas_real"`
	NewClients      int             `json:"cant_clientes_nuevos"`
	VisitsDone      int             `json:"cant_visitas_realizadas"`
	SalesPoints     int             `json:"puntos_ventas"`
	NewClientPoints int             `json:"puntos_nuevos_clientes"`
	VisitPoints     int             `json:"puntos_visitas"`
	CallPoints      int             `json:"puntos_llamadas"`
	EmailPoints     int             `json:"puntos_emails"`
	WeeklyScore     int             `json:"puntaje_total_semanal"`
	EvaluatedOn     Date            `json:"fecha_evaluacion"`
}

type Incentive struct {
	ID          int64           `json:"id_incentivo"`
	EmployeeID  int64           `json:"id_empleado"`
	Amount      decimal.Decimal `json:"monto_bono"`
	Concept     string          `json:"concepto"`
	Status      string          `json:"estado_pago"`
	GeneratedOn Date            `json:"fecha_generacion"`
}

func (i Incentive) Paid() bool { return strings.EqualFold(i.Status, "Pagado") }

type Expense struct {
	ID          int64           `json:"id_gasto"`
	PlanID      int64           `json:"id_plan"`
	ClientID    int64           `json:"id_ciente"`
	Date        Date            `json:"fecha_gasto"`
	Origin      string          `json:"lugar_origen"`
	Destination string          `json:"lugar_destino"`
	Institution string          `json:"institucion_visitada"`
	Reason      string          `json:"motivo_visita"`
	Amount      decimal.Decimal `json:"monto_gastado"`
}

type ExpenseInput struct {
	PlanID      int64           `json:"id_plan"`
	ClientID    int64           `json:"id_ciente,omitempty"`
	Date        Date            `json:"fecha_gasto"`
	Origin      string          `json:"lugar_origen"`
	Destination string          `json:"lugar_destino"`
	Institution string          `json:"institucion_visitada"`
	Reason      string          `json:"motivo_visita"`
	Amount      decimal.Decimal `json:"monto_gastado"`
}

type ExpenseTotal struct {
	PlanID int64           `json:"id_plan"`
	Total  decimal.Decimal `json:"total_gastado"`
}

// QuoteLine is one product line of a quotation pulled from the external sales system.
type QuoteLine struct {
	Number         int64           `json:"numero_cotizacion"`
	Date           Date            `json:"fecha"`
	ClientName     string          `json:"nombre_cliente"`
	Product        string          `json:"producto"`
	Brand          string          `json:"marca"`
	Quantity       int             `json:"cantidad"`
	LineTotal      decimal.Decimal `json:"total_linea"`
	UnitPrice      decimal.Decimal `json:"precio_unitario_real"`
	CurrencySymbol string          `json:"moneda_simbolo"`
	CreatedAt      Timestamp       `json:"creado"`
}
