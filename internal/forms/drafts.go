package forms

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

// ActivityTypes are the agenda entries a plan may schedule.
var ActivityTypes = []string{
	vantixapi.ActivityVisit,
	vantixapi.ActivityAssistedVisit,
	vantixapi.ActivityCall,
	vantixapi.ActivityEmail,
}

// Plan goal defaults offered by the new-plan wizard.
const (
	DefaultGoalVisits         = 25
	DefaultGoalAssistedVisits = 5
	DefaultGoalCalls          = 30
	DefaultGoalEmails         = 100
)

type VisitDraft struct {
	PlanID     int64     `validate:"required"`
	ClientID   int64     `validate:"required"`
	Result     string    `validate:"required,visit_result"`
	Notes      string    `validate:"max=1000"`
	Assisted   bool
	Companion  string    `validate:"required_if=Assisted true"`
	Latitude   *float64  `validate:"omitempty,latitude"`
	Longitude  *float64  `validate:"omitempty,longitude"`
	PlacePhoto *FileSlot `validate:"required"`
	SealPhoto  *FileSlot `validate:"required"`
}

func NewVisitDraft() VisitDraft {
	return VisitDraft{Result: vantixapi.ResultInterested}
}

func (VisitDraft) messages() map[string]string {
	return map[string]string{
		"PlanID":     "Selecciona un plan",
		"ClientID":   "Selecciona un cliente",
		"Companion":  "Indica quién te acompañó en la visita",
		"PlacePhoto": "La foto del lugar es obligatoria",
		"SealPhoto":  "La foto del sello es obligatoria",
		"Latitude":   "Ubicación inválida",
		"Longitude":  "Ubicación inválida",
	}
}

// SetAssisted toggles the assisted flag on the modal's draft and re-checks
// the companion requirement right away.
func SetAssisted(m *Modal[VisitDraft], assisted bool) {
	d := m.Draft()
	d.Assisted = assisted
	if !assisted {
		delete(m.Fields, "Companion")
		return
	}
	if strings.TrimSpace(d.Companion) == "" {
		if m.Fields == nil {
			m.Fields = map[string]string{}
		}
		m.Fields["Companion"] = d.messages()["Companion"]
	}
}

func (d VisitDraft) Input() vantixapi.VisitInput {
	notes := strings.TrimSpace(d.Notes)
	if d.Assisted {
		notes = views.AssistedNotes(strings.TrimSpace(d.Companion), notes)
	}
	in := vantixapi.VisitInput{
		PlanID:     d.PlanID,
		ClientID:   d.ClientID,
		Result:     d.Result,
		Notes:      notes,
		Latitude:   d.Latitude,
		Longitude:  d.Longitude,
		PlacePhoto: d.PlacePhoto.part(),
		SealPhoto:  d.SealPhoto.part(),
	}
	return in
}

type VisitCreator interface {
	CreateVisit(ctx context.Context, token string, in vantixapi.VisitInput) (vantixapi.Visit, error)
}

func SaveVisit(api VisitCreator, token string) func(context.Context, VisitDraft) error {
	return func(ctx context.Context, d VisitDraft) error {
		_, err := api.CreateVisit(ctx, token, d.Input())
		return err
	}
}

type EmployeeDraft struct {
	ID       int64
	FullName string `validate:"required,max=120"`
	DNI      string `validate:"required,numeric,min=8,max=12"`
	Role     string `validate:"max=60"`
	Email    string `validate:"omitempty,email"`
	Active   bool
	IsAdmin  bool
	Password string `validate:"required_without=ID,omitempty,min=6"`
}

func NewEmployeeDraft() EmployeeDraft { return EmployeeDraft{Active: true} }

// EmployeeDraftFrom starts an edit with the password left blank.
func EmployeeDraftFrom(e vantixapi.Employee) EmployeeDraft {
	return EmployeeDraft{
		ID:       e.ID,
		FullName: e.FullName,
		DNI:      e.DNI,
		Role:     e.Role,
		Email:    e.Email,
		Active:   e.Active,
		IsAdmin:  e.IsAdmin,
	}
}

func (EmployeeDraft) messages() map[string]string {
	return map[string]string{
		"FullName":                  "El nombre es obligatorio",
		"DNI":                       "Ingresa un DNI válido",
		"Password.required_without": "La contraseña es obligatoria para un nuevo empleado",
		"Password.min":              "La contraseña debe tener al menos 6 caracteres",
	}
}

// Input leaves Password empty on edits with a blank field so it is omitted.
func (d EmployeeDraft) Input() vantixapi.EmployeeInput {
	return vantixapi.EmployeeInput{
		FullName: strings.TrimSpace(d.FullName),
		DNI:      strings.TrimSpace(d.DNI),
		Role:     strings.TrimSpace(d.Role),
		Email:    strings.TrimSpace(d.Email),
		Active:   d.Active,
		IsAdmin:  d.IsAdmin,
		Password: d.Password,
	}
}

type EmployeeWriter interface {
	CreateEmployee(ctx context.Context, token string, in vantixapi.EmployeeInput) (vantixapi.Employee, error)
	UpdateEmployee(ctx context.Context, token string, id int64, in vantixapi.EmployeeInput) (vantixapi.Employee, error)
}

func SaveEmployee(api EmployeeWriter, token string) func(context.Context, EmployeeDraft) error {
	return func(ctx context.Context, d EmployeeDraft) error {
		var err error
		if d.ID == 0 {
			_, err = api.CreateEmployee(ctx, token, d.Input())
		} else {
			_, err = api.UpdateEmployee(ctx, token, d.ID, d.Input())
		}
		return err
	}
}

// ActivityDraft is one agenda row of the plan wizard.
type ActivityDraft struct {
	Type     string `validate:"required,activity_type"`
	Date     vantixapi.Date
	Time     string `validate:"omitempty,clock"`
	ClientID int64
	Notes    string `validate:"max=500"`
}

type PlanDraft struct {
	EmployeeID         int64           `validate:"required"`
	WeekStart          vantixapi.Date  `validate:"required,monday"`
	ExpectedSales      decimal.Decimal `validate:"gte=0"`
	GoalVisits         int             `validate:"gte=0"`
	GoalAssistedVisits int             `validate:"gte=0"`
	GoalCalls          int             `validate:"gte=0"`
	GoalEmails         int             `validate:"gte=0"`
	Agenda             []ActivityDraft `validate:"dive"`
}

// NewPlanDraft proposes the week that contains today.
func NewPlanDraft(employeeID int64, today time.Time) PlanDraft {
	return PlanDraft{
		EmployeeID:         employeeID,
		WeekStart:          vantixapi.DateOf(views.MondayOf(today)),
		GoalVisits:         DefaultGoalVisits,
		GoalAssistedVisits: DefaultGoalAssistedVisits,
		GoalCalls:          DefaultGoalCalls,
		GoalEmails:         DefaultGoalEmails,
	}
}

func (PlanDraft) messages() map[string]string {
	return map[string]string{
		"EmployeeID": "Selecciona un empleado",
		"WeekStart":  "La semana debe empezar un lunes",
		"Agenda":     "Revisa las actividades de la agenda",
	}
}

func (d PlanDraft) WeekEnd() vantixapi.Date {
	return vantixapi.DateOf(views.WeekEnd(d.WeekStart.Time))
}

// Input fills each activity's weekday label and drops rows dated outside the week.
func (d PlanDraft) Input() vantixapi.PlanInput {
	in := vantixapi.PlanInput{
		WeekStart:          d.WeekStart,
		WeekEnd:            d.WeekEnd(),
		ExpectedSales:      d.ExpectedSales,
		GoalVisits:         d.GoalVisits,
		GoalAssistedVisits: d.GoalAssistedVisits,
		GoalCalls:          d.GoalCalls,
		GoalEmails:         d.GoalEmails,
		Agenda:             []vantixapi.Activity{},
	}
	week := vantixapi.Plan{WeekStart: in.WeekStart, WeekEnd: in.WeekEnd}
	for _, a := range d.Agenda {
		date := a.Date
		if date.IsZero() {
			date = d.WeekStart
		}
		if !views.InWeek(week, date.Time) {
			continue
		}
		in.Agenda = append(in.Agenda, vantixapi.Activity{
			Type:     a.Type,
			Date:     date,
			Weekday:  views.WeekdayName(date.Time),
			Time:     a.Time,
			ClientID: a.ClientID,
			Notes:    strings.TrimSpace(a.Notes),
		})
	}
	return in
}

// PlanReview is the supervisor's decision on a submitted plan.
type PlanReview struct {
	PlanID   int64  `validate:"required"`
	Decision string `validate:"required,oneof=Aprobado Rechazado"`
	Notes    string `validate:"required_if=Decision Rechazado,max=1000"`
}

func (PlanReview) messages() map[string]string {
	return map[string]string{
		"Decision":          "Selecciona aprobar o rechazar",
		"Notes.required_if": "Indica el motivo del rechazo",
	}
}

type PlanReviewer interface {
	ReviewPlan(ctx context.Context, token string, id int64, status, notes string) (vantixapi.Plan, error)
}

func SaveReview(api PlanReviewer, token string) func(context.Context, PlanReview) error {
	return func(ctx context.Context, r PlanReview) error {
		_, err := api.ReviewPlan(ctx, token, r.PlanID, r.Decision, strings.TrimSpace(r.Notes))
		return err
	}
}

type CallDraft struct {
	PlanID       int64  `validate:"required"`
	Number       string `validate:"required,max=20"`
	Recipient    string `validate:"max=120"`
	DurationSecs int    `validate:"gte=0"`
	Result       string `validate:"max=60"`
	Notes        string `validate:"max=1000"`
	Proof        *FileSlot
}

func (CallDraft) messages() map[string]string {
	return map[string]string{
		"PlanID": "Selecciona un plan",
		"Number": "Ingresa el número de destino",
	}
}

func (d CallDraft) Input() vantixapi.CallInput {
	return vantixapi.CallInput{
		PlanID:       d.PlanID,
		Number:       strings.TrimSpace(d.Number),
		Recipient:    strings.TrimSpace(d.Recipient),
		DurationSecs: d.DurationSecs,
		Result:       d.Result,
		Notes:        strings.TrimSpace(d.Notes),
		Proof:        d.Proof.part(),
	}
}

// EmailStatuses are the send states a logged email can carry.
var EmailStatuses = []string{"Borrador", "Enviado", "No enviado"}

type EmailDraft struct {
	PlanID  int64  `validate:"required"`
	To      string `validate:"required,email"`
	Subject string `validate:"max=200"`
	Status  string `validate:"omitempty,oneof=Borrador Enviado 'No enviado'"`
	Proof   *FileSlot
}

func (EmailDraft) messages() map[string]string {
	return map[string]string{
		"PlanID": "Selecciona un plan",
		"To":     "Ingresa un correo de destino válido",
		"Status": "Estado de envío no válido",
	}
}

func (d EmailDraft) Input() vantixapi.EmailInput {
	return vantixapi.EmailInput{
		PlanID:  d.PlanID,
		To:      strings.TrimSpace(d.To),
		Subject: strings.TrimSpace(d.Subject),
		Status:  d.Status,
		Proof:   d.Proof.part(),
	}
}

type CRMWriter interface {
	CreateCall(ctx context.Context, token string, in vantixapi.CallInput) (vantixapi.Call, error)
	CreateEmail(ctx context.Context, token string, in vantixapi.EmailInput) (vantixapi.Email, error)
}

func SaveCall(api CRMWriter, token string) func(context.Context, CallDraft) error {
	return func(ctx context.Context, d CallDraft) error {
		_, err := api.CreateCall(ctx, token, d.Input())
		return err
	}
}

func SaveEmail(api CRMWriter, token string) func(context.Context, EmailDraft) error {
	return func(ctx context.Context, d EmailDraft) error {
		_, err := api.CreateEmail(ctx, token, d.Input())
		return err
	}
}

type ExpenseDraft struct {
	ID          int64
	PlanID      int64           `validate:"required"`
	ClientID    int64
	Date        vantixapi.Date  `validate:"required"`
	Origin      string          `validate:"max=120"`
	Destination string          `validate:"max=120"`
	Institution string          `validate:"max=120"`
	Reason      string          `validate:"max=500"`
	Amount      decimal.Decimal `validate:"gte=0"`
}

func (ExpenseDraft) messages() map[string]string {
	return map[string]string{
		"PlanID": "Selecciona un plan",
		"Date":   "Ingresa la fecha del gasto",
		"Amount": "El monto no puede ser negativo",
	}
}

func (d ExpenseDraft) Input() vantixapi.ExpenseInput {
	return vantixapi.ExpenseInput{
		PlanID:      d.PlanID,
		ClientID:    d.ClientID,
		Date:        d.Date,
		Origin:      strings.TrimSpace(d.Origin),
		Destination: strings.TrimSpace(d.Destination),
		Institution: strings.TrimSpace(d.Institution),
		Reason:      strings.TrimSpace(d.Reason),
		Amount:      d.Amount,
	}
}

type ExpenseWriter interface {
	CreateExpense(ctx context.Context, token string, in vantixapi.ExpenseInput) (vantixapi.Expense, error)
	UpdateExpense(ctx context.Context, token string, id int64, in vantixapi.ExpenseInput) (vantixapi.Expense, error)
}

func SaveExpense(api ExpenseWriter, token string) func(context.Context, ExpenseDraft) error {
	return func(ctx context.Context, d ExpenseDraft) error {
		var err error
		if d.ID == 0 {
			_, err = api.CreateExpense(ctx, token, d.Input())
		} else {
			_, err = api.UpdateExpense(ctx, token, d.ID, d.Input())
		}
		return err
	}
}

type ClientDraft struct {
	vantixapi.Contacts

	ID         int64
	Name       string `validate:"required,max=200"`
	RUC        string `validate:"max=20"`
	Category   string `validate:"omitempty,oneof=Corporativo Gobierno Retail"`
	Address    string `validate:"max=250"`
	DistrictID int64
	EmployeeID int64
	Notes      string `validate:"max=1000"`
	Active     bool
}

func NewClientDraft() ClientDraft { return ClientDraft{Active: true} }

func ClientDraftFrom(c vantixapi.Client) ClientDraft {
	return ClientDraft{
		Contacts:   c.Contacts,
		ID:         c.ID,
		Name:       c.Name,
		RUC:        c.RUC,
		Category:   c.Category,
		Address:    c.Address,
		DistrictID: c.DistrictID,
		EmployeeID: c.EmployeeID,
		Notes:      c.Notes,
		Active:     c.Active,
	}
}

func (ClientDraft) messages() map[string]string {
	return map[string]string{
		"Name": "El nombre del cliente es obligatorio",
		"RUC":  "El RUC/DNI no puede superar 20 caracteres",
	}
}

func (d ClientDraft) Input() vantixapi.ClientInput {
	return vantixapi.ClientInput{
		Contacts:   d.Contacts,
		Name:       strings.TrimSpace(d.Name),
		RUC:        strings.TrimSpace(d.RUC),
		Category:   d.Category,
		Address:    strings.TrimSpace(d.Address),
		DistrictID: d.DistrictID,
		EmployeeID: d.EmployeeID,
		Notes:      strings.TrimSpace(d.Notes),
		Active:     d.Active,
	}
}

type ClientWriter interface {
	CreateClient(ctx context.Context, token string, in vantixapi.ClientInput) (vantixapi.Client, error)
	UpdateClient(ctx context.Context, token string, id int64, in vantixapi.ClientInput) (vantixapi.Client, error)
}

func SaveClient(api ClientWriter, token string) func(context.Context, ClientDraft) error {
	return func(ctx context.Context, d ClientDraft) error {
		var err error
		if d.ID == 0 {
			_, err = api.CreateClient(ctx, token, d.Input())
		} else {
			_, err = api.UpdateClient(ctx, token, d.ID, d.Input())
		}
		return err
	}
}
