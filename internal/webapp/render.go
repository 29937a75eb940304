package webapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vantix/vantix/internal/forms"
	"github.com/vantix/vantix/internal/logging"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

const (
	maxMultipartMemory = 32 << 20
	maxMultipartBody   = 3*forms.MaxUpload + 1<<20
)

type navItem struct {
	Label  string
	Path   string
	Admin  bool
	Active bool
}

var navItems = []navItem{
	{Label: "Dashboard", Path: "/"},
	{Label: "Empleados", Path: "/empleados", Admin: true},
	{Label: "Cartera Clientes", Path: "/cartera"},
	{Label: "Planes Semanales", Path: "/planes"},
	{Label: "Registro Visitas", Path: "/visitas"},
	{Label: "CRM / Llamadas", Path: "/crm"},
	{Label: "Rendimiento (KPI)", Path: "/kpi"},
	{Label: "Gastos de Movilidad", Path: "/finanzas"},
	{Label: "Cotizaciones", Path: "/cotizaciones"},
}

// modalView is the dialog a page renders open, with what the user typed.
type modalView struct {
	Name   string
	Draft  any
	Error  string
	Fields map[string]string
}

func (m *modalView) Field(name string) string {
	if m == nil {
		return ""
	}
	return m.Fields[name]
}

func openModal[D any](name string, m *forms.Modal[D]) *modalView {
	if m == nil || !m.IsOpen() {
		return nil
	}
	return &modalView{Name: name, Draft: *m.Draft(), Error: m.Error, Fields: m.Fields}
}

// pagerView links to neighbouring pages while keeping the other filters.
type pagerView struct {
	Page, Pages, Total int
	PrevURL, NextURL   string
}

func newPager[T any](r *http.Request, p views.Page[T]) *pagerView {
	link := func(n int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(n))
		return r.URL.Path + "?" + q.Encode()
	}
	pv := &pagerView{Page: p.Page, Pages: p.Pages, Total: p.Total}
	if p.HasPrev {
		pv.PrevURL = link(p.PrevPage)
	}
	if p.HasNext {
		pv.NextURL = link(p.NextPage)
	}
	return pv
}

type dashboardView struct {
	ActiveEmployees int
	TotalClients    int
	TotalVisits     int
	MonthActivities int
	MeanScore       float64
	VisitStats      views.VisitStats
	PlanCounts      map[string]int
	CurrentPlan     *vantixapi.Plan
	Feed            []views.FeedItem
	Unavailable     []string
}

type visitRow struct {
	vantixapi.Visit
	Companion string
	NotesText string
	Assisted  bool
}

type pageData struct {
	Title          string
	Nav            []navItem
	Error          string
	SuccessMessage string
	CSRF           string
	User           vantixapi.Employee
	IsAdmin        bool
	Search         string
	Tab            string
	Today          string
	MediaOrigin    string

	ViewedEmployeeID int64
	PickerEmployees  []vantixapi.Employee

	Dashboard *dashboardView

	EmployeePage   views.Page[vantixapi.Employee]
	EmployeeStatus string

	ClientPage  views.Page[vantixapi.Client]
	Category    string
	Categories  []string
	Clients     []vantixapi.Client
	Departments []vantixapi.Department

	Plans          []vantixapi.Plan
	Plan           *vantixapi.Plan
	SelectedPlanID int64
	Groups         []views.Group[vantixapi.Activity]
	ActivityTypes  []string

	Visits       []visitRow
	VisitGroups  []views.Group[visitRow]
	VisitStats   views.VisitStats
	VisitResults []string

	Calls  []vantixapi.Call
	Emails []vantixapi.Email

	Reports    []vantixapi.KPIReport
	Report     *vantixapi.KPIReport
	Incentives []vantixapi.Incentive
	MeanScore  float64
	Pending    decimal.Decimal

	Expenses     []vantixapi.Expense
	ExpenseTotal decimal.Decimal

	Quotes      []vantixapi.QuoteLine
	QuotesTotal decimal.Decimal

	Pager *pagerView
	Modal *modalView
}

var templateFuncs = template.FuncMap{
	"money":    views.Money,
	"duration": views.Duration,
	"week":     func(p vantixapi.Plan) string { return views.WeekLabel(p.WeekStart.Time, p.WeekEnd.Time) },
	"when":     views.DateTimeLabel,
	"pct":      views.RoundPct,
	"isoDate":  func(d vantixapi.Date) string { return d.String() },
	"count":    func(m map[string]int, key string) int { return m[key] },
	"id":       idString,
	"media":    mediaURL,
	"date": func(d vantixapi.Date) string {
		if d.IsZero() {
			return "-"
		}
		return views.DateLabel(d.Time)
	},
	"datetime": func(t vantixapi.Timestamp) string {
		if t.IsZero() {
			return "-"
		}
		return views.DateTimeLabel(t.Time)
	},
	"statusClass": func(status string) string {
		return "status-" + strings.ToLower(strings.ReplaceAll(status, " ", "-"))
	},
	"coord": func(f *float64) string {
		if f == nil {
			return ""
		}
		return strconv.FormatFloat(*f, 'f', 6, 64)
	},
	"agendaRow": newAgendaRow,
	"preview": func(slot *forms.FileSlot) template.URL {
		if slot == nil || !strings.HasPrefix(slot.Preview, "data:image/jpeg;base64,") {
			return ""
		}
		return template.URL(slot.Preview)
	},
	"emailStatuses": func() []string { return forms.EmailStatuses },
	"planStatuses": func() []string {
		return []string{vantixapi.PlanDraft, vantixapi.PlanSubmitted, vantixapi.PlanApproved, vantixapi.PlanRejected, vantixapi.PlanClosed}
	},
}

// agendaRowView is one editable row of the new plan agenda. A nil activity
// renders the blank row the page script clones.
type agendaRowView struct {
	Activity forms.ActivityDraft
	Types    []string
	Clients  []vantixapi.Client
}

func newAgendaRow(data pageData, activity any) agendaRowView {
	row := agendaRowView{Types: data.ActivityTypes, Clients: data.Clients}
	if a, ok := activity.(forms.ActivityDraft); ok {
		row.Activity = a
	}
	return row
}

// mediaURL resolves an evidence path stored by the backend, such as
// static/evidencias/a1b2.jpg, against the backend origin.
func mediaURL(origin, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(path, "/")
}

func (s *server) page(r *http.Request, title string) pageData {
	data := pageData{
		Title:          title,
		Error:          r.URL.Query().Get("error"),
		SuccessMessage: r.URL.Query().Get("message"),
		Search:         strings.TrimSpace(r.URL.Query().Get("q")),
		Today:          s.now().Format("2006-01-02"),
		MediaOrigin:    backendOrigin(s.api.BaseURL()),
	}
	sess := sessionFrom(r.Context())
	if sess == nil {
		return data
	}
	data.CSRF = sess.CSRF
	data.User = sess.User
	data.IsAdmin = sess.IsAdmin()
	for _, item := range navItems {
		if item.Admin && !data.IsAdmin {
			continue
		}
		item.Active = item.Path == r.URL.Path || (item.Path != "/" && strings.HasPrefix(r.URL.Path, item.Path+"/"))
		data.Nav = append(data.Nav, item)
	}
	return data
}

func (s *server) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data pageData) {
	if err := renderHTMLTemplate(w, tmpl, data); err != nil {
		http.Error(w, "template render failed", http.StatusInternalServerError)
		logging.FromContext(r.Context()).Error("template render failed", zap.String("page", data.Title), zap.Error(err))
	}
}

func renderHTMLTemplate(w http.ResponseWriter, tmpl *template.Template, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write(buf.Bytes())
	return err
}

func queryEscape(s string) string { return url.QueryEscape(s) }

func withQuery(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + key + "=" + url.QueryEscape(value)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, withQuery(path, "error", msg), http.StatusFound)
}

func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, withQuery(path, "message", msg), http.StatusFound)
}

// refererPath returns the same-origin path the form was posted from, or "/".
func refererPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	q := ref.Query()
	q.Del("error")
	q.Del("message")
	if encoded := q.Encode(); encoded != "" {
		return ref.Path + "?" + encoded
	}
	return ref.Path
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

func parsePositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }

func pathID(r *http.Request, name string) int64 { return parseID(chi.URLParam(r, name)) }

func formID(r *http.Request, name string) int64 { return parseID(r.FormValue(name)) }

func formInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

func formDecimal(r *http.Request, name string) decimal.Decimal {
	raw := strings.TrimSpace(strings.ReplaceAll(r.FormValue(name), ",", ""))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NewFromInt(-1)
	}
	return d
}

func formDate(r *http.Request, name string) vantixapi.Date {
	d, err := vantixapi.ParseDate(r.FormValue(name))
	if err != nil {
		return vantixapi.Date{}
	}
	return d
}

func formFloat(r *http.Request, name string) *float64 {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func formBool(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(name))) {
	case "1", "on", "true", "si", "sí":
		return true
	}
	return false
}
