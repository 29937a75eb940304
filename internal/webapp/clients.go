package webapp

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vantix/vantix/internal/forms"
	"github.com/vantix/vantix/internal/screens"
	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/spreadsheet"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

const (
	pickerLimit  = 10
	pickerMaxAge = time.Minute
)

var clientCategories = []string{vantixapi.CategoryCorporate, vantixapi.CategoryGovernment, vantixapi.CategoryRetail}

func (s *server) loadClients(ctx context.Context, sess *session.Session, employeeID int64) screens.Snapshot[vantixapi.Client] {
	list := session.ListFor[vantixapi.Client](sess.Views(), "clients")
	return list.Load(ctx, "clients", func(ctx context.Context) ([]vantixapi.Client, error) {
		return s.api.ListClients(ctx, sess.Token, vantixapi.ClientFilter{ListParams: vantixapi.ListParams{Limit: 500}, EmployeeID: employeeID})
	})
}

// clientScope is whose portfolio is listed: admins see everyone unless they
// picked an employee.
func (s *server) clientScope(r *http.Request) int64 {
	sess := sessionFrom(r.Context())
	employeeID := s.viewedEmployee(r)
	if sess.IsAdmin() && employeeID == sess.User.ID {
		return 0
	}
	return employeeID
}

func (s *server) clientsPage(w http.ResponseWriter, r *http.Request) {
	var modal *forms.Modal[forms.ClientDraft]
	q := r.URL.Query()
	if q.Get("modal") == "nuevo" || parseID(q.Get("editar")) > 0 {
		modal = forms.NewModal(forms.NewClientDraft)
	}
	s.renderClients(w, r, modal)
}

func (s *server) renderClients(w http.ResponseWriter, r *http.Request, modal *forms.Modal[forms.ClientDraft]) {
	sess := sessionFrom(r.Context())
	data := s.page(r, "Cartera de clientes")
	data.Categories = clientCategories
	scopeID := s.clientScope(r)
	data.ViewedEmployeeID = scopeID

	pickers, err := s.pickerEmployees(r.Context(), sess)
	if s.expireSession(w, r, err) {
		return
	}
	data.PickerEmployees = pickers

	snap := s.loadClients(r.Context(), sess, scopeID)
	if s.expireSession(w, r, snap.Err) {
		return
	}
	if snap.Err != nil && data.Error == "" {
		data.Error = vantixapi.Message(snap.Err, "Error al obtener clientes")
	}

	if modal != nil {
		loadDepartments := func(ctx context.Context) error {
			departments, err := screens.Secondary(ctx, "departments", func(ctx context.Context) ([]vantixapi.Department, error) {
				return s.api.ListDepartments(ctx, sess.Token)
			})
			data.Departments = departments
			return err
		}
		if modal.IsOpen() {
			err = loadDepartments(r.Context())
		} else {
			err = modal.Open(r.Context(), loadDepartments)
			if editID := parseID(r.URL.Query().Get("editar")); editID > 0 {
				for _, c := range snap.Items {
					if c.ID == editID {
						*modal.Draft() = forms.ClientDraftFrom(c)
					}
				}
			} else if scopeID > 0 {
				modal.Draft().EmployeeID = scopeID
			}
		}
		if s.expireSession(w, r, err) {
			return
		}
	}

	data.Category = r.URL.Query().Get("categoria")
	filtered := views.FilterClientsByCategory(views.SearchClients(snap.Items, data.Search), data.Category)
	data.ClientPage = views.Paginate(filtered, parsePositiveInt(r.URL.Query().Get("page"), 1), 25)
	data.Pager = newPager(r, data.ClientPage)
	data.Modal = openModal("client", modal)
	s.render(w, r, s.clientsTmpl, data)
}

func clientDraftFromForm(r *http.Request) forms.ClientDraft {
	return forms.ClientDraft{
		Contacts: vantixapi.Contacts{
			ContactName:    r.FormValue("nombre_contacto"),
			ContactPhone:   r.FormValue("celular_contacto"),
			ContactEmail:   r.FormValue("email_contacto"),
			ManagerName:    r.FormValue("nombre_gerente"),
			ManagerPhone:   r.FormValue("celular_gerente"),
			ManagerEmail:   r.FormValue("email_gerente"),
			LogisticsName:  r.FormValue("nombre_logistico"),
			LogisticsPhone: r.FormValue("celular_logistico"),
			LogisticsEmail: r.FormValue("email_logistico"),
		},
		ID:         formID(r, "id_cliente"),
		Name:       r.FormValue("nombre_cliente"),
		RUC:        r.FormValue("ruc_dni"),
		Category:   r.FormValue("categoria"),
		Address:    r.FormValue("direccion"),
		DistrictID: formID(r, "id_distrito"),
		EmployeeID: formID(r, "id_empleado"),
		Notes:      r.FormValue("observaciones"),
		Active:     formBool(r, "activo"),
	}
}

func (s *server) saveClient(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	modal := forms.NewModal(forms.NewClientDraft)
	_ = modal.Open(r.Context())
	draft := clientDraftFromForm(r)
	if !sess.IsAdmin() {
		draft.EmployeeID = sess.User.ID
	}
	*modal.Draft() = draft

	err := modal.Submit(r.Context(), forms.SaveClient(s.api, sess.Token), nil)
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		s.renderClients(w, r, modal)
		return
	}
	msg := "Cliente registrado"
	if draft.ID > 0 {
		msg = "Cliente actualizado"
	}
	redirectWithMessage(w, r, "/cartera", msg)
}

// importClients checks the file locally before handing it to the backend's
// bulk import.
func (s *server) importClients(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	name, data, err := forms.ReadFormFile(r, "file")
	if err != nil {
		redirectWithError(w, r, "/cartera", "No se pudo leer el archivo")
		return
	}
	if len(data) == 0 {
		redirectWithError(w, r, "/cartera", "Selecciona un archivo Excel o CSV")
		return
	}
	rows, err := spreadsheet.ReadRows(bytes.NewReader(data), name)
	if err != nil {
		redirectWithError(w, r, "/cartera", "Archivo inválido: "+err.Error())
		return
	}
	preview, err := spreadsheet.PreviewClientImport(rows)
	if err != nil {
		redirectWithError(w, r, "/cartera", err.Error())
		return
	}

	result, err := s.api.ImportClients(r.Context(), sess.Token, &vantixapi.FilePart{
		Filename: name,
		Data:     data,
	})
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		redirectWithError(w, r, "/cartera", vantixapi.Message(err, "Error en la importación masiva"))
		return
	}
	msg := fmt.Sprintf("Importación completa: %d clientes nuevos, %d omitidos o duplicados", result.Inserted, result.Skipped)
	if preview.MissingName > 0 {
		msg += fmt.Sprintf(" (%d filas sin nombre)", preview.MissingName)
	}
	redirectWithMessage(w, r, "/cartera", msg)
}

type clientOption struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
	RUC  string `json:"ruc"`
}

// searchClientsJSON backs the client typeahead. Each portfolio scope has its
// own list, fetched at most once a minute per session; filtering happens here.
func (s *server) searchClientsJSON(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	scopeID := s.clientScope(r)
	name := "client-picker:" + idString(scopeID)
	list := session.ListFor[vantixapi.Client](sess.Views(), name)
	snap := list.Snapshot()
	if snap.State != screens.Loaded || s.now().Sub(snap.LoadedAt) > pickerMaxAge {
		snap = list.Load(r.Context(), "client-picker", func(ctx context.Context) ([]vantixapi.Client, error) {
			return s.api.ListClients(ctx, sess.Token, vantixapi.ClientFilter{ListParams: vantixapi.ListParams{Limit: 500}, EmployeeID: scopeID})
		})
	}
	if s.expireSession(w, r, snap.Err) {
		return
	}
	if snap.Err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": vantixapi.Message(snap.Err, "Error al obtener clientes")})
		return
	}

	matches := views.ClientPicker(snap.Items, r.URL.Query().Get("q"), pickerLimit)
	out := make([]clientOption, 0, len(matches))
	for _, c := range matches {
		out = append(out, clientOption{ID: c.ID, Name: c.Name, RUC: c.RUC})
	}
	writeJSON(w, http.StatusOK, out)
}

type geoOption struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// geoOptionsJSON feeds the department, province and district selects of the
// client form. Only active entries are offered.
func (s *server) geoOptionsJSON(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var (
		out []geoOption
		err error
	)
	switch chi.URLParam(r, "level") {
	case "provincias":
		var provinces []vantixapi.Province
		provinces, err = s.api.ListProvinces(r.Context(), sess.Token, parseID(r.URL.Query().Get("departamento")))
		for _, p := range provinces {
			if p.Active {
				out = append(out, geoOption{ID: p.ID, Name: p.Name})
			}
		}
	case "distritos":
		var districts []vantixapi.District
		districts, err = s.api.ListDistricts(r.Context(), sess.Token, parseID(r.URL.Query().Get("provincia")))
		for _, d := range districts {
			if d.Active {
				out = append(out, geoOption{ID: d.ID, Name: d.Name})
			}
		}
	default:
		http.NotFound(w, r)
		return
	}
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": vantixapi.Message(err, "Error al obtener ubicaciones")})
		return
	}
	if out == nil {
		out = []geoOption{}
	}
	writeJSON(w, http.StatusOK, out)
}
