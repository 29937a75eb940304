package webapp

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/vantixapi"
)

// fakeBackend answers every list endpoint with an empty array unless a
// route overrides it, and counts the calls it receives per method and path.
type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{routes: map[string]http.HandlerFunc{}, hits: map[string]int{}}
}

func (f *fakeBackend) on(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *fakeBackend) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api/v1")
	f.mu.Lock()
	f.hits[key]++
	h := f.routes[key]
	f.mu.Unlock()
	if h != nil {
		h(w, r)
		return
	}
	if r.Method == http.MethodGet {
		_, _ = io.WriteString(w, "[]")
		return
	}
	http.NotFound(w, r)
}

type testApp struct {
	handler  http.Handler
	sessions *session.Store
	backend  *fakeBackend
	logs     *observer.ObservedLogs
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	core, logs := observer.New(zapcore.InfoLevel)
	sessions := session.NewStore()
	handler, err := NewHandler(Options{
		API:      vantixapi.New(srv.URL+"/api/v1", srv.Client()),
		Sessions: sessions,
		Logger:   zap.New(core),
		Now:      func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return &testApp{handler: handler, sessions: sessions, backend: backend, logs: logs}
}

func (a *testApp) signIn(t *testing.T, admin bool) *session.Session {
	t.Helper()
	sess, err := a.sessions.Create(vantixapi.Login{
		Token: "tok",
		User:  vantixapi.Employee{ID: 3, FullName: "Ana Ríos", Active: true, IsAdmin: admin},
	})
	require.NoError(t, err)
	return sess
}

func (a *testApp) do(req *http.Request, sess *session.Session) *httptest.ResponseRecorder {
	if sess != nil {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.ID})
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func writeJSONBody(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Header().Get("Permissions-Policy"), "geolocation=(self)")
}

func TestLoginCreatesSession(t *testing.T) {
	app := newTestApp(t)
	app.backend.on(http.MethodPost, "/auth/login/access-token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"access_token":"abc","token_type":"bearer"}`)
	})
	app.backend.on(http.MethodGet, "/empleados/me", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id_empleado":3,"nombre_completo":"Ana Ríos","is_admin":false}`)
	})

	rec := app.do(postForm("/login", url.Values{"username": {"ana@vantix.pe"}, "password": {"secreto"}}), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	sess := app.sessions.Get(cookies[0].Value)
	require.NotNil(t, sess)
	assert.Equal(t, "abc", sess.Token)
	assert.Equal(t, "Ana Ríos", sess.User.FullName)
}

func TestLoginShowsBackendMessage(t *testing.T) {
	app := newTestApp(t)
	app.backend.on(http.MethodPost, "/auth/login/access-token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"Email o contraseña incorrectos"}`)
	})

	rec := app.do(postForm("/login", url.Values{"username": {"ana@vantix.pe"}, "password": {"mal"}}), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "Email o contraseña incorrectos", loc.Query().Get("error"))
	assert.Zero(t, app.sessions.Len())
}

func TestPagesRequireSession(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/", "/cartera", "/visitas", "/crm", "/kpi", "/finanzas", "/cotizaciones"} {
		rec := app.do(httptest.NewRequest(http.MethodGet, path, nil), nil)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestEmployeesIsAdminOnly(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, false)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/empleados", nil), sess)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/?error="))
	assert.Zero(t, app.backend.count(http.MethodGet, "/empleados/"))
}

func TestRejectedTokenExpiresSessionOnce(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, false)
	app.backend.on(http.MethodGet, "/cartera/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusUnauthorized)
	})

	const n = 8
	var wg sync.WaitGroup
	responses := make([]*httptest.ResponseRecorder, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i] = app.do(httptest.NewRequest(http.MethodGet, "/cartera", nil), sess)
		}(i)
	}
	wg.Wait()

	toLogin, cleared := 0, 0
	for _, rec := range responses {
		if rec.Code == http.StatusFound && strings.HasPrefix(rec.Header().Get("Location"), "/login") {
			toLogin++
		}
		for _, c := range rec.Result().Cookies() {
			if c.Name == sessionCookieName && c.MaxAge < 0 {
				cleared++
			}
		}
	}
	assert.Equal(t, n, toLogin)
	assert.Equal(t, n, cleared)
	assert.Nil(t, app.sessions.Get(sess.ID))
	assert.Equal(t, 1, app.logs.FilterMessage("session expired by backend").Len())
}

func TestRejectedTokenOnJSONRequest(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, false)
	app.backend.on(http.MethodGet, "/cartera/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	req := httptest.NewRequest(http.MethodGet, "/cartera/buscar?q=ana", nil)
	req.Header.Set("Accept", "application/json")
	rec := app.do(req, sess)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/login", body["redirect"])
	assert.Nil(t, app.sessions.Get(sess.ID))
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, false)

	rec := app.do(postForm("/visitas/5/eliminar", url.Values{}), sess)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")
	assert.Zero(t, app.backend.count(http.MethodDelete, "/visitas/5"))

	app.backend.on(http.MethodDelete, "/visitas/5", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rec = app.do(postForm("/visitas/5/eliminar", url.Values{csrfFieldName: {sess.CSRF}}), sess)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "message=")
	assert.Equal(t, 1, app.backend.count(http.MethodDelete, "/visitas/5"))
}

func TestClientSearchFiltersAndCaches(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, false)
	app.backend.on(http.MethodGet, "/cartera/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("id_empleado"))
		_, _ = io.WriteString(w, `[
			{"id_cliente":1,"nombre_cliente":"Ferretería Andina","ruc_dni":"20123456789","activo":true},
			{"id_cliente":2,"nombre_cliente":"Municipalidad de Ate","ruc_dni":"20999999999","activo":true},
			{"id_cliente":3,"nombre_cliente":"Andina Retail","ruc_dni":"","activo":true}
		]`)
	})

	var got []clientOption
	for i := 0; i < 2; i++ {
		rec := app.do(httptest.NewRequest(http.MethodGet, "/cartera/buscar?q=andina", nil), sess)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	}
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []int64{1, 3}, []int64{got[0].ID, got[1].ID})
	assert.Equal(t, 1, app.backend.count(http.MethodGet, "/cartera/"))
}

// queryLog records one query parameter per backend call.
type queryLog struct {
	mu   sync.Mutex
	seen []string
}

func (q *queryLog) add(v string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seen = append(q.seen, v)
}

func (q *queryLog) values() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.seen...)
}

func TestClientPickerFollowsViewedEmployee(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, true)
	app.backend.on(http.MethodGet, "/cartera/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_empleado") == "7" {
			_, _ = io.WriteString(w, `[{"id_cliente":1,"nombre_cliente":"Alfa de siete","activo":true}]`)
			return
		}
		_, _ = io.WriteString(w, `[{"id_cliente":2,"nombre_cliente":"Beta de ocho","activo":true}]`)
	})

	search := func(employee string) []clientOption {
		rec := app.do(httptest.NewRequest(http.MethodGet, "/cartera/buscar?q=de&empleado="+employee, nil), sess)
		require.Equal(t, http.StatusOK, rec.Code)
		var got []clientOption
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		return got
	}

	got := search("7")
	require.Len(t, got, 1)
	assert.Equal(t, "Alfa de siete", got[0].Name)

	got = search("8")
	require.Len(t, got, 1)
	assert.Equal(t, "Beta de ocho", got[0].Name)
	assert.Equal(t, 2, app.backend.count(http.MethodGet, "/cartera/"))

	got = search("7")
	require.Len(t, got, 1)
	assert.Equal(t, "Alfa de siete", got[0].Name)
	assert.Equal(t, 2, app.backend.count(http.MethodGet, "/cartera/"))
}

func TestSwitchingEmployeeRefetchesCascade(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, true)

	var plans, visits, clients queryLog
	app.backend.on(http.MethodGet, "/planes/", func(w http.ResponseWriter, r *http.Request) {
		employee := r.URL.Query().Get("id_empleado")
		plans.add(employee)
		_, _ = io.WriteString(w, `[{"id_plan":`+employee+`0,"id_empleado":`+employee+`,"fecha_inicio_semana":"2024-01-08","fecha_fin_semana":"2024-01-13","estado":"Aprobado"}]`)
	})
	app.backend.on(http.MethodGet, "/visitas/", func(w http.ResponseWriter, r *http.Request) {
		visits.add(r.URL.Query().Get("id_plan"))
		_, _ = io.WriteString(w, "[]")
	})
	app.backend.on(http.MethodGet, "/cartera/", func(w http.ResponseWriter, r *http.Request) {
		clients.add(r.URL.Query().Get("id_empleado"))
		_, _ = io.WriteString(w, "[]")
	})

	for _, employee := range []string{"7", "8"} {
		rec := app.do(httptest.NewRequest(http.MethodGet, "/visitas?empleado="+employee, nil), sess)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	// The choice is remembered, so the picker follows it without ?empleado=.
	rec := app.do(httptest.NewRequest(http.MethodGet, "/cartera/buscar?q=x", nil), sess)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"7", "8"}, plans.values())
	assert.Equal(t, []string{"70", "80"}, visits.values())
	assert.Equal(t, []string{"8"}, clients.values())
	assert.Equal(t, int64(8), app.sessions.Get(sess.ID).ViewedEmployeeID)
}

func TestDashboardDegradesPerCard(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, false)
	app.backend.on(http.MethodGet, "/crm/llamadas/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	app.backend.on(http.MethodGet, "/visitas/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id_visita":1,"id_plan":4,"id_cliente":9,"resultado":"Venta cerrada","fecha_hora_checkin":"2024-01-09T10:00:00","cliente":{"id_cliente":9,"nombre_cliente":"Ferretería Andina"}}]`)
	})

	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil), sess)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Algunos datos no están disponibles")
	assert.Contains(t, body, "llamadas")
	assert.Contains(t, body, "Ferretería Andina")
	assert.NotNil(t, app.sessions.Get(sess.ID))
}

func TestEveryPageRendersEmpty(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, true)
	for _, path := range []string{
		"/", "/empleados", "/empleados?modal=nuevo", "/cartera", "/cartera?modal=nuevo",
		"/planes", "/planes/nuevo", "/visitas", "/crm", "/crm?modal=llamada", "/crm?modal=correo&tab=correos",
		"/kpi", "/finanzas", "/cotizaciones",
	} {
		rec := app.do(httptest.NewRequest(http.MethodGet, path, nil), sess)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Vantix", path)
	}
}

func TestVisitWithoutSealPhotoStaysOnForm(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, false)
	app.backend.on(http.MethodGet, "/planes/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id_plan":4,"id_empleado":3,"fecha_inicio_semana":"2024-01-08","fecha_fin_semana":"2024-01-14","estado":"Aprobado"}]`)
	})

	var img bytes.Buffer
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.Set(1, 1, color.RGBA{R: 200, A: 255})
	require.NoError(t, png.Encode(&img, src))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		csrfFieldName: sess.CSRF,
		"id_plan":     "4",
		"id_cliente":  "9",
		"resultado":   vantixapi.ResultSold,
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("foto_lugar", "lugar.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/visitas", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := app.do(req, sess)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registrar visita")
	assert.Contains(t, rec.Body.String(), "data:image/jpeg;base64,")
	assert.Zero(t, app.backend.count(http.MethodPost, "/visitas/"))
}

func TestExpenseExportDownloadsWorkbook(t *testing.T) {
	app := newTestApp(t)
	sess := app.signIn(t, false)
	app.backend.on(http.MethodGet, "/planes/", func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, []map[string]any{{"id_plan": 4, "id_empleado": 3, "fecha_inicio_semana": "2024-01-08", "fecha_fin_semana": "2024-01-14"}})
	})
	app.backend.on(http.MethodGet, "/finanzas/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4", r.URL.Query().Get("id_plan"))
		_, _ = io.WriteString(w, `[{"id_gasto":1,"id_plan":4,"fecha_gasto":"2024-01-09","lugar_origen":"Oficina","lugar_destino":"Ate","monto_gastado":"12.50"}]`)
	})

	rec := app.do(httptest.NewRequest(http.MethodGet, "/finanzas/exportar.xlsx", nil), sess)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "gastos-plan-4.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}
