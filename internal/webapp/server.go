// Package webapp serves the Vantix web front-end: server-rendered pages that
// read and write through the backend REST API on behalf of a signed-in user.
package webapp

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/vantix/vantix/internal/config"
	"github.com/vantix/vantix/internal/middleware"
	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/vantixapi"
)

const (
	csrfHeaderName    = "X-CSRF-Token"
	csrfFieldName     = "csrf_token"
	sessionCookieName = "vantix_session"
)

//go:embed templates/*.html assets/app.css
var templatesFS embed.FS

// Options wires a handler. API and Sessions are required.
type Options struct {
	API          *vantixapi.API
	Sessions     *session.Store
	Logger       *zap.Logger
	LoginLimiter *limiter.Limiter
	CookieSecure bool
	Now          func() time.Time
}

type server struct {
	api          *vantixapi.API
	sessions     *session.Store
	logger       *zap.Logger
	cookieSecure bool
	now          func() time.Time

	loginTmpl     *template.Template
	dashboardTmpl *template.Template
	employeesTmpl *template.Template
	clientsTmpl   *template.Template
	plansTmpl     *template.Template
	planTmpl      *template.Template
	planNewTmpl   *template.Template
	visitsTmpl    *template.Template
	crmTmpl       *template.Template
	kpiTmpl       *template.Template
	expensesTmpl  *template.Template
	quotesTmpl    *template.Template
}

func parsePage(name string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
}

// NewHandler builds the routed, middleware-wrapped front-end.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.API == nil || opts.Sessions == nil {
		return nil, errors.New("webapp: api client and session store are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LoginLimiter == nil {
		rate, err := limiter.NewRateFromFormatted("5-M")
		if err != nil {
			return nil, err
		}
		opts.LoginLimiter = limiter.New(memory.NewStore(), rate)
	}

	s := &server{
		api:           opts.API,
		sessions:      opts.Sessions,
		logger:        opts.Logger,
		cookieSecure:  opts.CookieSecure,
		now:           opts.Now,
		loginTmpl:     parsePage("login.html"),
		dashboardTmpl: parsePage("dashboard.html"),
		employeesTmpl: parsePage("employees.html"),
		clientsTmpl:   parsePage("clients.html"),
		plansTmpl:     parsePage("plans.html"),
		planTmpl:      parsePage("plan.html"),
		planNewTmpl:   parsePage("plan_new.html"),
		visitsTmpl:    parsePage("visits.html"),
		crmTmpl:       parsePage("crm.html"),
		kpiTmpl:       parsePage("kpi.html"),
		expensesTmpl:  parsePage("expenses.html"),
		quotesTmpl:    parsePage("quotes.html"),
	}

	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redirectWithError(w, r, "/login", "Demasiados intentos. Espera un minuto e inténtalo de nuevo.")
	})

	r := chi.NewRouter()
	r.Get("/assets/app.css", s.appCSSFile)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/login", s.loginPage)
	r.With(middleware.RateLimit(opts.LoginLimiter, limited, http.MethodPost)).Post("/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession, s.checkCSRF)

		r.Post("/logout", s.logout)
		r.Get("/", s.dashboardPage)

		r.Get("/cartera", s.clientsPage)
		r.Post("/cartera", s.saveClient)
		r.Post("/cartera/importar", s.importClients)
		r.Get("/cartera/buscar", s.searchClientsJSON)
		r.Get("/geo/{level}", s.geoOptionsJSON)

		r.Get("/planes", s.plansPage)
		r.Get("/planes/nuevo", s.newPlanPage)
		r.Post("/planes", s.createPlan)
		r.Get("/planes/{planID}", s.planPage)
		r.Get("/planes/{planID}/reporte.pdf", s.planReport)
		r.Post("/planes/{planID}/enviar", s.submitPlan)
		r.Post("/planes/{planID}/eliminar", s.deletePlan)

		r.Get("/visitas", s.visitsPage)
		r.Post("/visitas", s.createVisit)
		r.Post("/visitas/{visitID}/eliminar", s.deleteVisit)

		r.Get("/crm", s.crmPage)
		r.Post("/crm/llamadas", s.createCall)
		r.Post("/crm/correos", s.createEmail)
		r.Get("/crm/exportar.xlsx", s.exportCRM)

		r.Get("/kpi", s.kpiPage)

		r.Get("/finanzas", s.expensesPage)
		r.Post("/finanzas", s.saveExpense)
		r.Post("/finanzas/{expenseID}/eliminar", s.deleteExpense)
		r.Get("/finanzas/exportar.xlsx", s.exportExpenses)

		r.Get("/cotizaciones", s.quotesPage)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/empleados", s.employeesPage)
			r.Post("/empleados", s.saveEmployee)
			r.Post("/empleados/{employeeID}/estado", s.toggleEmployee)
			r.Post("/planes/{planID}/revisar", s.reviewPlan)
			r.Post("/kpi/{planID}/sincronizar", s.syncKPI)
			r.Post("/kpi/incentivos/{incentiveID}/pagar", s.payIncentive)
		})
	})

	csp := strings.Join([]string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: " + backendOrigin(opts.API.BaseURL()),
		"script-src 'self' 'unsafe-inline'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	return middleware.Chain(
		r,
		middleware.RequestID(opts.Logger),
		middleware.AccessLog,
		middleware.Recover,
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{
			ContentSecurityPolicy: csp,
			PermissionsPolicy:     "geolocation=(self), camera=(self), microphone=()",
		}),
	), nil
}

// Run serves the front-end until ctx is cancelled. Sessions are restored
// from and saved to cfg.SessionSnapshotPath when it is set.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	rate, err := limiter.NewRateFromFormatted(cfg.LoginRate)
	if err != nil {
		return fmt.Errorf("LOGIN_RATE: %w", err)
	}

	store := session.NewStore()
	if cfg.SessionSnapshotPath != "" {
		restored, err := store.LoadSnapshot(cfg.SessionSnapshotPath)
		if err != nil {
			logger.Warn("session snapshot not restored", zap.String("path", cfg.SessionSnapshotPath), zap.Error(err))
		} else if restored > 0 {
			logger.Info("sessions restored", zap.Int("count", restored))
		}
	}

	handler, err := NewHandler(Options{
		API:          vantixapi.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}),
		Sessions:     store,
		Logger:       logger,
		LoginLimiter: limiter.New(memory.NewStore(), rate),
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("client listening", zap.String("addr", cfg.Addr), zap.String("api", cfg.APIBaseURL))
		errCh <- httpServer.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		runErr = ctx.Err()
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	if cfg.SessionSnapshotPath != "" {
		if err := store.SaveSnapshot(cfg.SessionSnapshotPath); err != nil {
			logger.Error("session snapshot not saved", zap.Error(err))
		} else {
			logger.Info("sessions saved", zap.Int("count", store.Len()))
		}
	}
	return runErr
}

func (s *server) appCSSFile(w http.ResponseWriter, r *http.Request) {
	css, err := templatesFS.ReadFile("assets/app.css")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(css)
}

// backendOrigin is the scheme and host photos are served from.
func backendOrigin(baseURL string) string {
	if i := strings.Index(baseURL, "://"); i >= 0 {
		rest := baseURL[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			rest = rest[:j]
		}
		return baseURL[:i+3] + rest
	}
	return ""
}
