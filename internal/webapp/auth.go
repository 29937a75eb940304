package webapp

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vantix/vantix/internal/logging"
	"github.com/vantix/vantix/internal/security"
	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/vantixapi"
)

type sessionKey struct{}

func withSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}

func (s *server) currentSession(r *http.Request) *session.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return s.sessions.Get(cookie.Value)
}

func (s *server) setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.currentSession(r)
		if sess == nil {
			if _, err := r.Cookie(sessionCookieName); err == nil {
				s.clearSessionCookie(w)
			}
			if wantsJSON(r) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": "/login"})
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		logger := logging.FromContext(r.Context()).With(zap.Int64("employee_id", sess.User.ID))
		ctx := logging.WithLogger(withSession(r.Context(), sess), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r.Context()).IsAdmin() {
			redirectWithError(w, r, "/", "No tienes permisos para esta sección")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkCSRF rejects state-changing requests whose token does not match the session.
func (s *server) checkCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
			if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
				redirectWithError(w, r, refererPath(r), "El formulario es demasiado grande o está incompleto")
				return
			}
		}
		submitted := r.Header.Get(csrfHeaderName)
		if submitted == "" {
			submitted = r.FormValue(csrfFieldName)
		}
		if !security.VerifyToken(submitted, sessionFrom(r.Context()).CSRF) {
			redirectWithError(w, r, refererPath(r), "La sesión del formulario caducó. Vuelve a intentarlo.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// expireSession applies the app-wide policy for a token the backend rejected:
// the session is cleared once and the browser goes to the login screen. It
// reports whether err was a session expiry.
func (s *server) expireSession(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, vantixapi.ErrSessionExpired) {
		return false
	}
	sess := sessionFrom(r.Context())
	if sess != nil && s.sessions.Expire(sess.ID, sess.Token) {
		logging.FromContext(r.Context()).Info("session expired by backend")
	}
	s.clearSessionCookie(w)
	if r.URL.Path == "/login" {
		return true
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": "/login"})
		return true
	}
	redirectWithError(w, r, "/login", "Tu sesión expiró. Ingresa nuevamente.")
	return true
}

func (s *server) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.currentSession(r) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	data := pageData{Title: "Ingresar", Error: r.URL.Query().Get("error"), SuccessMessage: r.URL.Query().Get("message")}
	s.render(w, r, s.loginTmpl, data)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/login", "Formulario inválido")
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		redirectWithError(w, r, "/login", "Ingresa tu correo y contraseña")
		return
	}

	login, err := s.api.Login(r.Context(), username, password)
	if err != nil {
		var authErr *vantixapi.AuthError
		if errors.As(err, &authErr) {
			redirectWithError(w, r, "/login", authErr.Message)
			return
		}
		logging.FromContext(r.Context()).Warn("login failed", zap.Error(err))
		redirectWithError(w, r, "/login", "No se pudo conectar con el servidor")
		return
	}

	sess, err := s.sessions.Create(login)
	if err != nil {
		logging.FromContext(r.Context()).Error("session create failed", zap.Error(err))
		redirectWithError(w, r, "/login", "No se pudo iniciar sesión")
		return
	}
	s.setSessionCookie(w, sess)
	logging.FromContext(r.Context()).Info("login", zap.Int64("employee_id", sess.User.ID), zap.Bool("admin", sess.User.IsAdmin))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFrom(r.Context()); sess != nil {
		s.sessions.Delete(sess.ID)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login?message="+queryEscape("Sesión cerrada"), http.StatusFound)
}
