package vantixapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login is the result of a successful credential exchange.
type Login struct {
	Token string
	User  Employee
}

// Login exchanges credentials for a token and then fetches the profile it
// belongs to. Nothing is stored; the caller owns the result.
func (c *API) Login(ctx context.Context, username, password string) (Login, error) {
	form := url.Values{}
	form.Set("username", strings.TrimSpace(username))
	form.Set("password", password)

	var tok tokenResponse
	err := c.do(ctx, request{
		op:       "login",
		fallback: "Credenciales incorrectas",
		method:   http.MethodPost,
		path:     "/auth/login/access-token",
		form:     form,
	}, &tok)
	if err != nil {
		var reqErr *RequestError
		switch {
		case errors.Is(err, ErrSessionExpired):
			return Login{}, &AuthError{Message: "Credenciales incorrectas"}
		case errors.As(err, &reqErr) && reqErr.Status < 500:
			return Login{}, &AuthError{Message: reqErr.Message}
		}
		return Login{}, err
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return Login{}, &AuthError{Message: "El servidor no devolvió un token"}
	}

	user, err := c.Me(ctx, tok.AccessToken)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return Login{}, &AuthError{Message: "No se pudo obtener el perfil del usuario"}
		}
		return Login{}, err
	}
	return Login{Token: tok.AccessToken, User: user}, nil
}

func (c *API) Me(ctx context.Context, token string) (Employee, error) {
	var out Employee
	err := c.do(ctx, request{
		op:       "me",
		fallback: "Error al obtener el perfil",
		method:   http.MethodGet,
		path:     "/empleados/me",
		token:    token,
	}, &out)
	return out, err
}

// Ping checks that the backend answers at all and reports the status it
// answered with. Any HTTP status counts.
func (c *API) Ping(ctx context.Context) (int, error) {
	req, err := c.newHTTPRequest(ctx, request{method: http.MethodGet, path: "/empleados/me"})
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ping %s: %w", c.baseURL, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Claims are the parts of the access token the front-end reads for display
// and log correlation. They are never used to authorize anything.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

func TokenClaims(token string) (Claims, error) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	var out Claims
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
