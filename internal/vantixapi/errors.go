package vantixapi

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrSessionExpired is returned for any 401 or 403 from the backend.
var ErrSessionExpired = errors.New("vantixapi: session expired")

// AuthError is a rejected login.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// RequestError is any other non-2xx answer. Message is the backend's detail
// when it sent one, otherwise the fixed message of the operation.
type RequestError struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// Message returns the text to show a user for err.
func Message(err error, fallback string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && strings.TrimSpace(reqErr.Message) != "" {
		return reqErr.Message
	}
	var authErr *AuthError
	if errors.As(err, &authErr) && strings.TrimSpace(authErr.Message) != "" {
		return authErr.Message
	}
	return fallback
}

// detailMessage extracts FastAPI's "detail" from an error body. detail is
// either a string or a list of validation errors with a "msg" each.
func detailMessage(raw []byte, fallback string) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return fallback
	}
	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		if strings.TrimSpace(text) != "" {
			return text
		}
		return fallback
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		for _, item := range items {
			if strings.TrimSpace(item.Msg) != "" {
				return item.Msg
			}
		}
	}
	return fallback
}
