// Package forms holds the modal workflow shared by every create/edit dialog
// and the drafts those dialogs edit.
package forms

import (
	"context"
	"errors"

	"github.com/vantix/vantix/internal/vantixapi"
)

type Phase int

const (
	Closed Phase = iota
	Editing
	Submitting
)

// Modal is one dialog: opened with a fresh draft, edited, submitted, and
// closed only when the submission succeeds.
type Modal[D any] struct {
	phase  Phase
	draft  D
	fresh  func() D
	Error  string
	Fields map[string]string
}

func NewModal[D any](fresh func() D) *Modal[D] {
	return &Modal[D]{fresh: fresh, draft: fresh()}
}

func (m *Modal[D]) Phase() Phase  { return m.phase }
func (m *Modal[D]) IsOpen() bool  { return m.phase != Closed }
func (m *Modal[D]) Draft() *D     { return &m.draft }

// Open discards whatever was typed before and fetches the reference data
// the dialog needs. The modal stays open if a dependency fails; the first
// error is returned and shown.
func (m *Modal[D]) Open(ctx context.Context, deps ...func(context.Context) error) error {
	m.draft = m.fresh()
	m.Error = ""
	m.Fields = nil
	m.phase = Editing
	for _, dep := range deps {
		if err := dep(ctx); err != nil {
			m.Error = vantixapi.Message(err, "No se pudieron cargar los datos del formulario")
			return err
		}
	}
	return nil
}

// Submit validates the draft and, only if it passes, persists it. On success
// onSuccess runs (the owning screen refreshes) and the modal closes. On any
// failure the modal stays open with the draft intact.
func (m *Modal[D]) Submit(ctx context.Context, persist func(context.Context, D) error, onSuccess func()) error {
	m.phase = Editing
	m.Error = ""
	m.Fields = nil
	if err := Validate(m.draft); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			m.Fields = verr.Fields
			m.Error = verr.Error()
		}
		return err
	}

	m.phase = Submitting
	if err := persist(ctx, m.draft); err != nil {
		m.phase = Editing
		m.Error = vantixapi.Message(err, "No se pudo guardar. Inténtalo nuevamente.")
		return err
	}
	if onSuccess != nil {
		onSuccess()
	}
	m.Close()
	return nil
}

func (m *Modal[D]) Close() {
	m.phase = Closed
	m.Error = ""
	m.Fields = nil
}

// FieldError returns the message for a draft field, if any.
func (m *Modal[D]) FieldError(field string) string {
	return m.Fields[field]
}
