package forms

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vantix/vantix/internal/vantixapi"
)

// ValidationError maps draft field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string
	order  []string
}

func (e *ValidationError) Error() string {
	if len(e.order) > 0 {
		return e.Fields[e.order[0]]
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return "formulario inválido"
	}
	return e.Fields[keys[0]]
}

// messager lets a draft word its own errors; keys are "Field" or "Field.tag".
type messager interface {
	messages() map[string]string
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(vantixapi.Date); ok {
				return d.String()
			}
			return nil
		}, vantixapi.Date{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("visit_result", func(fl validator.FieldLevel) bool {
			return contains(vantixapi.VisitResults, fl.Field().String())
		})
		_ = v.RegisterValidation("activity_type", func(fl validator.FieldLevel) bool {
			return contains(ActivityTypes, fl.Field().String())
		})
		_ = v.RegisterValidation("monday", func(fl validator.FieldLevel) bool {
			d, err := time.Parse("2006-01-02", fl.Field().String())
			return err == nil && d.Weekday() == time.Monday
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// Validate checks draft against its struct tags and returns *ValidationError.
func Validate(draft any) error {
	err := validatorInstance().Struct(draft)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var custom map[string]string
	if m, ok := draft.(messager); ok {
		custom = m.messages()
	}
	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range verrs {
		field := topField(fe.StructNamespace())
		if _, seen := out.Fields[field]; seen {
			continue
		}
		out.Fields[field] = message(custom, field, fe)
		out.order = append(out.order, field)
	}
	return out
}

// topField turns "VisitDraft.PlacePhoto.Data" into "PlacePhoto".
func topField(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return namespace
	}
	return parts[1]
}

func message(custom map[string]string, field string, fe validator.FieldError) string {
	if msg, ok := custom[field+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := custom[field]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return "Este campo es obligatorio"
	case "email":
		return "Ingresa un correo válido"
	case "min":
		return "El valor es demasiado corto"
	case "max":
		return "El valor es demasiado largo"
	case "gte", "gt":
		return "El valor debe ser positivo"
	case "oneof", "visit_result", "activity_type":
		return "Selecciona una opción válida"
	case "monday":
		return "La semana debe empezar un lunes"
	case "clock":
		return "Usa el formato HH:MM"
	default:
		return "Valor inválido"
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
