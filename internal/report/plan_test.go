package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vantix/vantix/internal/vantixapi"
)

func TestPlanPDF(t *testing.T) {
	plan := vantixapi.Plan{
		ID:            4,
		EmployeeID:    3,
		WeekStart:     vantixapi.NewDate(2024, 1, 8),
		WeekEnd:       vantixapi.NewDate(2024, 1, 14),
		Status:        vantixapi.PlanApproved,
		ExpectedSales: decimal.RequireFromString("15000"),
		Employee:      &vantixapi.Employee{FullName: "Ana Ríos"},
		Agenda: []vantixapi.Activity{
			{Type: vantixapi.ActivityVisit, Date: vantixapi.NewDate(2024, 1, 8), Time: "09:00", Client: &vantixapi.ClientRef{Name: "Ferretería Sur"}},
			{Type: vantixapi.ActivityCall, Date: vantixapi.NewDate(2024, 1, 9), Notes: "Seguimiento de cotización"},
		},
	}
	visits := []vantixapi.Visit{{ID: 1, Result: vantixapi.ResultSold, Notes: "[VISITA ASISTIDA - Acompañante: Luis]"}}

	raw, err := PlanPDF(plan, visits)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
}

func TestPlanPDFEmptyAgenda(t *testing.T) {
	raw, err := PlanPDF(vantixapi.Plan{ID: 1}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
}
