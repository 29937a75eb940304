// Package report renders downloadable documents.
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

// PlanPDF renders a plan's header, visit summary and agenda grouped by day.
func PlanPDF(plan vantixapi.Plan, visits []vantixapi.Visit) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(fmt.Sprintf("Plan semanal %d", plan.ID)), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Plan de trabajo semanal"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(45, 7, tr(label))
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 7, tr(value))
		pdf.Ln(7)
	}
	employee := plan.EmployeeName()
	if employee == "" {
		employee = fmt.Sprintf("Empleado %d", plan.EmployeeID)
	}
	line("Empleado:", employee)
	line("Semana:", views.WeekLabel(plan.WeekStart.Time, plan.WeekEnd.Time))
	line("Estado:", plan.Status)
	line("Venta esperada:", views.Money(plan.ExpectedSales))
	if plan.SupervisorNotes != "" {
		line("Observaciones:", plan.SupervisorNotes)
	}
	pdf.Ln(4)

	stats := views.ComputeVisitStats(visits)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr("Resumen"))
	pdf.Ln(9)
	line("Visitas:", fmt.Sprintf("%d de %d programadas", stats.Total, plan.PlannedVisits))
	line("Asistidas:", fmt.Sprintf("%d (%d%%)", stats.Assisted, stats.AssistedPct()))
	line("Efectividad:", fmt.Sprintf("%d%%", stats.Effectiveness()))
	line("Llamadas:", fmt.Sprintf("%d", plan.CallsMade))
	line("Correos:", fmt.Sprintf("%d", plan.EmailsSent))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr("Agenda"))
	pdf.Ln(9)
	groups := views.GroupActivities(plan.Agenda)
	if len(groups) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 7, tr("Sin actividades programadas"))
		pdf.Ln(7)
	}
	for _, group := range groups {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(235, 238, 245)
		pdf.CellFormat(0, 7, tr(group.Key), "", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, a := range group.Items {
			pdf.CellFormat(18, 6, a.Time, "", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, tr(a.Type), "", 0, "L", false, 0, "")
			pdf.CellFormat(70, 6, tr(a.ClientName()), "", 0, "L", false, 0, "")
			pdf.MultiCell(0, 6, tr(a.Notes), "", "L", false)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render plan %d: %w", plan.ID, err)
	}
	return buf.Bytes(), nil
}
