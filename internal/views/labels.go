package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Monday first.
var weekdayNames = [...]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// isoWeekday maps Sunday to 7 and Monday to 1.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func WeekdayName(t time.Time) string { return weekdayNames[isoWeekday(t)-1] }

// DayLabel renders "Lunes 08 de enero".
func DayLabel(t time.Time) string {
	return fmt.Sprintf("%s %02d de %s", WeekdayName(t), t.Day(), monthNames[t.Month()-1])
}

// DateLabel renders "08/01/2024".
func DateLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func DateTimeLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

// WeekLabel renders "08 ene - 14 ene 2024".
func WeekLabel(start, end time.Time) string {
	short := func(t time.Time) string { return fmt.Sprintf("%02d %s", t.Day(), monthNames[t.Month()-1][:3]) }
	if end.IsZero() {
		return short(start) + " " + start.Format("2006")
	}
	return short(start) + " - " + short(end) + " " + end.Format("2006")
}

// Money renders soles with two decimals and thousands separators: "S/ 1,234.50".
func Money(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "S/ " + b.String() + "." + frac
}

// Duration renders call seconds as "m:ss".
func Duration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
