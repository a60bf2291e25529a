package format

import (
	"fmt"
	"time"
)

// The original surface renders dates in es-ES. Go has no locale tables in the
// standard library, so the month names are spelled out here.
var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// DateTime renders "2 de julio de 2025, 19:30".
func DateTime(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d, %02d:%02d",
		t.Day(), spanishMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// Date renders "2 de julio de 2025".
func Date(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// DaysTogether counts whole days since a couple's start date.
func DaysTogether(start, now time.Time) int {
	d := int(now.Sub(start).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
