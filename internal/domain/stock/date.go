package stock

import (
	"strings"
	"time"

	"github.com/example/stock-ledger/internal/domain"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domain.Invalid(field, "is required")
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// calendarDay strips the clock from t as observed in loc
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
