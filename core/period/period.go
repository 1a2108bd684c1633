// Package period selects shipments dated inside a target accounting month.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shipment-cost/core/types"
)

// DateLayout is the ledger shipment date format (YYYY/MM/DD)
const DateLayout = "2006/01/02"

// ErrEmptyDate is returned by ParseDate for a missing date
var ErrEmptyDate = errors.New("empty shipment date")

// New validates and returns a period
func New(year int, month int) (types.Period, error) {
	if month < 1 || month > 12 {
		return types.Period{}, fmt.Errorf("month %d out of range 1-12", month)
	}
	if year < 1 {
		return types.Period{}, fmt.Errorf("year %d out of range", year)
	}
	return types.Period{Year: year, Month: time.Month(month)}, nil
}

// ParseDate parses a ledger date
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ErrEmptyDate
	}
	return time.Parse(DateLayout, text)
}

// InPeriod reports whether date falls in the given month and year
func InPeriod(date time.Time, month time.Month, year int) bool {
	return date.Month() == month && date.Year() == year
}

// Classify parses a ledger date and reports whether it falls in p. An
// unparsable or empty date returns an error and is never in the period.
func Classify(p types.Period, text string) (time.Time, bool, error) {
	date, err := ParseDate(text)
	if err != nil {
		return time.Time{}, false, err
	}
	return date, InPeriod(date, p.Month, p.Year), nil
}
