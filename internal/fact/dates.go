package fact

import (
	"errors"
	"fmt"
	"time"
)

// Zone is the warehouse's local day boundary. Source timestamps are UTC and
// every date column is rendered in this zone.
var Zone = time.FixedZone("UTC+7", 7*60*60)

// DateLayout is the rendered format of every date column.
const DateLayout = "2006-01-02"

const (
	minYear = 1900
	maxYear = 2199
)

// ErrDataQuality marks source values that cannot be loaded as-is.
var ErrDataQuality = errors.New("data quality")

// Date returns the quoted local date of t. Dates whose year is outside the
// supported range are rejected with an error wrapping ErrDataQuality and a
// null value.
func Date(t *time.Time) (Value, error) {
	if t == nil || t.IsZero() {
		return Null(), nil
	}
	if !ValidDate(t) {
		return Null(), fmt.Errorf("%w: year %d out of range in %s", ErrDataQuality, t.In(Zone).Year(), t.UTC().Format(time.RFC3339))
	}
	return String(t.In(Zone).Format(DateLayout)), nil
}

// ValidDate reports whether t is present and its local year is within the
// supported range.
func ValidDate(t *time.Time) bool {
	if t == nil || t.IsZero() {
		return false
	}
	y := t.In(Zone).Year()
	return y >= minYear && y <= maxYear
}

// Day truncates t to the start of its local day.
func Day(t time.Time) time.Time {
	l := t.In(Zone)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Zone)
}

// DaysBetween returns the whole number of local days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours()) / 24
}

// DaysBetweenPtr is DaysBetween for optional dates; nil when either is
// absent or rejected by ValidDate.
func DaysBetweenPtr(a, b *time.Time) *int {
	if !ValidDate(a) || !ValidDate(b) {
		return nil
	}
	d := DaysBetween(*a, *b)
	return &d
}

// BucketWeek classifies a day count into weekly ranges.
func BucketWeek(days int) string {
	switch {
	case days <= 7:
		return "0-7 hari"
	case days <= 14:
		return "8-14 hari"
	case days <= 30:
		return "15-30 hari"
	default:
		return ">30 hari"
	}
}

// BucketMonth classifies a day count into monthly ranges.
func BucketMonth(days int) string {
	switch {
	case days <= 30:
		return "0-30 hari"
	case days <= 60:
		return "31-60 hari"
	case days <= 90:
		return "61-90 hari"
	default:
		return ">90 hari"
	}
}

// WeekRange returns the quoted weekly bucket of days, or null.
func WeekRange(days *int) Value {
	if days == nil {
		return Null()
	}
	return String(BucketWeek(*days))
}

// MonthRange returns the quoted monthly bucket of days, or null.
func MonthRange(days *int) Value {
	if days == nil {
		return Null()
	}
	return String(BucketMonth(*days))
}

// Raw material category names.
const (
	CategoryRawMaterial    = "BAHAN BAKU"
	CategoryNonRawMaterial = "NON BAHAN BAKU"
)

// CategoryType maps a category name to its type. The comparison is exact.
func CategoryType(name *string) string {
	if name != nil && *name == CategoryRawMaterial {
		return CategoryRawMaterial
	}
	return CategoryNonRawMaterial
}

// Delivery statuses.
const (
	OnTime = "Tepat Waktu"
	Late   = "Tidak Tepat Waktu"
)

// DeliveryStatus reports whether actual fell on or before the expected day.
func DeliveryStatus(expected, actual time.Time) string {
	if !Day(actual).After(Day(expected)) {
		return OnTime
	}
	return Late
}
