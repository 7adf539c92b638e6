package fact

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBucketWeek(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{-3, "0-7 hari"},
		{0, "0-7 hari"},
		{7, "0-7 hari"},
		{8, "8-14 hari"},
		{14, "8-14 hari"},
		{15, "15-30 hari"},
		{30, "15-30 hari"},
		{31, ">30 hari"},
		{365, ">30 hari"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketWeek(tt.days), "days=%d", tt.days)
	}
}

func TestBucketMonth(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{-1, "0-30 hari"},
		{30, "0-30 hari"},
		{31, "31-60 hari"},
		{60, "31-60 hari"},
		{61, "61-90 hari"},
		{90, "61-90 hari"},
		{91, ">90 hari"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketMonth(tt.days), "days=%d", tt.days)
	}
}

func TestBucketsAreContiguous(t *testing.T) {
	weeks := map[string]bool{}
	months := map[string]bool{}
	for d := 0; d <= 200; d++ {
		weeks[BucketWeek(d)] = true
		months[BucketMonth(d)] = true
	}
	assert.Len(t, weeks, 4)
	assert.Len(t, months, 4)
}

func TestCategoryType(t *testing.T) {
	assert.Equal(t, "BAHAN BAKU", CategoryType(ptr("BAHAN BAKU")))
	assert.Equal(t, "NON BAHAN BAKU", CategoryType(ptr("bahan baku")))
	assert.Equal(t, "NON BAHAN BAKU", CategoryType(ptr("SPAREPART")))
	assert.Equal(t, "NON BAHAN BAKU", CategoryType(nil))
}

func TestDeliveryStatus(t *testing.T) {
	d := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, OnTime, DeliveryStatus(d, d))
	assert.Equal(t, OnTime, DeliveryStatus(d, d.Add(-48*time.Hour)))
	assert.Equal(t, Late, DeliveryStatus(d, d.Add(24*time.Hour)))
	// Same local day even though the UTC clock moved forward.
	assert.Equal(t, OnTime, DeliveryStatus(d.Add(-6*time.Hour), d.Add(-2*time.Hour)))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 4, DaysBetween(a, b))
	assert.Equal(t, -4, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a.Add(10*time.Hour)))
	// 17:30 UTC is already the next local day.
	assert.Equal(t, 1, DaysBetween(a, a.Add(17*time.Hour+30*time.Minute)))

	assert.Nil(t, DaysBetweenPtr(nil, &b))
	require.NotNil(t, DaysBetweenPtr(&a, &b))
	assert.Equal(t, 4, *DaysBetweenPtr(&a, &b))

	corrupt := time.Date(201, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, DaysBetweenPtr(&corrupt, &b))
	assert.Nil(t, DaysBetweenPtr(&a, ptr(time.Date(12017, 5, 1, 0, 0, 0, 0, time.UTC))))
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate(ptr(time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC))))
	assert.True(t, ValidDate(ptr(time.Date(2199, 12, 31, 12, 0, 0, 0, time.UTC))))
	// 2199-12-31 18:00 UTC is already 2200 locally.
	assert.False(t, ValidDate(ptr(time.Date(2199, 12, 31, 18, 0, 0, 0, time.UTC))))
	assert.False(t, ValidDate(ptr(time.Date(201, 1, 1, 0, 0, 0, 0, time.UTC))))
	assert.False(t, ValidDate(nil))
	assert.False(t, ValidDate(&time.Time{}))
}

func TestDate(t *testing.T) {
	v, err := Date(ptr(time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, "'2024-01-02'", v.Literal())

	v, err = Date(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = Date(ptr(time.Date(17, 5, 1, 0, 0, 0, 0, time.UTC)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataQuality))
	assert.True(t, v.IsNull())
}

func TestIssues(t *testing.T) {
	var is Issues
	v := is.Date("purchaseOrderDate", ptr(time.Date(12017, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, v.IsNull())
	v = is.Date("purchaseRequestDate", ptr(time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "'2017-01-01'", v.Literal())

	assert.Equal(t, 1, is.Len())
	require.ErrorIs(t, is.Err(), ErrDataQuality)
	assert.Contains(t, is.Err().Error(), "purchaseOrderDate")
}

func TestValueLiterals(t *testing.T) {
	assert.Equal(t, "null", Null().Literal())
	assert.Equal(t, "null", Value{}.Literal())
	assert.Nil(t, Value{}.Arg())
	assert.Equal(t, `'Kain "Katun" 30s'`, String("Kain 'Katun' 30s").Literal())
	assert.Equal(t, `Kain "Katun" 30s`, String("Kain 'Katun' 30s").Arg())
	assert.Equal(t, "42", Int(42).Literal())
	assert.Equal(t, "1.5", Float(1.5).Literal())
	assert.Equal(t, "14500", Float(14500).Literal())
	assert.Equal(t, "'false'", Bool(false).Literal())
	assert.Equal(t, "'true'", Flag(ptr(true)).Literal())
	assert.True(t, Flag(nil).IsNull())
	assert.True(t, Str(ptr("")).IsNull())
	assert.True(t, Str(nil).IsNull())
	assert.True(t, Num(nil).IsNull())
	assert.Equal(t, "'8-14 hari'", WeekRange(ptr(9)).Literal())
	assert.True(t, MonthRange(nil).IsNull())

	row := Row{String("PR001"), Null(), Int(4)}
	assert.Equal(t, []string{"'PR001'", "null", "4"}, row.Literals())
	assert.Equal(t, []any{"PR001", nil, int64(4)}, row.Args())
}

func TestLayout(t *testing.T) {
	l := NewLayout("no", "date", "days", "range")
	var is Issues
	w := l.NewRow(&is)
	w.Set("no", String("PR001"))
	w.Date("date", ptr(time.Date(1017, 1, 1, 0, 0, 0, 0, time.UTC)))
	w.Days("days", "range", ptr(40), MonthRange)

	assert.Equal(t, []string{"'PR001'", "null", "40", "'31-60 hari'"}, w.Row().Literals())
	assert.Equal(t, 1, is.Len())
	assert.Panics(t, func() { w.Set("missing", Null()) })

	i, ok := l.Index("days")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, []string{"no", "date", "days", "range"}, l.Columns())
}
