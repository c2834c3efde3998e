package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonicalDate(t *testing.T) {
	cases := map[string]string{
		"03/05/2024":   "03/05/2024",
		"3/5/2024":     "03/05/2024",
		" 12/31/2023 ": "12/31/2023",
	}
	for in, want := range cases {
		d := ParseCanonicalDate(in)
		require.True(t, d.Valid, in)
		assert.Equal(t, want, d.String(), in)
	}

	for _, in := range []string{"", "2024-03-05", "13/01/2024", "05/32/2024", "N/A", "03/05/24"} {
		assert.False(t, ParseCanonicalDate(in).Valid, in)
	}
}

func TestToCalendarDate(t *testing.T) {
	when := time.Date(2024, time.March, 5, 17, 45, 0, 0, time.UTC)

	assert.Equal(t, "03/05/2024", ToCalendarDate(when).String())
	assert.Equal(t, "03/05/2024", ToCalendarDate(&when).String())
	assert.Equal(t, "03/05/2024", ToCalendarDate("03/05/2024").String())
	assert.Equal(t, NewCalendarDate(2024, time.March, 5), ToCalendarDate(NewCalendarDate(2024, time.March, 5)))

	assert.False(t, ToCalendarDate("2024-03-05").Valid)
	assert.False(t, ToCalendarDate(nil).Valid)
	assert.False(t, ToCalendarDate(45356).Valid)
	assert.False(t, ToCalendarDate(time.Time{}).Valid)
}

func TestCalendarDateLabels(t *testing.T) {
	d := NewCalendarDate(2024, time.March, 5)
	assert.Equal(t, "03-2024", d.MonthLabel())
	assert.Equal(t, "March", d.MonthName())

	var absent CalendarDate
	assert.Equal(t, "", absent.String())
	assert.Equal(t, "", absent.MonthLabel())
	assert.Equal(t, "", absent.MonthName())
}

func TestCalendarDateValueAndScan(t *testing.T) {
	v, err := NewCalendarDate(2024, time.January, 9).Value()
	require.NoError(t, err)
	assert.Equal(t, "01/09/2024", v)

	v, err = CalendarDate{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var d CalendarDate
	require.NoError(t, d.Scan("01/09/2024"))
	assert.Equal(t, "01/09/2024", d.String())

	require.NoError(t, d.Scan([]byte("2024-01-09")))
	assert.Equal(t, "01/09/2024", d.String())

	require.NoError(t, d.Scan("garbage"))
	assert.False(t, d.Valid)

	require.NoError(t, d.Scan(nil))
	assert.False(t, d.Valid)

	assert.Error(t, d.Scan(42))
}

func TestNormalizeMonth(t *testing.T) {
	assert.Equal(t, "03", NormalizeMonth("3"))
	assert.Equal(t, "03", NormalizeMonth(" 03 "))
	assert.Equal(t, "12", NormalizeMonth("12"))
	assert.Equal(t, "13", NormalizeMonth("13"))
	assert.Equal(t, "", NormalizeMonth(""))
}
