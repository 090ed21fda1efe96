package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := NewDate(2024, time.January, 2)

	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "iso", input: "2024-01-02", want: want},
		{name: "iso without padding", input: "2024-1-2", want: want},
		{name: "timestamp keeps the day", input: "2024-01-02 15:30:00", want: want},
		{name: "rfc3339", input: "2024-01-02T23:59:59Z", want: want},
		{name: "month first slashes", input: "01/02/2024", want: want},
		{name: "abbreviated month", input: "02-Jan-2024", want: want},
		{name: "long form", input: "02 January 2024", want: want},
		{name: "surrounding spaces", input: "  2024-01-02 ", want: want},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s", got)
		})
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2024, time.January, 32)
	assert.Equal(t, "2024-02-01", d.String())

	from := MustParseDate("2024-01-01")
	assert.Equal(t, 31, d.DaysSince(from))
	assert.Equal(t, -31, from.DaysSince(d))
	assert.Equal(t, -1, from.Compare(d))
	assert.Equal(t, 0, d.Compare(NewDate(2024, time.February, 1)))
	assert.True(t, from.Before(d))
	assert.True(t, d.After(from))

	assert.True(t, Date{}.IsZero())
	assert.Equal(t, "", Date{}.String())
	assert.Panics(t, func() { MustParseDate("not a date") })
}

func TestDate_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Day  Date `json:"day"`
		None Date `json:"none"`
	}{Day: MustParseDate("2024-01-02")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-01-02","none":null}`, string(data))

	var got struct {
		Day Date `json:"day"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"day":"02 Jan 2024"}`), &got))
	assert.Equal(t, "2024-01-02", got.Day.String())

	assert.Error(t, json.Unmarshal([]byte(`{"day":"tomorrow"}`), &got))
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{From: MustParseDate("2024-01-01"), To: MustParseDate("2024-01-31")}

	assert.True(t, r.Contains(MustParseDate("2024-01-01")))
	assert.True(t, r.Contains(MustParseDate("2024-01-15")))
	assert.True(t, r.Contains(MustParseDate("2024-01-31")))
	assert.False(t, r.Contains(MustParseDate("2023-12-31")))
	assert.False(t, r.Contains(MustParseDate("2024-02-01")))

	assert.False(t, r.Contains(Date{}))
	assert.False(t, DateRange{}.Contains(Date{}))
	assert.False(t, Month{}.Contains(Date{}))
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "January 2024", want: "January 2024"},
		{input: "Jan 2024", want: "January 2024"},
		{input: "2024-03", want: "March 2024"},
		{input: "03/2024", want: "March 2024"},
		{input: "Smarch 2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Label())
		})
	}

	jan := Month{Year: 2024, Month: time.January}
	assert.True(t, jan.Contains(MustParseDate("2024-01-31")))
	assert.False(t, jan.Contains(MustParseDate("2023-01-15")))
	assert.True(t, Month{Year: 2023, Month: time.December}.Before(jan))
	assert.False(t, jan.Before(jan))
	assert.Equal(t, jan, MustParseDate("2024-01-09").MonthKey())
}
