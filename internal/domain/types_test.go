package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_TruncatesInUTC(t *testing.T) {
	// 23:30 in New York on Jan 2 is already Jan 3 in UTC
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ts := time.Date(2024, 1, 2, 23, 30, 0, 0, ny)
	assert.Equal(t, "2024-01-03", DateOf(ts).String())
}

func TestToday_UsesLondon(t *testing.T) {
	// 23:30 UTC on June 30 is 00:30 July 1 in London (BST)
	now := time.Date(2024, 6, 30, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-07-01", Today(now).String())

	// In winter London matches UTC
	winter := time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-15", Today(winter).String())
}

func TestDate_Compare(t *testing.T) {
	a := Date{Year: 2024, Month: time.January, Day: 3}
	b := Date{Year: 2024, Month: time.January, Day: 10}
	c := Date{Year: 2023, Month: time.December, Day: 31}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, c.Before(a))
	assert.False(t, a.Before(a))
}

func TestDate_DaysAndJSON(t *testing.T) {
	d, err := ParseDate("2024-02-27")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", d.AddDays(3).String())
	assert.Equal(t, 3, d.DaysUntil(d.AddDays(3)))

	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-27"`, string(data))

	var back Date
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, d, back)
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		in      string
		want    Repo
		wantErr bool
	}{
		{in: "octo/hello", want: Repo{Owner: "octo", Name: "hello"}},
		{in: "  octo/hello ", want: Repo{Owner: "octo", Name: "hello"}},
		{in: "octo", wantErr: true},
		{in: "/hello", wantErr: true},
		{in: "octo/", wantErr: true},
		{in: "a/b/c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRepo(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRepo)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Owner+"/"+tt.want.Name, got.String())
		})
	}
}
