package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Explicit(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	d, err := ParseDate("2026-03-15", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2026/03/15", now)
	require.NoError(t, err)
	assert.Equal(t, 15, d.Day())

	// month/day without a year resolves into now's year
	d, err = ParseDate("4/1", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), d)
}

func TestParseDate_NaturalLanguage(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	d, err := ParseDate("tomorrow", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), d)
}

func TestParseDate_Unparseable(t *testing.T) {
	now := time.Now()
	for _, in := range []string{"someday", "13月32日", "xxxx"} {
		_, err := ParseDate(in, now)
		assert.Error(t, err, "input %q", in)
	}
}
