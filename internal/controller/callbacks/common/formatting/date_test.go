package formatting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateAcceptsAllLayouts(t *testing.T) {
	want := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"2026-03-04",
		"04-03-2026",
		"04/03/2026",
		"2026/03/04",
		"04.03.2026",
		"  2026-03-04  ",
	} {
		got, err := ParseDate(input, time.UTC)
		require.NoError(t, err, "input %q", input)
		assert.True(t, got.Equal(want), "input %q parsed to %s", input, got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "tomorrow", "04-13-2026", "2026-13-04", "4th of March"} {
		_, err := ParseDate(input, time.UTC)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatDateRange(t *testing.T) {
	from := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "04 Mar 2026 — 08 Mar 2026", FormatDateRange(from, to))
	assert.Equal(t, "04 Mar 2026", FormatDateRange(from, from))
}
