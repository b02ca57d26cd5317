package formatting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1500", 150000},
		{"1500.50", 150050},
		{"₹1500", 150000},
		{"₹1,500", 150000},
		{" 99.99 ", 9999},
		{"0.01", 1},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseAmountRejects(t *testing.T) {
	for _, input := range []string{"", "abc", "-100", "0", "₹"} {
		_, err := ParseAmount(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "₹1500", FormatAmount(150000))
	assert.Equal(t, "₹1500.50", FormatAmount(150050))
	assert.Equal(t, "₹0.01", FormatAmount(1))
}
