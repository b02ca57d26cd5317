package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAmount renders paise as rupees.
func FormatAmount(paise int64) string {
	if paise%100 == 0 {
		return fmt.Sprintf("₹%d", paise/100)
	}
	return fmt.Sprintf("₹%d.%02d", paise/100, paise%100)
}

// ParseAmount parses a user-entered rupee amount ("1500", "1500.50", "₹1500")
// into paise.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized amount %q", s)
	}
	if value <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	paise := int64(value*100 + 0.5)
	return paise, nil
}
