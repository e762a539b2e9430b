package helpers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseID parses a positive row id from a path parameter.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

// ParseFee turns a fee literal such as "1,000" or "12.50" into a number.
// Thousands separators are stripped first. An empty literal means no fee;
// infinities and NaN are rejected.
func ParseFee(s string) (*float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil, nil
	}
	fee, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsInf(fee, 0) || math.IsNaN(fee) {
		return nil, fmt.Errorf("invalid fee %q", s)
	}
	return &fee, nil
}

// ParseBool reads an HTML checkbox or flag value.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
