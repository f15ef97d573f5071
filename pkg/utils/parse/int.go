// ABOUTME: Utility functions for parsing integers from CLI arguments and query values
// ABOUTME: Provides strict ID parsing and lenient parsing with defaults

package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// IntOrDefault parses s as an int, returning def when s is empty or invalid
func IntOrDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// ID parses a positive store identifier
func ID(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return v, nil
}
