package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedNumber is returned when the typed number cannot be parsed.
var ErrMalformedNumber = errors.New("calculator: malformed number")

// parseNumber converts typed text to a float64. Overflowing input keeps its
// ±Inf value. Hex floats and the inf/infinity spellings are rejected.
func parseNumber(s string) (float64, error) {
	body := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(body, "0x") || body == "inf" || body == "infinity" {
		return 0, fmt.Errorf("%w %q", ErrMalformedNumber, s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w %q", ErrMalformedNumber, s)
	}
	return v, nil
}

// FormatNumber renders v the way the display shows it: shortest round-trip
// digits, E notation outside [1e-4, 1e15).
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	abs := math.Abs(v)
	if abs >= 1e15 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(v, 'E', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
