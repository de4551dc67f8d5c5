package exam

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDurationMinutes is used when a test carries no usable duration.
const DefaultDurationMinutes = 30

var leadingNumber = regexp.MustCompile(`\d+`)

// ParseDurationMinutes normalizes a duration of unknown shape into whole
// minutes. It never fails: absent, unparseable or non-positive values fall
// back to DefaultDurationMinutes.
func ParseDurationMinutes(v any) int {
	if n := rawMinutes(v); n > 0 {
		return n
	}
	return DefaultDurationMinutes
}

// DurationUnset reports whether v carries no duration: nil, blank text or
// a number that is not positive. Non-empty text counts as set even when it
// holds no digits.
func DurationUnset(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case int, int32, int64, float32, float64, json.Number:
		return rawMinutes(v) <= 0
	case string:
		return strings.TrimSpace(t) == ""
	case fmt.Stringer:
		return strings.TrimSpace(t.String()) == ""
	}
	return false
}

func rawMinutes(v any) int {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int32:
		n = int(t)
	case int64:
		n = int(t)
	case float32:
		n = floatMinutes(float64(t))
	case float64:
		n = floatMinutes(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			n = floatMinutes(f)
		}
	case string:
		n = stringMinutes(t)
	case fmt.Stringer:
		n = stringMinutes(t.String())
	}
	return n
}

// DurationLabel renders minutes the way the pre-test screen shows them.
func DurationLabel(minutes int) string {
	return fmt.Sprintf("%d mins", minutes)
}

func floatMinutes(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func stringMinutes(s string) int {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
