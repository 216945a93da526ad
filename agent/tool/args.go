package tool

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args is the decoded JSON argument object of a tool call.
type Args map[string]any

func (a Args) missing(name string) bool {
	v, ok := a[name]
	if !ok || v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// String returns a required string argument.
func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", fmt.Errorf("%s is required", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is empty", name)
	}
	return s, nil
}

// Raw returns the argument exactly as given. Numbers and other values are formatted, absent values are empty.
func (a Args) Raw(name string) string {
	switch v := a[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int accepts JSON numbers and numeric strings. Absent values yield fallback.
func (a Args) Int(name string, fallback int) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%s must be a whole number", name)
		}
		return int(n), nil
	case string:
		if strings.TrimSpace(n) == "" {
			return fallback, nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number", name)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}

// Strings accepts a JSON array of strings or a comma separated string.
func (a Args) Strings(name string) []string {
	switch v := a[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return strings.Split(v, ",")
	default:
		return nil
	}
}
