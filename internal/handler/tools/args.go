package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/thinko/swinelink/internal/domain"
)

// Args are the decoded JSON arguments of a tool call.
type Args map[string]any

// Domain returns a required domain argument in ASCII form.
func (a Args) Domain(name string) (string, error) {
	raw, ok := a[name].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return "", &domain.ArgumentError{Name: name, Reason: "is required"}
	}
	return NormalizeDomain(raw)
}

// String returns a string argument, or "" when absent. Numbers are
// formatted without a fractional part when they are whole.
func (a Args) String(name string) string {
	switch v := a[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Text returns a string argument verbatim. Record values such as TXT
// content keep their whitespace.
func (a Args) Text(name string) string {
	if s, ok := a[name].(string); ok {
		return s
	}
	return a.String(name)
}

// RequiredString returns a non-empty string argument.
func (a Args) RequiredString(name string) (string, error) {
	s := a.String(name)
	if s == "" {
		return "", &domain.ArgumentError{Name: name, Reason: "is required"}
	}
	return s, nil
}

// FirstString returns the first non-empty argument among names.
func (a Args) FirstString(names ...string) string {
	for _, n := range names {
		if s := a.String(n); s != "" {
			return s
		}
	}
	return ""
}

// Int returns an integer argument given as a JSON number or a numeric string.
func (a Args) Int(name string, def int) (int, error) {
	switch v := a[name].(type) {
	case nil:
		return def, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, &domain.ArgumentError{Name: name, Reason: "must be a whole number"}
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return def, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, &domain.ArgumentError{Name: name, Reason: "must be a whole number"}
		}
		return n, nil
	}
	return 0, &domain.ArgumentError{Name: name, Reason: "must be a whole number"}
}

// OptionalInt is Int for fields where absent and zero differ. It returns nil
// when the argument is absent or an empty string.
func (a Args) OptionalInt(name string) (*int, error) {
	switch v := a[name].(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
	}
	n, err := a.Int(name, 0)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// YesNo returns a flag given as a bool or as yes/no/true/false.
func (a Args) YesNo(name string, def bool) (string, error) {
	switch v := a[name].(type) {
	case nil:
		return domain.YesNo(def), nil
	case bool:
		return domain.YesNo(v), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "":
			return domain.YesNo(def), nil
		case "yes", "true", "1":
			return "yes", nil
		case "no", "false", "0":
			return "no", nil
		}
	}
	return "", &domain.ArgumentError{Name: name, Reason: "must be yes or no"}
}

// Strings returns a list argument given as a JSON array or a comma-separated
// string.
func (a Args) Strings(name string) ([]string, error) {
	var out []string
	switch v := a[name].(type) {
	case nil:
		return nil, nil
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &domain.ArgumentError{Name: name, Reason: "must be a list of strings"}
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, v...)
	default:
		return nil, &domain.ArgumentError{Name: name, Reason: "must be a list of strings"}
	}
	return out, nil
}

// Object returns a nested object argument.
func (a Args) Object(name string) (Args, error) {
	switch v := a[name].(type) {
	case map[string]any:
		return Args(v), nil
	case Args:
		return v, nil
	case nil:
		return nil, &domain.ArgumentError{Name: name, Reason: "is required"}
	}
	return nil, &domain.ArgumentError{Name: name, Reason: "must be an object"}
}

// NormalizeDomain trims input and converts internationalized names to
// punycode. ASCII input is passed through for the validator to judge.
func NormalizeDomain(input string) (string, error) {
	s := strings.TrimSpace(input)
	if isASCII(s) {
		return s, nil
	}
	ascii, err := idna.Lookup.ToASCII(s)
	if err != nil {
		return "", &domain.InvalidDomainError{
			Domain: input,
			Reason: fmt.Sprintf("Domain %q is not a valid internationalized name: %v", input, err),
		}
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
