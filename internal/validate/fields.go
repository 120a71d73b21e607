package validate

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	slugRe  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,24}$`)
)

// StringOpt constrains a String field.
type StringOpt func(s string) error

// MinLen requires at least n characters.
func MinLen(n int) StringOpt {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

// MaxLen requires at most n characters.
func MaxLen(n int) StringOpt {
	return func(s string) error {
		if len(s) > n {
			return fmt.Errorf("must be at most %d characters", n)
		}
		return nil
	}
}

// String coerces a string value and applies the given constraints.
func String(opts ...StringOpt) ParseFunc {
	return func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be a string")
		}
		for _, opt := range opts {
			if err := opt(s); err != nil {
				return nil, err
			}
		}
		return s, nil
	}
}

// Strings coerces a list of strings.
func Strings() ParseFunc {
	return func(raw any) (any, error) {
		switch v := raw.(type) {
		case []string:
			return v, nil
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, errors.New("must be a list of strings")
				}
				out = append(out, s)
			}
			return out, nil
		default:
			return nil, errors.New("must be a list of strings")
		}
	}
}

// Int coerces an integer from a JSON number or a decimal string (query
// values arrive as strings). Non-integral numbers are rejected, and bounds
// are enforced, not clamped.
func Int(min, max int) ParseFunc {
	return func(raw any) (any, error) {
		var n int
		switch v := raw.(type) {
		case int:
			n = v
		case float64:
			if v != math.Trunc(v) {
				return nil, errors.New("must be an integer")
			}
			n = int(v)
		case string:
			parsed, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, errors.New("must be an integer")
			}
			n = parsed
		default:
			return nil, errors.New("must be an integer")
		}
		if n < min {
			return nil, fmt.Errorf("must be >= %d", min)
		}
		if n > max {
			return nil, fmt.Errorf("must be <= %d", max)
		}
		return n, nil
	}
}

// Float coerces a non-negative-capable float with a lower bound.
func Float(min float64) ParseFunc {
	return func(raw any) (any, error) {
		var f float64
		switch v := raw.(type) {
		case float64:
			f = v
		case int:
			f = float64(v)
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, errors.New("must be a number")
			}
			f = parsed
		default:
			return nil, errors.New("must be a number")
		}
		if f < min {
			return nil, fmt.Errorf("must be >= %v", min)
		}
		return f, nil
	}
}

// Bool coerces a boolean from a JSON bool or a query-string flag.
func Bool() ParseFunc {
	return func(raw any) (any, error) {
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, errors.New("must be a boolean")
			}
			return b, nil
		default:
			return nil, errors.New("must be a boolean")
		}
	}
}

// UUID validates strict RFC 4122 formatting.
func UUID() ParseFunc {
	return func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be a UUID string")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.New("must be a valid UUID")
		}
		return id.String(), nil
	}
}

// Email validates and lower-cases an email address.
func Email() ParseFunc {
	return func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be a string")
		}
		s = strings.TrimSpace(s)
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return nil, errors.New("invalid email format")
		}
		return strings.ToLower(s), nil
	}
}

// Phone validates a permissive international phone format.
func Phone() ParseFunc {
	return func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be a string")
		}
		if !phoneRe.MatchString(strings.TrimSpace(s)) {
			return nil, errors.New("invalid phone number")
		}
		return strings.TrimSpace(s), nil
	}
}

// Slug validates lowercase hyphen-delimited identifiers. Spaces and
// underscores are rejected.
func Slug() ParseFunc {
	return func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be a string")
		}
		if !slugRe.MatchString(s) {
			return nil, errors.New("must be a lowercase hyphen-delimited slug")
		}
		return s, nil
	}
}

// URL validates an absolute URL. Any scheme is accepted, not just http.
func URL() ParseFunc {
	return func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be a string")
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" {
			return nil, errors.New("must be an absolute URL")
		}
		return s, nil
	}
}

// Date parses RFC 3339 timestamps or bare dates into time.Time.
func Date() ParseFunc {
	return func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be a date string")
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, nil
		}
		return nil, errors.New("must be an RFC 3339 date")
	}
}

// Enum restricts a string to one of the allowed values.
func Enum(allowed ...string) ParseFunc {
	return func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be a string")
		}
		for _, a := range allowed {
			if s == a {
				return s, nil
			}
		}
		return nil, fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
	}
}

// True requires a boolean that is set to true, for consent-style flags.
func True() ParseFunc {
	return func(raw any) (any, error) {
		v, err := Bool()(raw)
		if err != nil {
			return nil, err
		}
		if v != true {
			return nil, errors.New("must be true")
		}
		return true, nil
	}
}
