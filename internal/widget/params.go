package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrBadParam = errors.New("invalid parameter")

// Params are the named arguments of a Call, as decoded from JSON.
type Params map[string]any

// String returns p[key] as text. Numbers are rendered in their shortest
// decimal form so coordinates may be sent either way.
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case json.Number:
		return t.String(), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string", ErrBadParam, key)
	}
}

func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a number", ErrBadParam, key)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", ErrBadParam, key)
	}
}

func (p Params) Int(key string, def int) (int, error) {
	f, err := p.Float(key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadParam, key)
	}
	return int(f), nil
}

func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, fmt.Errorf("%w: %s must be a boolean", ErrBadParam, key)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: %s must be a boolean", ErrBadParam, key)
	}
}

// Rune returns the first character of a one character string, used for CSV
// delimiters.
func (p Params) Rune(key string, def rune) (rune, error) {
	s, err := p.String(key, "")
	if err != nil {
		return 0, err
	}
	if s == "" {
		return def, nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("%w: %s must be a single character", ErrBadParam, key)
	}
	return r[0], nil
}

// Decode re-marshals p[key] into out. A missing key leaves out untouched.
func (p Params) Decode(key string, out any) error {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadParam, key, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadParam, key, err)
	}
	return nil
}

// Map returns p[key] as an object, or nil when absent.
func (p Params) Map(key string) (map[string]any, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an object", ErrBadParam, key)
	}
	return m, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
