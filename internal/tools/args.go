package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Args are the caller-supplied arguments of one call, as decoded from JSON.
type Args map[string]any

// decodeArgs turns the raw arguments value into Args. Absent or null
// arguments are an empty object; anything other than an object is rejected.
func decodeArgs(raw json.RawMessage) (Args, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Args{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object")
	}
	if m == nil {
		m = map[string]any{}
	}
	return Args(m), nil
}

// withoutNulls returns a copy of a minus the keys whose value is null, so
// schema checks see the same set of supplied fields the validators do.
func (a Args) withoutNulls() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// present reports whether key was supplied with a non-null value.
func (a Args) present(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

func (a Args) requiredString(key string) (string, error) {
	if !a.present(key) {
		return "", fmt.Errorf("Missing required parameter: %s", key)
	}
	s, ok := a[key].(string)
	if !ok {
		return "", fmt.Errorf("Invalid parameter %s: must be a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("Missing required parameter: %s", key)
	}
	return s, nil
}

func (a Args) optionalString(key string) (string, bool, error) {
	if !a.present(key) {
		return "", false, nil
	}
	s, ok := a[key].(string)
	if !ok {
		return "", false, fmt.Errorf("Invalid parameter %s: must be a string", key)
	}
	return s, true, nil
}

func (a Args) optionalEnum(key string, allowed ...string) (string, bool, error) {
	s, ok, err := a.optionalString(key)
	if err != nil || !ok {
		return "", false, err
	}
	for _, v := range allowed {
		if s == v {
			return s, true, nil
		}
	}
	return "", false, fmt.Errorf("Invalid parameter %s: must be one of %s", key, strings.Join(allowed, ", "))
}

// optionalPositiveInt accepts whole JSON numbers >= 1.
func (a Args) optionalPositiveInt(key string) (int, bool, error) {
	if !a.present(key) {
		return 0, false, nil
	}
	var f float64
	switch v := a[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("Invalid parameter %s: must be a positive integer", key)
		}
		f = parsed
	default:
		return 0, false, fmt.Errorf("Invalid parameter %s: must be a positive integer", key)
	}
	if f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, false, fmt.Errorf("Invalid parameter %s: must be a positive integer", key)
	}
	return int(f), true, nil
}

// optionalStringMap accepts an object whose values are all strings.
func (a Args) optionalStringMap(key string) (map[string]string, bool, error) {
	if !a.present(key) {
		return nil, false, nil
	}
	obj, ok := a[key].(map[string]any)
	if !ok {
		return nil, false, fmt.Errorf("Invalid parameter %s: must be an object of string values", key)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(obj))
	for _, k := range keys {
		s, ok := obj[k].(string)
		if !ok {
			return nil, false, fmt.Errorf("Invalid parameter %s.%s: must be a string", key, k)
		}
		out[k] = s
	}
	return out, true, nil
}
