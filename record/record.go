// Package record holds the JSON resolution record written for every
// (detector, sample, impact parameter) combination.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Built-in record keys.
const (
	KeySubsystem   = "subsystem"
	KeyLayer       = "layer"
	KeyRadius      = "radius"
	KeyRMS         = "rms"
	KeyRMSErr      = "rms_err"
	KeySigma       = "sigma"
	KeySigmaErr    = "sigma_err"
	KeyResQuantile = "res_quantile"
	KeySigmaFWHM   = "sigma_FWHM"
)

// Record is a flat JSON object that remembers key insertion order.
//
// Setting an existing key overwrites its value in place. This is how gun
// card entries end up merged with the built-in fields: a card key named like
// a built-in field silently replaces it.
type Record struct {
	keys []string
	vals map[string]any
}

// New returns an empty record.
func New() *Record {
	return &Record{vals: make(map[string]any)}
}

// Set stores v under key and reports whether an existing value was
// replaced.
func (r *Record) Set(key string, v any) bool {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	_, exists := r.vals[key]
	if !exists {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
	return exists
}

// Get returns the raw value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of keys.
func (r *Record) Len() int { return len(r.keys) }

// String returns the value under key as text.
func (r *Record) String(key string) (string, error) {
	v, ok := r.vals[key]
	if !ok {
		return "", fmt.Errorf("record: no %q field", key)
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case nil:
		return "", fmt.Errorf("record: %q is null", key)
	default:
		return fmt.Sprint(v), nil
	}
}

// Float returns the value under key as a float. Numeric strings (card
// values) are accepted, as is the first element of a "min,max" range.
// A null value reads as NaN.
func (r *Record) Float(key string) (float64, error) {
	v, ok := r.vals[key]
	if !ok {
		return 0, fmt.Errorf("record: no %q field", key)
	}
	switch v := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		first, _, _ := strings.Cut(v, ",")
		f, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
		if err != nil {
			return 0, fmt.Errorf("record: %q: %w", key, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("record: %q has non-numeric type %T", key, v)
	}
}

// Int returns the value under key truncated to an integer.
func (r *Record) Int(key string) (int, error) {
	f, err := r.Float(key)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("record: %q is not finite", key)
	}
	return int(f), nil
}

// MarshalJSON writes the fields in insertion order. Non-finite floats are
// written as null.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')

		v := r.vals[k]
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			v = nil
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("record: field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object, keeping the key order of the
// input.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected JSON object")
	}

	*r = Record{vals: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: unexpected token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		r.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

// ReadFile decodes the record stored at path.
func ReadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := New()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// WriteFile writes the record to path with 4-space indentation.
func (r *Record) WriteFile(path string) error {
	raw, err := r.MarshalJSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	return os.WriteFile(path, buf.Bytes(), 0644)
}
