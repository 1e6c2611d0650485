package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// OptionalInt is a count read from the reporting API.
// Valid is false when the field was absent, null, or not a number.
type OptionalInt struct {
	Value int64
	Valid bool
}

// Int returns a present OptionalInt.
func Int(v int64) OptionalInt {
	return OptionalInt{Value: v, Valid: true}
}

// Or returns the value, or def when the field was not supplied.
func (o OptionalInt) Or(def int64) int64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

// UnmarshalJSON accepts JSON numbers and numeric strings. Any other shape
// leaves the field unset instead of failing the whole payload.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	*o = OptionalInt{}
	f, ok := lenientNumber(data)
	// Counts outside int64 cannot be converted faithfully
	if !ok || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil
	}
	o.Value = int64(f)
	o.Valid = true
	return nil
}

// MarshalJSON writes null for unset values.
func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return jsonNull, nil
	}
	return []byte(strconv.FormatInt(o.Value, 10)), nil
}

// OptionalFloat is the fractional counterpart of OptionalInt.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float returns a present OptionalFloat.
func Float(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// Or returns the value, or def when the field was not supplied.
func (o OptionalFloat) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

// UnmarshalJSON accepts JSON numbers and numeric strings.
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	*o = OptionalFloat{}
	f, ok := lenientNumber(data)
	if !ok {
		return nil
	}
	o.Value = f
	o.Valid = true
	return nil
}

// MarshalJSON writes null for unset values.
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return jsonNull, nil
	}
	return json.Marshal(o.Value)
}

// OptionalString holds a label that may be missing from the payload.
type OptionalString struct {
	Value string
	Valid bool
}

// String returns a present OptionalString.
func String(v string) OptionalString {
	return OptionalString{Value: v, Valid: true}
}

// Or returns def when the label is missing or empty.
func (o OptionalString) Or(def string) string {
	if !o.Valid || o.Value == "" {
		return def
	}
	return o.Value
}

// UnmarshalJSON keeps strings as-is and numbers as their literal text.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	*o = OptionalString{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		o.Value, o.Valid = s, true
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err == nil {
		o.Value, o.Valid = string(data), true
	}
	return nil
}

// MarshalJSON writes null for unset values.
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return jsonNull, nil
	}
	return json.Marshal(o.Value)
}

func lenientNumber(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return 0, false
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		raw = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
