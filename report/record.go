package report

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrMissingField is returned when a record lacks a field the caller needs.
var ErrMissingField = errors.New("missing field")

// Record is a single benchmark entry. It is kept as raw JSON object text
// so the input's field order and number formatting are preserved.
type Record struct {
	raw string
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{raw: "{}"}
}

// RecordFromJSON wraps raw JSON object text as a Record. Bare NaN,
// Infinity and -Infinity values are accepted.
func RecordFromJSON(raw string) (Record, error) {
	raw = string(markNonFinite([]byte(raw)))

	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return Record{}, fmt.Errorf("record is not a JSON object: %.40q", raw)
	}

	return Record{raw: raw}, nil
}

// Raw returns the record as JSON object text.
func (r Record) Raw() string {
	return string(restoreNonFinite([]byte(r.marked())))
}

func (r Record) marked() string {
	if r.raw == "" {
		return "{}"
	}

	return r.raw
}

// Get looks up a top-level field by its exact name. Names are not
// interpreted as paths, so "commit(t)" and "a.b" match literally.
// A repeated key resolves to its last occurrence. Non-finite numbers
// come back as placeholder strings; use String to render them.
func (r Record) Get(field string) gjson.Result {
	var found gjson.Result

	gjson.Parse(r.marked()).ForEach(func(key, value gjson.Result) bool {
		if key.Str == field {
			found = value
		}

		return true
	})

	return found
}

// Has reports whether the record carries the named field.
func (r Record) Has(field string) bool {
	return r.Get(field).Exists()
}

// String returns the named field rendered as text.
func (r Record) String(field string) (string, error) {
	v := r.Get(field)
	if !v.Exists() {
		return "", fmt.Errorf("%w %q", ErrMissingField, field)
	}

	return text(v), nil
}

// Set returns a copy of the record with field set to value. An existing
// field keeps its position; a new field is appended.
func (r Record) Set(field string, value any) (Record, error) {
	raw, err := sjson.Set(r.marked(), gjson.Escape(field), value)
	if err != nil {
		return r, fmt.Errorf("set %q: %w", field, err)
	}

	return Record{raw: raw}, nil
}

// SetRaw is like Set but stores value as literal JSON.
func (r Record) SetRaw(field, value string) (Record, error) {
	value = string(markNonFinite([]byte(value)))

	raw, err := sjson.SetRaw(r.marked(), gjson.Escape(field), value)
	if err != nil {
		return r, fmt.Errorf("set %q: %w", field, err)
	}

	return Record{raw: raw}, nil
}

// CopyFields copies the named fields from src verbatim, in the given
// order. Every field must exist on src.
func (r Record) CopyFields(src Record, fields ...string) (Record, error) {
	out := r

	for _, field := range fields {
		v := src.Get(field)
		if !v.Exists() {
			return r, fmt.Errorf("%w %q", ErrMissingField, field)
		}

		var err error

		out, err = out.SetRaw(field, v.Raw)
		if err != nil {
			return r, err
		}
	}

	return out, nil
}
