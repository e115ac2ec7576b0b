// Package report models Google Benchmark style JSON reports and formats
// combined reports for output.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
)

// ErrMissingBenchmarks is returned by Parse when the document has no
// "benchmarks" key.
var ErrMissingBenchmarks = errors.New(`missing "benchmarks" key`)

var outputOptions = &pretty.Options{
	Indent:   "    ",
	SortKeys: false,
}

// Report is an ordered list of benchmark records.
type Report struct {
	Benchmarks []Record
}

// New returns an empty report.
func New() *Report {
	return &Report{Benchmarks: []Record{}}
}

// Parse decodes a report document. Bare NaN, Infinity and -Infinity
// values are accepted; comments and trailing commas are not.
func Parse(data []byte) (*Report, error) {
	data = markNonFinite(data)

	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("report root is %s, want object", root.Type)
	}

	// A repeated "benchmarks" key resolves to its last occurrence, like
	// any other field.
	benchmarks := Record{raw: root.Raw}.Get("benchmarks")
	if !benchmarks.Exists() {
		return nil, ErrMissingBenchmarks
	}

	if !benchmarks.IsArray() {
		return nil, fmt.Errorf(`"benchmarks" is %s, want array`,
			benchmarks.Type)
	}

	rep := New()

	for i, item := range benchmarks.Array() {
		rec, err := RecordFromJSON(item.Raw)
		if err != nil {
			return nil, fmt.Errorf("benchmark %d: %w", i, err)
		}

		rep.Benchmarks = append(rep.Benchmarks, rec)
	}

	return rep, nil
}

// ParseLenient is like Parse but also accepts comments and trailing
// commas.
func ParseLenient(data []byte) (*Report, error) {
	return Parse(jsonc.ToJSON(data))
}

// Append adds records to the end of the report.
func (r *Report) Append(records ...Record) {
	r.Benchmarks = append(r.Benchmarks, records...)
}

// Len returns the number of records.
func (r *Report) Len() int {
	return len(r.Benchmarks)
}

// JSON returns the compact document {"benchmarks": [...]}.
func (r *Report) JSON() []byte {
	return restoreNonFinite(r.marked())
}

// WriteJSON writes the report indented by four spaces.
func (r *Report) WriteJSON(w io.Writer) error {
	out := pretty.PrettyOptions(r.marked(), outputOptions)
	_, err := w.Write(restoreNonFinite(out))

	return err
}

// marked builds the document with non-finite values still held as
// placeholders, which keeps it valid JSON for formatting.
func (r *Report) marked() []byte {
	var sb strings.Builder

	sb.WriteString(`{"benchmarks":[`)

	for i, rec := range r.Benchmarks {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(rec.marked())
	}

	sb.WriteString(`]}`)

	return []byte(sb.String())
}
