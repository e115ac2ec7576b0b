package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `{
	"context": {"host_name": "ci"},
	"benchmarks": [
		{
			"name": "bench1",
			"run_name": "bench1",
			"run_type": "iteration",
			"repetitions": 1,
			"repetition_index": 0,
			"threads": 1,
			"iterations": 10,
			"real_time": 1.5e3,
			"cpu_time": 1499.25,
			"time_unit": "ms",
			"commit(t)": 42.5
		},
		{"name": "bench2", "run_name": "bench2"}
	]
}`

func TestParse(t *testing.T) {
	rep, err := Parse([]byte(sampleReport))
	require.NoError(t, err)
	require.Equal(t, 2, rep.Len())

	first := rep.Benchmarks[0]
	name, err := first.String("name")
	require.NoError(t, err)
	assert.Equal(t, "bench1", name)
	assert.True(t, first.Has("commit(t)"))
	assert.Equal(t, 42.5, first.Get("commit(t)").Float())
	assert.Equal(t, "1.5e3", first.Get("real_time").Raw)
	assert.False(t, rep.Benchmarks[1].Has("commit(t)"))
}

func TestParseRejectsComments(t *testing.T) {
	inputs := []string{
		`{"benchmarks": [/* c */ {"name": "b", "run_name": "r"}]}`,
		`{"benchmarks": [{"name": "b", "run_name": "r",}]}`,
	}

	for _, input := range inputs {
		_, err := Parse([]byte(input))
		assert.Error(t, err, input)
	}
}

func TestParseLenient(t *testing.T) {
	input := `{
		// produced by a patched runner
		"benchmarks": [
			{"name": "a", "run_name": "a",},
		],
	}`

	rep, err := ParseLenient([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Len())
}

func TestParseNonFinite(t *testing.T) {
	input := `{"benchmarks": [{
		"name": "NaN",
		"run_name": "r",
		"real_time": Infinity,
		"cpu_time": -Infinity,
		"commit(t)": NaN,
		"note": "NaN stays a string"
	}]}`

	rep, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Equal(t, 1, rep.Len())

	rec := rep.Benchmarks[0]
	assert.True(t, rec.Has("commit(t)"))

	v, err := rec.String("commit(t)")
	require.NoError(t, err)
	assert.Equal(t, "NaN", v)

	v, err = rec.String("real_time")
	require.NoError(t, err)
	assert.Equal(t, "Infinity", v)

	assert.Equal(t, `{"benchmarks":[{
		"name": "NaN",
		"run_name": "r",
		"real_time": Infinity,
		"cpu_time": -Infinity,
		"commit(t)": NaN,
		"note": "NaN stays a string"
	}]}`, string(rep.JSON()))

	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf))

	output := buf.String()
	assert.Contains(t, output, `"name": "NaN",`)
	assert.Contains(t, output, `"real_time": Infinity,`)
	assert.Contains(t, output, `"cpu_time": -Infinity,`)
	assert.Contains(t, output, `"commit(t)": NaN,`)
	assert.Contains(t, output, `"note": "NaN stays a string"`)
}

func TestParseNonFiniteKeyStaysInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"benchmarks": [{NaN: 1}]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"benchmarks": [], NaN: 1}`))
	assert.Error(t, err)
}

func TestParseRepeatedBenchmarksKey(t *testing.T) {
	input := `{
		"benchmarks": [{"name": "first", "run_name": "first"}],
		"benchmarks": [{"name": "second", "run_name": "second"}]
	}`

	rep, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Equal(t, 1, rep.Len())

	name, err := rep.Benchmarks[0].String("name")
	require.NoError(t, err)
	assert.Equal(t, "second", name)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `not json at all`},
		{"array root", `[{"name": "a"}]`},
		{"benchmarks not array", `{"benchmarks": {"name": "a"}}`},
		{"record not object", `{"benchmarks": [1, 2]}`},
		{"truncated", `{"benchmarks": [{"name": "a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseMissingBenchmarks(t *testing.T) {
	_, err := Parse([]byte(`{"context": {}}`))
	require.ErrorIs(t, err, ErrMissingBenchmarks)
}

func TestRecordSetKeepsOrder(t *testing.T) {
	rec, err := RecordFromJSON(`{"name":"b","run_name":"b","real_time":1}`)
	require.NoError(t, err)

	rec, err = rec.Set("name", "A_b")
	require.NoError(t, err)
	rec, err = rec.Set("time_unit", "ns")
	require.NoError(t, err)

	assert.Equal(t,
		`{"name":"A_b","run_name":"b","real_time":1,"time_unit":"ns"}`,
		rec.Raw())
}

func TestRecordLiteralFieldNames(t *testing.T) {
	rec, err := RecordFromJSON(`{"Goblin::merge(t)": 7, "a.b": 1, "a": {"b": 2}}`)
	require.NoError(t, err)

	assert.Equal(t, int64(7), rec.Get("Goblin::merge(t)").Int())
	assert.Equal(t, int64(1), rec.Get("a.b").Int())
	assert.False(t, rec.Has("b"))

	rec, err = rec.Set("a.b", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Get("a.b").Int())
	assert.Equal(t, int64(2), rec.Get("a").Get("b").Int())
}

func TestRecordSetRawNonFinite(t *testing.T) {
	rec, err := NewRecord().SetRaw("real_time", "NaN")
	require.NoError(t, err)
	assert.Equal(t, `{"real_time":NaN}`, rec.Raw())

	rec, err = rec.Set("name", "x")
	require.NoError(t, err)
	assert.Equal(t, `{"real_time":NaN,"name":"x"}`, rec.Raw())
}

func TestRecordFromJSONRejectsNonObject(t *testing.T) {
	_, err := RecordFromJSON(`[1]`)
	assert.Error(t, err)

	_, err = RecordFromJSON(`{"name":`)
	assert.Error(t, err)
}

func TestCopyFields(t *testing.T) {
	src, err := RecordFromJSON(`{"threads": 4, "iterations": 100, "run_type": "aggregate"}`)
	require.NoError(t, err)

	out, err := NewRecord().CopyFields(src, "run_type", "threads")
	require.NoError(t, err)
	assert.Equal(t, `{"run_type":"aggregate","threads":4}`, out.Raw())

	_, err = NewRecord().CopyFields(src, "repetitions")
	require.ErrorIs(t, err, ErrMissingField)
}

func TestWriteJSON(t *testing.T) {
	rep := New()

	rec, err := NewRecord().Set("name", "B_mem")
	require.NoError(t, err)
	rec, err = rec.Set("real_time", "123.4")
	require.NoError(t, err)
	rep.Append(rec)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf))

	want := `{
    "benchmarks": [
        {
            "name": "B_mem",
            "real_time": "123.4"
        }
    ]
}
`
	assert.Equal(t, want, buf.String())
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WriteJSON(&buf))

	var parsed map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Contains(t, parsed, "benchmarks")
	assert.Empty(t, parsed["benchmarks"])
}

func TestWriteTable(t *testing.T) {
	rep, err := Parse([]byte(sampleReport))
	require.NoError(t, err)

	mem, err := NewRecord().Set("name", "B_UltraHonkVerifierWasmMemory")
	require.NoError(t, err)
	mem, err = mem.Set("real_time", "123.40")
	require.NoError(t, err)
	rep.Append(mem)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteTable(&buf))

	output := buf.String()
	assert.Contains(t, output, "3 entries")
	assert.Contains(t, output, "| bench1 | bench1 | 1500 | 1499.25 | ms |")
	assert.Contains(t, output, "| B_UltraHonkVerifierWasmMemory | - | 123.4 | - | - |")
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WriteTable(&buf))

	output := buf.String()
	assert.Contains(t, output, "0 entries")
	assert.True(t, strings.HasSuffix(output,
		"|------|----------|-----------|----------|------|\n"))
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"t": 0}`, "0"},
		{`{"t": 1.5}`, "1.5"},
		{`{"t": 2.0004}`, "2"},
		{`{"t": 1e3}`, "1000"},
		{`{"t": "9.125"}`, "9.125"},
		{`{"t": "n/a"}`, "n/a"},
		{`{"t": NaN}`, "NaN"},
		{`{"t": -Infinity}`, "-Infinity"},
		{`{}`, "-"},
	}

	for _, tt := range tests {
		rec, err := RecordFromJSON(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, formatTime(rec, "t"), tt.raw)
	}
}

func TestCellEscapesPipes(t *testing.T) {
	rec, err := RecordFromJSON(`{"name": "a|b"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(cell(rec, "name"), `a\|b`))
}
