package report

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"
)

// Google Benchmark writes NaN, Infinity and -Infinity for non-finite
// counters. They are not JSON, so they are held as marked strings while a
// report is in memory and written back bare.
const nonFiniteMark = `\u0000nonfinite:`

var nonFiniteTokens = []string{"-Infinity", "Infinity", "NaN"}

// markNonFinite replaces bare non-finite tokens in value position with
// marked string placeholders. Tokens inside strings or used as object
// keys are left alone, so invalid input stays invalid.
func markNonFinite(data []byte) []byte {
	if !bytes.Contains(data, []byte("NaN")) &&
		!bytes.Contains(data, []byte("Infinity")) {
		return data
	}

	out := make([]byte, 0, len(data)+32)
	inString := false
	expectKey := false

	var stack []byte

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inString {
			out = append(out, c)

			switch c {
			case '\\':
				if i+1 < len(data) {
					i++
					out = append(out, data[i])
				}
			case '"':
				inString = false
			}

			continue
		}

		if c == '"' {
			inString = true
			out = append(out, c)

			continue
		}

		switch c {
		case '{':
			stack = append(stack, c)
			expectKey = true
		case '[':
			stack = append(stack, c)
			expectKey = false
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

			expectKey = false
		case ',':
			expectKey = len(stack) > 0 && stack[len(stack)-1] == '{'
		case ':':
			expectKey = false
		}

		if tok := nonFiniteAt(data[i:]); tok != "" && !expectKey {
			out = append(out, '"')
			out = append(out, nonFiniteMark...)
			out = append(out, tok...)
			out = append(out, '"')
			i += len(tok) - 1

			continue
		}

		out = append(out, c)
	}

	return out
}

func nonFiniteAt(data []byte) string {
	for _, tok := range nonFiniteTokens {
		if bytes.HasPrefix(data, []byte(tok)) {
			return tok
		}
	}

	return ""
}

// restoreNonFinite turns marked placeholders back into bare tokens.
func restoreNonFinite(data []byte) []byte {
	if !bytes.Contains(data, []byte(nonFiniteMark)) {
		return data
	}

	for _, tok := range nonFiniteTokens {
		data = bytes.ReplaceAll(data,
			[]byte(`"`+nonFiniteMark+tok+`"`), []byte(tok))
	}

	return data
}

// text renders a field value, showing non-finite placeholders as their
// original token.
func text(v gjson.Result) string {
	if v.Type == gjson.String {
		if tok, ok := strings.CutPrefix(v.Str, "\x00nonfinite:"); ok {
			return tok
		}
	}

	return v.String()
}
