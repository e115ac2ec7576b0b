// Package memlog extracts memory usage samples from plain text benchmark
// logs.
package memlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// samplePattern matches entries such as "(mem: 123.4MiB)".
var samplePattern = regexp.MustCompile(`\(mem: ([\d.]+)MiB\)`)

// LastSample returns the value of the last memory sample in r, exactly as
// written in the log. ok is false when no line carries a sample. Lines
// end at "\n", "\r\n" or a lone "\r".
func LastSample(r io.Reader) (value string, ok bool, err error) {
	br := bufio.NewReader(r)

	for {
		chunk, readErr := br.ReadString('\n')

		for _, line := range strings.Split(chunk, "\r") {
			if m := samplePattern.FindStringSubmatch(line); m != nil {
				value, ok = m[1], true
			}
		}

		if errors.Is(readErr, io.EOF) {
			return value, ok, nil
		}

		if readErr != nil {
			return "", false, fmt.Errorf("read log: %w", readErr)
		}
	}
}
