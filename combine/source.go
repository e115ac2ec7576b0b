package combine

import (
	"errors"
	"strings"
)

// ErrUsage is returned when the arguments are not prefix/file pairs.
var ErrUsage = errors.New("arguments must be <prefix> <file> pairs")

// Kind selects how an input file is read.
type Kind int

const (
	// KindStructuredReport is a JSON report with a "benchmarks" array.
	KindStructuredReport Kind = iota
	// KindTextLog is a plain text log carrying memory samples.
	KindTextLog
)

func (k Kind) String() string {
	switch k {
	case KindStructuredReport:
		return "report"
	case KindTextLog:
		return "text-log"
	default:
		return "unknown"
	}
}

// KindOf classifies a path by its suffix. Only ".txt" marks a text log.
func KindOf(path string) Kind {
	if strings.HasSuffix(path, ".txt") {
		return KindTextLog
	}

	return KindStructuredReport
}

// Source is one input file and the prefix applied to its entries.
type Source struct {
	Prefix string
	Path   string
}

// Kind returns how the source file is read.
func (s Source) Kind() Kind {
	return KindOf(s.Path)
}

// ParseArgs pairs up positional arguments (program name excluded) as
// prefix, path, prefix, path, ...
func ParseArgs(args []string) ([]Source, error) {
	if len(args) < 2 || len(args)%2 != 0 {
		return nil, ErrUsage
	}

	sources := make([]Source, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		sources = append(sources, Source{Prefix: args[i], Path: args[i+1]})
	}

	return sources, nil
}
