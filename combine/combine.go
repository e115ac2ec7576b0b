// Package combine merges benchmark reports and text logs into a single
// report, prefixing entry names per input and promoting selected
// counters to entries of their own.
package combine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/weiihann/benchcombine/memlog"
	"github.com/weiihann/benchcombine/report"
)

// MemoryBenchmarkName is the entry name given to a text log's memory
// sample, after the source prefix.
const MemoryBenchmarkName = "UltraHonkVerifierWasmMemory"

// TimeCounters returns the counter fields that are promoted to
// top-level entries when present on a benchmark.
func TimeCounters() []string {
	return []string{"commit(t)", "Goblin::merge(t)"}
}

// counterMetadata is copied from a benchmark onto each promoted counter.
var counterMetadata = []string{
	"run_name", "run_type", "repetitions", "repetition_index",
	"threads", "iterations",
}

// Combiner merges sources into one report. With Lenient set, JSON
// reports may contain comments and trailing commas.
type Combiner struct {
	Counters []string
	Warnings io.Writer
	Logger   *slog.Logger
	Lenient  bool
}

// New creates a Combiner for the fixed counter set. Missing-sample
// warnings are written to warnings.
func New(logger *slog.Logger, warnings io.Writer) *Combiner {
	return &Combiner{
		Counters: TimeCounters(),
		Warnings: warnings,
		Logger:   logger,
	}
}

// Combine reads every source in order and returns the merged report.
// Any read or parse failure aborts the whole run.
func (c *Combiner) Combine(
	ctx context.Context,
	sources []Source,
) (*report.Report, error) {
	out := report.New()

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger := c.Logger.With(
			slog.String("path", src.Path),
			slog.String("prefix", src.Prefix),
			slog.String("kind", src.Kind().String()),
		)

		before := out.Len()

		var err error

		switch src.Kind() {
		case KindTextLog:
			err = c.addTextLog(ctx, logger, out, src)
		case KindStructuredReport:
			err = c.addReport(out, src)
		}

		if err != nil {
			return nil, err
		}

		logger.DebugContext(ctx, "source combined",
			slog.Int("entries", out.Len()-before),
		)
	}

	return out, nil
}

func (c *Combiner) addTextLog(
	ctx context.Context,
	logger *slog.Logger,
	out *report.Report,
	src Source,
) error {
	f, err := os.Open(src.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Path, err)
	}
	defer f.Close()

	value, ok, err := memlog.LastSample(f)
	if err != nil {
		return fmt.Errorf("%s: %w", src.Path, err)
	}

	if !ok {
		fmt.Fprintf(c.Warnings, "Warning: No memory found in %s\n", src.Path)
		logger.WarnContext(ctx, "no memory sample found")

		return nil
	}

	rec, err := memoryRecord(src.Prefix, value)
	if err != nil {
		return fmt.Errorf("%s: %w", src.Path, err)
	}

	out.Append(rec)

	return nil
}

func (c *Combiner) addReport(out *report.Report, src Source) error {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", src.Path, err)
	}

	parse := report.Parse
	if c.Lenient {
		parse = report.ParseLenient
	}

	in, err := parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", src.Path, err)
	}

	for i, bench := range in.Benchmarks {
		derived, err := c.transform(bench, src.Prefix)
		if err != nil {
			return fmt.Errorf("%s: benchmark %d: %w", src.Path, i, err)
		}

		out.Append(derived...)
	}

	return nil
}

// transform renames a benchmark and returns the entries it contributes:
// the renamed benchmark itself when prefix is non-empty, followed by one
// entry per counter it carries.
func (c *Combiner) transform(
	bench report.Record,
	prefix string,
) ([]report.Record, error) {
	renamed, err := prefixNames(bench, prefix)
	if err != nil {
		return nil, err
	}

	var entries []report.Record
	if prefix != "" {
		entries = append(entries, renamed)
	}

	for _, counter := range c.Counters {
		if !renamed.Has(counter) {
			continue
		}

		rec, err := counterRecord(renamed, counter)
		if err != nil {
			return nil, fmt.Errorf("counter %q: %w", counter, err)
		}

		entries = append(entries, rec)
	}

	return entries, nil
}

func prefixNames(bench report.Record, prefix string) (report.Record, error) {
	for _, field := range []string{"name", "run_name"} {
		orig, err := bench.String(field)
		if err != nil {
			return bench, err
		}

		bench, err = bench.Set(field, prefix+orig)
		if err != nil {
			return bench, err
		}
	}

	return bench, nil
}

func counterRecord(bench report.Record, counter string) (report.Record, error) {
	value := bench.Get(counter).Raw

	rec, err := report.NewRecord().Set("name", counter)
	if err != nil {
		return rec, err
	}

	if rec, err = rec.CopyFields(bench, counterMetadata...); err != nil {
		return rec, err
	}

	if rec, err = rec.SetRaw("real_time", value); err != nil {
		return rec, err
	}

	if rec, err = rec.SetRaw("cpu_time", value); err != nil {
		return rec, err
	}

	return rec.Set("time_unit", "ns")
}

func memoryRecord(prefix, value string) (report.Record, error) {
	rec, err := report.NewRecord().Set("name", prefix+MemoryBenchmarkName)
	if err != nil {
		return rec, err
	}

	if rec, err = rec.Set("real_time", value); err != nil {
		return rec, err
	}

	return rec.Set("time_unit", "MiB")
}
