// Package main provides the CLI entry point for benchcombine, which merges
// benchmark reports and memory logs into one JSON report.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/weiihann/benchcombine/combine"
)

const usageLine = "Usage: benchcombine <Prefix1> <file1> <Prefix2> <file2> ..."

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit status.
func execute(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
) int {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: level,
	}))

	root := newRootCmd(logger, level)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, combine.ErrUsage) {
			fmt.Fprintln(stdout, usageLine)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}

		return 1
	}

	return 0
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var (
		output  string
		format  string
		verbose bool
		lenient bool
	)

	root := &cobra.Command{
		Use:   "benchcombine <Prefix1> <file1> [<Prefix2> <file2> ...]",
		Short: "Merge benchmark reports into one JSON report",
		Long: `Benchcombine merges benchmark JSON reports and memory logs into one
report. Each input file is preceded by a prefix added to the names of its
entries. An empty prefix keeps only the counter entries derived from the file.

Files ending in .txt are read as logs and contribute their last
"(mem: <n>MiB)" sample. Any other file is read as a JSON report with a
"benchmarks" array.

Flags must come before the first prefix. Use -- to end flags when a prefix
starts with a dash, as in: benchcombine -o out.json -- -fast- a.json`,
		Args: func(_ *cobra.Command, args []string) error {
			_, err := combine.ParseArgs(args)
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := combine.ParseArgs(args)
			if err != nil {
				return err
			}

			return runCombine(cmd.Context(), logger, cmd.OutOrStdout(),
				combineConfig{
					sources: sources,
					output:  output,
					format:  format,
					lenient: lenient,
				})
		},
	}

	flags := root.Flags()
	flags.SetInterspersed(false)
	flags.StringVarP(&output, "output", "o", "",
		"Write the report to this file instead of stdout")
	flags.StringVar(&format, "format", formatJSON,
		"Output format: json, table")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	flags.BoolVar(&lenient, "lenient", false,
		"Accept comments and trailing commas in JSON reports")

	return root
}

const (
	formatJSON  = "json"
	formatTable = "table"
)

type combineConfig struct {
	sources []combine.Source
	output  string
	format  string
	lenient bool
}

func runCombine(
	ctx context.Context,
	logger *slog.Logger,
	stdout io.Writer,
	cfg combineConfig,
) error {
	if cfg.format != formatJSON && cfg.format != formatTable {
		return fmt.Errorf("unknown format %q (want %s or %s)",
			cfg.format, formatJSON, formatTable)
	}

	logger.DebugContext(ctx, "combining reports",
		slog.Int("sources", len(cfg.sources)),
		slog.String("format", cfg.format),
		slog.Bool("lenient", cfg.lenient),
	)

	combiner := combine.New(logger, stdout)
	combiner.Lenient = cfg.lenient

	rep, err := combiner.Combine(ctx, cfg.sources)
	if err != nil {
		return err
	}

	// Render fully before writing so a failure leaves no partial report.
	var buf bytes.Buffer

	switch cfg.format {
	case formatTable:
		err = rep.WriteTable(&buf)
	default:
		err = rep.WriteJSON(&buf)
	}

	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if cfg.output != "" {
		if err := os.WriteFile(cfg.output, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		logger.InfoContext(ctx, "report written",
			slog.String("path", cfg.output),
			slog.Int("entries", rep.Len()),
		)

		return nil
	}

	if _, err := stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
