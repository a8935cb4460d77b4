package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
)

// phase tracks pass/fail for one validation step.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd() *cobra.Command {
	var thresholdsFile string

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check hourly CSV files without writing artifacts",
		Long: `Check that each file has the required columns, parses, is usable after
repair and can be assessed with the configured thresholds. Nothing is written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(thresholdsFile)
			if err != nil {
				return err
			}
			th := e.thresholds
			loader := ingest.NewLoader(e.logger)

			failed := 0
			for _, path := range args {
				if !validateFile(cmd.OutOrStdout(), loader, th, path) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&thresholdsFile, "thresholds", "", "YAML threshold file (default THRESHOLDS_FILE)")
	return cmd
}

func validateFile(out io.Writer, loader *ingest.Loader, th domain.Thresholds, path string) bool {
	fmt.Fprintf(out, "=== %s ===\n", path)

	load := &phase{name: "schema and values"}
	phases := []*phase{load}

	series, stats, err := loader.LoadFile(path)
	if err != nil {
		load.errorf("%v", err)
	} else {
		assess := &phase{name: "assessment"}
		phases = append(phases, assess)
		a, err := domain.Assess(series, th)
		if err != nil {
			assess.errorf("%v", err)
		}
		var partial []string
		for _, d := range a.Days {
			if d.Hours < 24 {
				partial = append(partial, fmt.Sprintf("%s (%dh)", d.Date, d.Hours))
			}
		}
		if len(partial) > 0 {
			fmt.Fprintf(out, "  note: %d partial days: %v\n", len(partial), partial)
		}
	}

	ok := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			ok = false
		}
		fmt.Fprintf(out, "  %-20s %s\n", p.name, status)
	}

	if load.passed() {
		fmt.Fprintf(out, "  rows: %d, repaired cells: %d, duplicates dropped: %d\n",
			stats.Rows, stats.Repaired, stats.Duplicates)
		if stats.Rows > 0 {
			fmt.Fprintf(out, "  range: %s to %s\n",
				stats.First.Format(time.DateTime), stats.Last.Format(time.DateTime))
		}
	}

	for _, p := range phases {
		for _, e := range p.errors {
			fmt.Fprintf(out, "  %s: %s\n", p.name, e)
		}
	}
	fmt.Fprintln(out)
	return ok
}
