package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
	"github.com/couchcryptid/flood-risk-etl/internal/pipeline"
	"github.com/couchcryptid/flood-risk-etl/internal/report"
	"github.com/couchcryptid/flood-risk-etl/internal/sample"
)

type runOptions struct {
	csvFiles   []string
	datasets   []string
	seed       uint64
	outputDir  string
	thresholds string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Assess CSV files or the sample scenarios and write artifacts",
		Long: `Assess every input dataset and write a summary CSV, a JSON document and an
PNG figure per dataset. Without --csv the built-in sample scenarios are
generated in memory and assessed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runAssess(ctx, cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.csvFiles, "csv", nil, "hourly CSV file to assess (repeatable, .csv.zst accepted)")
	f.StringSliceVar(&opts.datasets, "dataset", nil, "sample scenario to assess: "+fmt.Sprint(sample.Keys())+" (default all)")
	f.Uint64Var(&opts.seed, "seed", sample.DefaultSeed, "random seed for the sample scenarios")
	f.StringVar(&opts.outputDir, "out", "", "artifact directory (default OUTPUT_DIR)")
	f.StringVar(&opts.thresholds, "thresholds", "", "YAML threshold file (default THRESHOLDS_FILE)")
	cmd.MarkFlagsMutuallyExclusive("csv", "dataset")

	return cmd
}

func runAssess(ctx context.Context, out io.Writer, opts runOptions) error {
	e, err := loadEnv(opts.thresholds)
	if err != nil {
		return err
	}

	sources, err := selectSources(opts, ingest.NewLoader(e.logger))
	if err != nil {
		return err
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = e.cfg.OutputDir
	}
	s, err := buildSinks(ctx, e, outputDir, true)
	if err != nil {
		return err
	}
	defer s.Close(e.logger)

	metrics := observability.NewBatchMetrics()
	p := pipeline.New(pipeline.NewAssessor(e.thresholds), s.loaders, e.logger, metrics, e.cfg.Workers)

	batch := p.Run(ctx, report.NewRunID(), sources)

	for _, res := range batch.Results {
		if res.Err != nil {
			fmt.Fprintf(out, "\n=== %s: FAILED: %v\n", res.Dataset, res.Err)
			continue
		}
		fmt.Fprintf(out, "\n=== %s (%d days) ===\n", res.Dataset, len(res.Document.Days))
		if err := report.WriteTable(out, res.Document.Summary); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "\nrun %s: %d datasets, %d failed, artifacts in %s\n",
		batch.RunID, len(batch.Results), batch.Failed(), s.location)

	if e.cfg.PushgatewayURL != "" {
		if err := metrics.Push(ctx, e.cfg.PushgatewayURL, "floodrisk"); err != nil {
			e.logger.Error("metrics push failed", "url", e.cfg.PushgatewayURL, "error", err)
		}
	}

	if batch.Failed() > 0 {
		return fmt.Errorf("%d of %d datasets failed: %w", batch.Failed(), len(batch.Results), batch.Err())
	}
	return nil
}

// selectSources builds extractors for the CSV files, or for the named sample
// scenarios, or for every scenario when neither is given. Two inputs whose
// artifacts would share a file name are rejected.
func selectSources(opts runOptions, loader *ingest.Loader) ([]pipeline.Extractor, error) {
	var (
		sources []pipeline.Extractor
		inputs  []string
	)
	if len(opts.csvFiles) > 0 {
		for _, path := range opts.csvFiles {
			sources = append(sources, pipeline.NewFileSource(path, loader))
			inputs = append(inputs, path)
		}
		return sources, uniqueLabels(sources, inputs)
	}

	scenarios := sample.Scenarios()
	if len(opts.datasets) > 0 {
		scenarios = make([]sample.Scenario, 0, len(opts.datasets))
		for _, key := range opts.datasets {
			sc, err := sample.Lookup(key)
			if err != nil {
				return nil, err
			}
			scenarios = append(scenarios, sc)
		}
	}

	for _, sc := range scenarios {
		sources = append(sources, pipeline.NewSampleSource(sc, opts.seed))
		inputs = append(inputs, sc.Key)
	}
	return sources, uniqueLabels(sources, inputs)
}

func uniqueLabels(sources []pipeline.Extractor, inputs []string) error {
	seen := make(map[string]string, len(sources))
	for i, src := range sources {
		label := report.SafeLabel(src.Name())
		if prev, ok := seen[label]; ok {
			return fmt.Errorf("inputs %q and %q both write artifacts named %s_*", prev, inputs[i], label)
		}
		seen[label] = inputs[i]
	}
	return nil
}
