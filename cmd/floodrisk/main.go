// Command floodrisk assesses compound inland flood risk from hourly
// hydrological observations.
//
// Usage:
//
//	floodrisk run                          # all three sample scenarios
//	floodrisk run --dataset ahr            # one sample scenario
//	floodrisk run --csv basin.csv          # custom CSV files (repeatable)
//	floodrisk generate --out data          # write the sample CSVs
//	floodrisk validate data/*.csv          # check input files only
//	floodrisk serve                        # HTTP assessment service
//
// Settings come from the environment (see internal/config); the threshold
// calibration from THRESHOLDS_FILE and FLOODRISK_* overrides.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "floodrisk",
		Short: "Compound inland flood-risk assessment",
		Long: `floodrisk derives flood load and saturation excess indicators from hourly
rainfall, soil moisture and river discharge, classifies every day as Stable,
Straining or Failure, and renders a summary table, JSON document and figure.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newGenerateCmd(),
		newValidateCmd(),
	)
	return root
}
