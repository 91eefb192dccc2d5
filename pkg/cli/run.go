package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mmapbench/pkg/access"
	"mmapbench/pkg/common"
	"mmapbench/pkg/config"
	"mmapbench/pkg/logging"
)

type runFlags struct {
	datasetFlags
	method   access.FetchMethod
	allocate config.ByteSize
	latency  bool
}

// NewRunCmd returns the run command. It fills a noise buffer, traverses an
// existing dataset and prints the number of bytes fetched to stdout.
func NewRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := newCommand("run", "Measure one access pattern over an existing dataset")
	fs := cmd.Flags()
	f.register(fs)
	fs.Var(&f.method, "fetch-method", flagUsage["fetch-method"])
	fs.Lookup("fetch-method").DefValue = ""
	fs.Var(&f.allocate, "allocate", flagUsage["allocate"])
	fs.Lookup("allocate").DefValue = ""
	fs.BoolVar(&f.latency, "latency", false, flagUsage["latency"])

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := f.load(fs)
		if err != nil {
			return err
		}
		if changed(fs, "fetch-method") {
			cfg.Run.FetchMethod = f.method.String()
		}
		if changed(fs, "allocate") {
			cfg.Run.Allocate = f.allocate
		} else if cfg.Run.Allocate == 0 {
			return common.ConfigError("--allocate is required")
		}
		if cfg.Run.FetchMethod == "" {
			return common.ConfigError("--fetch-method is required")
		}
		if changed(fs, "latency") {
			cfg.Run.Latency = f.latency
		}
		if seed := f.seedFlag(fs); seed != nil {
			cfg.Run.Seed = seed
		}

		log, err := logging.New(cfg.Log.Level)
		if err != nil {
			return err
		}
		defer log.Sync()
		report, err := access.Run(cfg, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "The amount of data fetched is about %d bytes.\n", report.Bytes)
		return nil
	}
	return cmd
}
