package cli

import (
	"github.com/spf13/cobra"

	"mmapbench/pkg/config"
	"mmapbench/pkg/dataset"
	"mmapbench/pkg/logging"
)

type prepareFlags struct {
	datasetFlags
	size        config.ByteSize
	maxValueLen int
}

// NewPrepareCmd returns the prepare command, which generates a dataset of
// a chosen size at a chosen path.
func NewPrepareCmd() *cobra.Command {
	f := &prepareFlags{size: config.DefaultSize}
	cmd := newCommand("prepare", "Generate a benchmark dataset")
	fs := cmd.Flags()
	f.register(fs)
	fs.Var(&f.size, "size", flagUsage["size"])
	fs.IntVar(&f.maxValueLen, "max-value-len", config.DefaultMaxValueLen, flagUsage["max-value-len"])

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := f.load(fs)
		if err != nil {
			return err
		}
		if changed(fs, "size") {
			cfg.Dataset.Size = f.size
		}
		if changed(fs, "max-value-len") {
			cfg.Dataset.MaxValueLen = f.maxValueLen
		}
		if seed := f.seedFlag(fs); seed != nil {
			cfg.Dataset.Seed = seed
		}

		log, err := logging.New(cfg.Log.Level)
		if err != nil {
			return err
		}
		defer log.Sync()
		_, err = dataset.Prepare(cfg.Dataset, log)
		return err
	}
	return cmd
}
