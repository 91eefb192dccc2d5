package cli

import (
	"github.com/spf13/cobra"

	"mmapbench/pkg/config"
	"mmapbench/pkg/dataset"
	"mmapbench/pkg/logging"
)

// Fixed parameters of the generate command.
const (
	generatePath     = config.DefaultPath
	generateSize     = config.DefaultSize
	generateMapSize  = 2 * config.DefaultSize
	generateKeyCodec = "int64"
)

// NewGenerateCmd returns the generate command. It takes no flags and always
// writes a 5 GiB dataset with signed 64-bit keys to random.mdb.
func NewGenerateCmd() *cobra.Command {
	cmd := newCommand("generate", "Generate the fixed 5 GiB benchmark dataset")
	cmd.Long = `Generate writes keys 0, 1, 2, ... with random values of up to 1023 bytes
into ` + generatePath + ` until the logical size reaches 5 GiB.`
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runGenerate(generateConfig())
	}
	return cmd
}

func generateConfig() *config.Config {
	cfg := config.Default()
	cfg.Dataset.Path = generatePath
	cfg.Dataset.Size = generateSize
	cfg.Dataset.MapSize = generateMapSize
	cfg.Dataset.KeyEncoding = generateKeyCodec
	return cfg
}

func runGenerate(cfg *config.Config) error {
	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()
	_, err = dataset.Prepare(cfg.Dataset, log)
	return err
}
