package cli

import (
	"github.com/spf13/pflag"

	"mmapbench/pkg/config"
	"mmapbench/pkg/storage"
)

var flagUsage = map[string]string{
	"config":        "YAML configuration file; flags override its values",
	"path":          "dataset directory",
	"size":          "logical dataset size, in bytes or with a unit such as 256MiB",
	"engine":        "storage engine (bolt, sqlite or memory)",
	"map-size":      "address space reserved for the store mapping (default twice the dataset size)",
	"max-value-len": "exclusive upper bound on value lengths",
	"seed":          "seed for reproducible randomness (default unseeded)",
	"fetch-method":  "traversal strategy: iterative, random or shuffled",
	"allocate":      "size of the noise buffer filled before measuring, e.g. 1GiB",
	"latency":       "record per-fetch latency and report percentiles",
	"log-level":     "log level (debug, info, warn, error)",
}

// datasetFlags holds the flags shared by prepare and run. Values are only
// applied to the configuration when the flag was set explicitly.
type datasetFlags struct {
	configPath string
	path       string
	engine     string
	mapSize    config.ByteSize
	seed       uint64
	logLevel   string
}

func (f *datasetFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", flagUsage["config"])
	fs.StringVar(&f.path, "path", config.DefaultPath, flagUsage["path"])
	fs.StringVar(&f.engine, "engine", storage.DefaultEngine, flagUsage["engine"])
	fs.Var(&f.mapSize, "map-size", flagUsage["map-size"])
	fs.Lookup("map-size").DefValue = ""
	fs.Uint64Var(&f.seed, "seed", 0, flagUsage["seed"])
	fs.StringVar(&f.logLevel, "log-level", "info", flagUsage["log-level"])
}

// load reads the configuration file and overlays the explicitly set flags.
func (f *datasetFlags) load(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if changed(fs, "path") {
		cfg.Dataset.Path = f.path
	}
	if changed(fs, "engine") {
		cfg.Dataset.Engine = f.engine
	}
	if changed(fs, "map-size") {
		cfg.Dataset.MapSize = f.mapSize
	}
	if changed(fs, "log-level") {
		cfg.Log.Level = f.logLevel
	}
	return cfg, nil
}

// seedFlag returns the --seed value when it was set.
func (f *datasetFlags) seedFlag(fs *pflag.FlagSet) *uint64 {
	if !changed(fs, "seed") {
		return nil
	}
	seed := f.seed
	return &seed
}
