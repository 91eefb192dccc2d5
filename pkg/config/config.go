package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"mmapbench/pkg/common"
	"mmapbench/pkg/storage"
)

const (
	// DefaultPath is where datasets are stored unless told otherwise.
	DefaultPath = "random.mdb"
	// DefaultSize is the default logical dataset size.
	DefaultSize ByteSize = 5 << 30
	// DefaultMaxValueLen bounds value lengths: every value is shorter than it.
	DefaultMaxValueLen = 1024
)

type Config struct {
	Dataset Dataset `yaml:"dataset"`
	Run     Run     `yaml:"run"`
	Log     Log     `yaml:"log"`
}

type Dataset struct {
	Path string   `yaml:"path"`
	Size ByteSize `yaml:"size"`
	// MapSize is the address space reserved for the store mapping. Zero
	// means twice Size, leaving headroom for the engine's index pages.
	MapSize     ByteSize `yaml:"map_size"`
	Engine      string   `yaml:"engine"`
	MaxValueLen int      `yaml:"max_value_len"`
	KeyEncoding string   `yaml:"key_encoding"` // uint64 or int64
	// Seed makes value contents reproducible. Nil means unseeded.
	Seed *uint64 `yaml:"seed"`
}

type Run struct {
	FetchMethod string   `yaml:"fetch_method"` // iterative, random or shuffled
	Allocate    ByteSize `yaml:"allocate"`     // noise buffer size
	// Seed makes the noise content, random probes and shuffle order
	// reproducible. Nil means unseeded.
	Seed    *uint64 `yaml:"seed"`
	Latency bool    `yaml:"latency"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Dataset: Dataset{
			Path:        DefaultPath,
			Size:        DefaultSize,
			Engine:      storage.DefaultEngine,
			MaxValueLen: DefaultMaxValueLen,
			KeyEncoding: "uint64",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads configPath on top of the defaults. An empty path searches the
// usual locations and falls back to the defaults when none exists.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		for _, p := range []string{"configs/mmapbench.yaml", "mmapbench.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, errors.Mark(errors.Wrapf(err, "parse %s", p), common.ErrConfig)
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, errors.Mark(errors.Wrap(err, "read config"), common.ErrConfig)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, errors.Mark(errors.Wrapf(err, "parse %s", configPath), common.ErrConfig)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Dataset.Path == "" {
		cfg.Dataset.Path = DefaultPath
	}
	if cfg.Dataset.Size == 0 {
		cfg.Dataset.Size = DefaultSize
	}
	if cfg.Dataset.Engine == "" {
		cfg.Dataset.Engine = storage.DefaultEngine
	}
	if cfg.Dataset.MaxValueLen <= 0 {
		cfg.Dataset.MaxValueLen = DefaultMaxValueLen
	}
	if cfg.Dataset.KeyEncoding == "" {
		cfg.Dataset.KeyEncoding = "uint64"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// EffectiveMapSize resolves a zero MapSize to twice the dataset size.
func (d Dataset) EffectiveMapSize() ByteSize {
	if d.MapSize > 0 {
		return d.MapSize
	}
	return 2 * d.Size
}

// Validate checks the dataset section.
func (d Dataset) Validate() error {
	if d.Path == "" {
		return common.ConfigError("dataset path is empty")
	}
	if d.MaxValueLen < 1 {
		return common.ConfigError("max_value_len must be at least 1, got %d", d.MaxValueLen)
	}
	if _, err := common.CodecByName(d.KeyEncoding); err != nil {
		return err
	}
	for _, name := range storage.Names() {
		if name == d.Engine {
			return nil
		}
	}
	return common.ConfigError("unknown engine %q (available: %v)", d.Engine, storage.Names())
}
