// Package dataset bulk-loads synthetic datasets of a given logical size.
package dataset

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"mmapbench/pkg/common"
	"mmapbench/pkg/config"
	"mmapbench/pkg/logging"
	"mmapbench/pkg/monitor"
	"mmapbench/pkg/randutil"
	"mmapbench/pkg/storage"
)

const progressEvery = 1 << 20

// GenerateOptions parameterizes Generate.
type GenerateOptions struct {
	// TargetSize is the logical size, in bytes, at which insertion stops.
	TargetSize uint64
	// MaxValueLen is the exclusive upper bound on value lengths.
	MaxValueLen int
	Codec       common.KeyCodec
	Rand        *randutil.Source
	Log         *zap.Logger
}

// Stats describes a generated dataset.
type Stats struct {
	Entries uint64
	Bytes   uint64
	Elapsed time.Duration
}

// Generate inserts keys 0, 1, 2, … with random values into eng inside one
// write transaction until the logical size reaches opts.TargetSize, then
// commits once. At least one entry is always inserted. On any failure the
// transaction is aborted and nothing becomes visible.
func Generate(eng storage.Engine, opts GenerateOptions) (Stats, error) {
	log := logging.OrNop(opts.Log)
	if opts.MaxValueLen < 1 {
		return Stats{}, common.ConfigError("max value length must be at least 1, got %d", opts.MaxValueLen)
	}
	codec := opts.Codec
	if codec == nil {
		codec = common.Uint64BE
	}
	rng := opts.Rand
	if rng == nil {
		rng = randutil.New(nil)
	}
	values := NewValueBuffer(opts.MaxValueLen, rng)

	start := time.Now()
	wtxn, err := eng.BeginWrite()
	if err != nil {
		return Stats{}, err
	}

	size := monitor.NewSizeAccounting()
	keyBuf := make([]byte, 0, common.KeyWidth)
	for i := common.KeyType(0); ; i++ {
		key := codec.Encode(keyBuf, i)
		value := values.Next()
		if err := wtxn.Put(key, value); err != nil {
			_ = wtxn.Abort()
			return Stats{}, errors.Wrapf(err, "insert key %d", i)
		}
		size.Add(len(key), len(value))
		if size.Reached(opts.TargetSize) {
			break
		}
		if size.Entries()%progressEvery == 0 {
			log.Debug("generating",
				zap.Uint64("entries", size.Entries()),
				zap.Uint64("bytes", size.Bytes()),
				zap.Uint64("target", opts.TargetSize))
		}
	}

	if err := wtxn.Commit(); err != nil {
		return Stats{}, err
	}
	return Stats{Entries: size.Entries(), Bytes: size.Bytes(), Elapsed: time.Since(start)}, nil
}

// Prepare creates the dataset directory, opens the configured engine with
// the configured map size and generates the dataset into it.
func Prepare(cfg config.Dataset, log *zap.Logger) (Stats, error) {
	log = logging.OrNop(log)
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	codec, err := common.CodecByName(cfg.KeyEncoding)
	if err != nil {
		return Stats{}, err
	}
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return Stats{}, errors.Mark(errors.Wrapf(err, "create %s", cfg.Path), common.ErrConfig)
	}

	mapSize := cfg.EffectiveMapSize()
	eng, err := storage.Open(cfg.Engine, cfg.Path, storage.Options{MapSize: int64(mapSize)})
	if err != nil {
		return Stats{}, err
	}

	log.Info("generating dataset",
		zap.String("path", cfg.Path),
		zap.String("engine", cfg.Engine),
		zap.Stringer("size", cfg.Size),
		zap.Stringer("map_size", mapSize),
		zap.String("keys", codec.Name()))

	stats, err := Generate(eng, GenerateOptions{
		TargetSize:  cfg.Size.Bytes(),
		MaxValueLen: cfg.MaxValueLen,
		Codec:       codec,
		Rand:        randutil.New(cfg.Seed),
		Log:         log,
	})
	if cerr := eng.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Stats{}, err
	}

	log.Info("dataset generated",
		zap.Uint64("entries", stats.Entries),
		zap.Uint64("bytes", stats.Bytes),
		zap.Duration("elapsed", stats.Elapsed))
	return stats, nil
}
