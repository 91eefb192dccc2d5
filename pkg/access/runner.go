// Package access measures how read traversal order over a memory-mapped
// dataset interacts with the page cache while a noise buffer competes for
// resident memory.
package access

import (
	"runtime"
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

// Random sources are derived from the run seed per purpose, so the noise
// fill never shifts the probe sequence.
const (
	probeSalt = 1
	noiseSalt = 2
)

// MeasureOptions parameterizes Measure.
type MeasureOptions struct {
	Method FetchMethod
	// NoiseSize is the size of the noise buffer in bytes. Zero disables it.
	NoiseSize uint64
	// Rand drives random probes and the shuffle.
	Rand *randutil.Source
	// NoiseRand fills the noise buffer.
	NoiseRand *randutil.Source
	// Latency records the duration of every fetch.
	Latency bool
	// OnFetch, when set, is called with every fetched entry in visit order.
	// The value is only valid for the duration of the call.
	OnFetch func(common.Record)
	Log     *zap.Logger
}

// Report is the outcome of one run.
type Report struct {
	Method FetchMethod
	// Entries is the dataset cardinality N.
	Entries uint64
	// Fetches is the number of entries visited, duplicates included.
	Fetches uint64
	// Bytes is the sum of key width and value length over all fetches.
	Bytes      uint64
	NoiseBytes uint64
	Elapsed    time.Duration
	Latency    *monitor.LatencySummary
	PeakRSS    uint64
}

// Measure fills the noise buffer, then opens a single read transaction on
// eng and visits the dataset with opts.Method. A key that the cardinality
// says must exist but is absent aborts the run with a consistency error.
func Measure(eng storage.Engine, opts MeasureOptions) (Report, error) {
	log := logging.OrNop(opts.Log)
	rng := opts.Rand
	if rng == nil {
		rng = randutil.New(nil)
	}
	noiseRng := opts.NoiseRand
	if noiseRng == nil {
		noiseRng = randutil.New(nil)
	}

	noise := AllocateNoise(opts.NoiseSize, noiseRng)
	log.Debug("noise buffer filled", zap.Int("bytes", len(noise)))

	rtxn, err := eng.BeginRead()
	if err != nil {
		return Report{}, err
	}
	defer rtxn.Release()

	f := &fetcher{
		txn:     rtxn,
		size:    monitor.NewSizeAccounting(),
		onFetch: opts.OnFetch,
	}
	if opts.Latency {
		f.latency = monitor.NewLatency()
	}

	start := time.Now()
	var n uint64
	switch opts.Method {
	case Iterative:
		n, err = f.iterate()
	case Random:
		n, err = f.random(rng)
	case Shuffled:
		n, err = f.shuffled(rng)
	default:
		err = common.ConfigError("invalid fetch method %d", int(opts.Method))
	}
	elapsed := time.Since(start)
	// the noise must stay resident for the whole traversal
	runtime.KeepAlive(noise)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Method:     opts.Method,
		Entries:    n,
		Fetches:    f.size.Entries(),
		Bytes:      f.size.Bytes(),
		NoiseBytes: uint64(len(noise)),
		Elapsed:    elapsed,
	}
	if f.latency != nil {
		s := f.latency.Summary()
		report.Latency = &s
	}
	return report, nil
}

type fetcher struct {
	txn     storage.ReadTxn
	size    *monitor.SizeAccounting
	latency *monitor.Latency
	onFetch func(common.Record)
	keyBuf  [common.KeyWidth]byte
	n       uint64
}

func (f *fetcher) iterate() (uint64, error) {
	t := time.Now()
	err := f.txn.Iterate(func(k, v []byte) error {
		if f.latency != nil {
			f.latency.Record(time.Since(t))
		}
		f.size.Add(len(k), len(v))
		if f.onFetch != nil {
			key, err := common.Uint64BE.Decode(k)
			if err != nil {
				return err
			}
			f.onFetch(common.Record{Key: key, Value: v})
		}
		if f.latency != nil {
			t = time.Now()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return f.size.Entries(), nil
}

func (f *fetcher) random(rng *randutil.Source) (uint64, error) {
	n, err := f.txn.Len()
	if err != nil {
		return 0, err
	}
	f.n = n
	for probes := uint64(0); probes < n; probes++ {
		if err := f.fetch(common.KeyType(rng.Uint64N(n))); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (f *fetcher) shuffled(rng *randutil.Source) (uint64, error) {
	n, err := f.txn.Len()
	if err != nil {
		return 0, err
	}
	f.n = n
	keys := make([]common.KeyType, n)
	for i := range keys {
		keys[i] = common.KeyType(i)
	}
	rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	for _, k := range keys {
		if err := f.fetch(k); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (f *fetcher) fetch(k common.KeyType) error {
	key := common.Uint64BE.Encode(f.keyBuf[:], k)
	var t time.Time
	if f.latency != nil {
		t = time.Now()
	}
	v, ok, err := f.txn.Get(key)
	if err != nil {
		return err
	}
	if f.latency != nil {
		f.latency.Record(time.Since(t))
	}
	if !ok {
		return errors.WithHint(
			errors.Mark(errors.Newf("key %d is missing from a dataset of %d entries", k, f.n), common.ErrConsistency),
			"the dataset was generated with a different configuration than the one measuring it")
	}
	f.size.Add(len(key), len(v))
	if f.onFetch != nil {
		f.onFetch(common.Record{Key: k, Value: v})
	}
	return nil
}

// Run opens the configured dataset read-only and measures it with the
// configured fetch method and noise size.
func Run(cfg *config.Config, log *zap.Logger) (Report, error) {
	log = logging.OrNop(log)
	method, err := ParseFetchMethod(cfg.Run.FetchMethod)
	if err != nil {
		return Report{}, err
	}
	if err := cfg.Dataset.Validate(); err != nil {
		return Report{}, err
	}

	mapSize := cfg.Dataset.EffectiveMapSize()
	eng, err := storage.Open(cfg.Dataset.Engine, cfg.Dataset.Path, storage.Options{
		MapSize:  int64(mapSize),
		ReadOnly: true,
	})
	if err != nil {
		return Report{}, err
	}
	defer eng.Close()

	log.Info("measuring",
		zap.String("path", cfg.Dataset.Path),
		zap.String("engine", cfg.Dataset.Engine),
		zap.Stringer("method", method),
		zap.Stringer("allocate", cfg.Run.Allocate))

	report, err := Measure(eng, MeasureOptions{
		Method:    method,
		NoiseSize: cfg.Run.Allocate.Bytes(),
		Rand:      randutil.Derive(cfg.Run.Seed, probeSalt),
		NoiseRand: randutil.Derive(cfg.Run.Seed, noiseSalt),
		Latency:   cfg.Run.Latency,
		Log:       log,
	})
	if err != nil {
		return Report{}, err
	}

	if rss, err := monitor.PeakRSS(); err == nil {
		report.PeakRSS = rss
	} else {
		log.Debug("peak rss unavailable", zap.Error(err))
	}
	fields := []zap.Field{
		zap.Uint64("entries", report.Entries),
		zap.Uint64("fetches", report.Fetches),
		zap.Uint64("bytes", report.Bytes),
		zap.Duration("elapsed", report.Elapsed),
		zap.Uint64("peak_rss", report.PeakRSS),
	}
	if faults, err := monitor.MajorFaults(); err == nil {
		fields = append(fields, zap.Uint64("major_faults", faults))
	}
	if l := report.Latency; l != nil {
		fields = append(fields,
			zap.Duration("mean", l.Mean),
			zap.Duration("p50", l.P50),
			zap.Duration("p99", l.P99),
			zap.Duration("max", l.Max))
	}
	log.Info("measured", fields...)
	return report, nil
}
