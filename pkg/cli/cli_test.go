package cli

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"mmapbench/pkg/common"
	"mmapbench/pkg/config"
)

var resultLine = regexp.MustCompile(`^The amount of data fetched is about (\d+) bytes\.\n$`)

// runCmd executes a fresh run command and returns its exit code, stdout
// and stderr.
func runCmd(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	cmd := NewRunCmd()
	cmd.SetOut(&stdout)
	code := Execute(cmd, args, &stderr)
	return code, stdout.String(), stderr.String()
}

func prepare(t *testing.T, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "random.mdb")
	var stderr bytes.Buffer
	code := Execute(NewPrepareCmd(), append([]string{"--path", path, "--log-level", "error"}, args...), &stderr)
	require.Equal(t, 0, code, stderr.String())
	return path
}

func fetched(t *testing.T, stdout string) uint64 {
	t.Helper()
	m := resultLine.FindStringSubmatch(stdout)
	require.NotNil(t, m, "unexpected output %q", stdout)
	n, err := strconv.ParseUint(m[1], 10, 64)
	require.NoError(t, err)
	return n
}

func TestPrepareAndRun(t *testing.T) {
	path := prepare(t, "--size", "256KiB", "--seed", "7")

	totals := make(map[string]uint64)
	for _, method := range []string{"iterative", "shuffled", "random"} {
		code, stdout, stderr := runCmd("--path", path, "--fetch-method", method,
			"--allocate", "1MiB", "--seed", "3", "--log-level", "error")
		require.Equal(t, 0, code, stderr)
		totals[method] = fetched(t, stdout)
	}
	require.Equal(t, totals["iterative"], totals["shuffled"])
	require.GreaterOrEqual(t, totals["iterative"], uint64(256<<10))
	require.Less(t, totals["iterative"], uint64(256<<10+config.DefaultMaxValueLen))
	require.NotZero(t, totals["random"])
}

func TestRunFlagErrors(t *testing.T) {
	path := prepare(t, "--size", "16KiB")

	for name, args := range map[string][]string{
		"bad method":       {"--path", path, "--fetch-method", "sideways", "--allocate", "1KiB"},
		"bad allocate":     {"--path", path, "--fetch-method", "random", "--allocate", "lots"},
		"missing allocate": {"--path", path, "--fetch-method", "random"},
		"missing method":   {"--path", path, "--allocate", "1KiB"},
		"unknown flag":     {"--path", path, "--fetch-method", "random", "--allocate", "1KiB", "--bogus"},
		"positional":       {"--fetch-method", "random", "--allocate", "1KiB", path},
		"bad engine":       {"--path", path, "--fetch-method", "random", "--allocate", "1KiB", "--engine", "lmdb"},
		"bad log level":    {"--path", path, "--fetch-method", "random", "--allocate", "1KiB", "--log-level", "loud"},
	} {
		code, stdout, stderr := runCmd(args...)
		require.Equal(t, exitConfig, code, "%s: %s", name, stderr)
		require.Empty(t, stdout, name)
		require.Contains(t, stderr, "Error:", name)
	}
}

func TestRunMissingDataset(t *testing.T) {
	code, stdout, stderr := runCmd("--path", filepath.Join(t.TempDir(), "absent"),
		"--fetch-method", "iterative", "--allocate", "0", "--log-level", "error")
	require.Equal(t, exitFailure, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "no dataset")
}

func TestPrepareBadSize(t *testing.T) {
	var stderr bytes.Buffer
	code := Execute(NewPrepareCmd(), []string{"--path", t.TempDir(), "--size", "huge"}, &stderr)
	require.Equal(t, exitConfig, code)
}

func TestGenerateConfig(t *testing.T) {
	cfg := generateConfig()
	require.Equal(t, "random.mdb", cfg.Dataset.Path)
	require.Equal(t, config.ByteSize(5<<30), cfg.Dataset.Size)
	require.Equal(t, "int64", cfg.Dataset.KeyEncoding)
	require.NoError(t, cfg.Dataset.Validate())

	require.False(t, NewGenerateCmd().Flags().HasFlags())
}

func TestExitCode(t *testing.T) {
	require.Equal(t, exitOK, ExitCode(nil))
	require.Equal(t, exitFailure, ExitCode(errors.New("boom")))
	require.Equal(t, exitConfig, ExitCode(common.ConfigError("bad")))
	require.Equal(t, exitConsistency, ExitCode(errors.Wrap(errors.Mark(errors.New("gap"), common.ErrConsistency), "run")))
	require.Equal(t, exitFailure, ExitCode(common.StorageError(errors.New("io"), "read")))
}

func TestRunMemoryEngineHasNoDataset(t *testing.T) {
	path := prepare(t, "--size", "64KiB", "--engine", "memory")
	code, stdout, stderr := runCmd("--path", path, "--engine", "memory",
		"--fetch-method", "iterative", "--allocate", "1KiB", "--log-level", "error")
	require.Equal(t, exitFailure, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "no dataset")
}
