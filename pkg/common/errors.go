package common

import "github.com/cockroachdb/errors"

// Error classes. Concrete errors are marked with one of these so callers can
// classify them with errors.Is without inspecting messages.
var (
	// ErrConfig marks unparsable or missing configuration. Raised before any
	// storage is touched.
	ErrConfig = errors.New("configuration error")
	// ErrStorage marks failures of the storage engine: open, begin, commit,
	// get, put or iterate.
	ErrStorage = errors.New("storage error")
	// ErrConsistency marks a key that the dataset cardinality says must
	// exist but does not. It means the dataset was generated with a
	// different configuration than the one measuring it.
	ErrConsistency = errors.New("consistency error")
)

// StorageError wraps err with msg and marks it as a storage error.
func StorageError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrStorage)
}

// ConfigError builds a configuration error.
func ConfigError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfig)
}
