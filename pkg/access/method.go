package access

import (
	"strings"

	"mmapbench/pkg/common"
)

// FetchMethod is the order in which a run visits the dataset.
type FetchMethod int

const (
	// Iterative walks an ordered cursor from the lowest to the highest key,
	// visiting every key once.
	Iterative FetchMethod = iota
	// Random performs exactly N point lookups of keys drawn uniformly, with
	// replacement, from [0, N). Some keys are fetched more than once and
	// about N/e are never fetched.
	Random
	// Shuffled fetches every key of [0, N) exactly once in a uniformly
	// random order. It holds all N keys in memory to shuffle them.
	Shuffled
)

var methodNames = [...]string{
	Iterative: "iterative",
	Random:    "random",
	Shuffled:  "shuffled",
}

func (m FetchMethod) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return "unknown"
	}
	return methodNames[m]
}

// ParseFetchMethod accepts "iterative", "random" or "shuffled".
func ParseFetchMethod(s string) (FetchMethod, error) {
	for i, name := range methodNames {
		if strings.EqualFold(s, name) {
			return FetchMethod(i), nil
		}
	}
	return 0, common.ConfigError("invalid fetch method %q (want one of %s)", s, strings.Join(methodNames[:], ", "))
}

// Set implements pflag.Value.
func (m *FetchMethod) Set(s string) error {
	v, err := ParseFetchMethod(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Type implements pflag.Value.
func (m *FetchMethod) Type() string { return "method" }
