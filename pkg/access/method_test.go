package access

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"mmapbench/pkg/common"
)

func TestParseFetchMethod(t *testing.T) {
	for in, want := range map[string]FetchMethod{
		"iterative": Iterative,
		"random":    Random,
		"shuffled":  Shuffled,
		"Shuffled":  Shuffled,
	} {
		got, err := ParseFetchMethod(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, methodNames[want], got.String())
	}

	_, err := ParseFetchMethod("sequential")
	require.True(t, errors.Is(err, common.ErrConfig))

	var m FetchMethod
	require.NoError(t, m.Set("random"))
	require.Equal(t, Random, m)
	require.Error(t, m.Set(""))
	require.Equal(t, "unknown", FetchMethod(7).String())
}
