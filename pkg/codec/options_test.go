package codec_test

import (
	"testing"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsIsSingleThreaded(t *testing.T) {
	require.Equal(t, 1, codec.DefaultOptions().Concurrency)
}

func TestWithConcurrencyClampsToOne(t *testing.T) {
	o := codec.DefaultOptions().WithConcurrency(0)
	require.Equal(t, 1, o.Concurrency)

	o = codec.DefaultOptions().WithConcurrency(-5)
	require.Equal(t, 1, o.Concurrency)

	o = codec.DefaultOptions().WithConcurrency(8)
	require.Equal(t, 8, o.Concurrency)
}

func TestChunkRepresentationSizes(t *testing.T) {
	rep := testRep()
	require.Equal(t, int64(4), rep.NumElements())
	require.Equal(t, int64(16), rep.DecodedSize())
}
