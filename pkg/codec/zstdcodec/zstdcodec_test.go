package zstdcodec_test

import (
	"context"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/codec/zstdcodec"
	"github.com/stretchr/testify/require"
)

func TestZstdEncodeDecodeRoundTrip(t *testing.T) {
	c := zstdcodec.Codec{}
	decoded := []byte("zstd round trip test data, repeated repeated repeated repeated")

	encoded, err := c.Encode(context.Background(), decoded, codec.DefaultOptions())
	require.NoError(t, err)
	require.NotEqual(t, decoded, encoded)

	back, err := c.Decode(context.Background(), encoded, codec.BytesRepresentation{}, codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, decoded, back)
}
