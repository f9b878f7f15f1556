package blosccodec_test

import (
	"context"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/codec/blosccodec"
	"github.com/stretchr/testify/require"
)

func TestBloscEncodeDecodeRoundTrip(t *testing.T) {
	c := blosccodec.Codec{Level: 5, Shuffle: blosccodec.ByteShuffle, TypeSize: 4}
	decoded := make([]byte, 256)
	for i := range decoded {
		decoded[i] = byte(i % 7)
	}

	encoded, err := c.Encode(context.Background(), decoded, codec.DefaultOptions())
	require.NoError(t, err)

	back, err := c.Decode(context.Background(), encoded, codec.BytesRepresentation{}, codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, decoded, back)
}
