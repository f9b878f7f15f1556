package array_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/array"
	"github.com/TuSKan/zarrcore/pkg/metadata"
	"github.com/TuSKan/zarrcore/pkg/storage"
	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/TuSKan/zarrcore/store/memstore"
	"github.com/stretchr/testify/require"
)

func testArrayMetadata(t *testing.T) *metadata.ArrayMetadata {
	t.Helper()
	grid, err := metadata.RegularChunkGrid([]int64{2, 2})
	require.NoError(t, err)
	enc, err := metadata.DefaultChunkKeyEncoding("/")
	require.NoError(t, err)
	return &metadata.ArrayMetadata{
		Shape:            []int64{4, 4},
		DataType:         "uint8",
		ChunkGrid:        grid,
		ChunkKeyEncoding: enc,
		FillValue:        json.RawMessage("0"),
		Codecs:           []metadata.NamedConfiguration{{Name: "bytes"}, {Name: "gzip"}},
	}
}

func TestCreateAndOpenArray(t *testing.T) {
	ctx := context.Background()
	handle := storage.NewHandle(memstore.New())

	created, err := array.Create(ctx, handle, storekey.RootPrefix, testArrayMetadata(t))
	require.NoError(t, err)

	full := make([]byte, 16)
	for i := range full {
		full[i] = byte(i)
	}
	require.NoError(t, created.StoreArray(ctx, full))

	opened, err := array.Open(ctx, handle, storekey.RootPrefix)
	require.NoError(t, err)
	back, err := opened.RetrieveArray(ctx)
	require.NoError(t, err)
	require.Equal(t, full, back)
}

func TestOpenRejectsMissingMetadata(t *testing.T) {
	ctx := context.Background()
	handle := storage.NewHandle(memstore.New())
	_, err := array.Open(ctx, handle, storekey.RootPrefix)
	require.Error(t, err)
}

func TestBuildChainRejectsUnknownCodec(t *testing.T) {
	_, err := array.BuildChain([]metadata.NamedConfiguration{{Name: "not-a-codec"}})
	require.Error(t, err)
}

func TestBuildChainResolvesShardingIndexed(t *testing.T) {
	cfg := json.RawMessage(`{"chunk_shape":[2,2],"codecs":[{"name":"bytes"}],"index_codecs":[{"name":"crc32c"}],"index_location":"end"}`)
	chain, err := array.BuildChain([]metadata.NamedConfiguration{{Name: "sharding_indexed", Configuration: cfg}})
	require.NoError(t, err)
	require.Equal(t, "sharding_indexed", chain.ArrayToBytes.Name())
}
