package array

import (
	"context"
	"fmt"

	"github.com/TuSKan/zarrcore/pkg/chunkgrid"
	"github.com/TuSKan/zarrcore/pkg/datatype"
	"github.com/TuSKan/zarrcore/pkg/metadata"
	"github.com/TuSKan/zarrcore/pkg/storage"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// ZarrJSON is the metadata key every node (array or group) stores under
// its prefix.
const ZarrJSON = "zarr.json"

func metadataKey(prefix storekey.Prefix) (storekey.Key, error) {
	return prefix.WithKey(ZarrJSON)
}

func keyEncodingFromMetadata(nc metadata.NamedConfiguration) (chunkgrid.KeyEncoding, error) {
	name, sep, err := metadata.ParseChunkKeyEncoding(nc)
	if err != nil {
		return nil, err
	}
	var s chunkgrid.Separator
	switch sep {
	case "/":
		s = chunkgrid.SlashSeparator
	case ".":
		s = chunkgrid.DotSeparator
	default:
		return nil, fmt.Errorf("array: unsupported chunk_key_encoding separator %q", sep)
	}
	if name == "v2" {
		return chunkgrid.V2{Sep: s}, nil
	}
	return chunkgrid.Default{Sep: s}, nil
}

// Open reads prefix's zarr.json and constructs the Array it describes.
func Open(ctx context.Context, store *storage.Handle, prefix storekey.Prefix) (*Array, error) {
	key, err := metadataKey(prefix)
	if err != nil {
		return nil, err
	}
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("array: read %q: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("array: no zarr.json at %q", prefix)
	}
	m, err := metadata.ParseArray(raw)
	if err != nil {
		return nil, fmt.Errorf("array: parse %q: %w", key, err)
	}
	return FromMetadata(store, prefix, m)
}

// FromMetadata constructs an Array from an already-parsed ArrayMetadata
// document.
func FromMetadata(store *storage.Handle, prefix storekey.Prefix, m *metadata.ArrayMetadata) (*Array, error) {
	dt, err := datatype.ByName(m.DataType)
	if err != nil {
		return nil, err
	}
	fill, err := datatype.ParseFillValueJSON(dt, m.FillValue)
	if err != nil {
		return nil, fmt.Errorf("array: fill_value: %w", err)
	}
	chunkShape, err := metadata.ParseRegularChunkGrid(m.ChunkGrid)
	if err != nil {
		return nil, err
	}
	grid, err := chunkgrid.NewRegular(m.Shape, chunkShape)
	if err != nil {
		return nil, err
	}
	keyEnc, err := keyEncodingFromMetadata(m.ChunkKeyEncoding)
	if err != nil {
		return nil, err
	}
	chain, err := BuildChain(m.Codecs)
	if err != nil {
		return nil, err
	}
	return New(store, prefix, m.Shape, dt, fill, grid, keyEnc, chain), nil
}

// Create writes prefix's zarr.json for the given configuration and
// returns the resulting Array.
func Create(ctx context.Context, store *storage.Handle, prefix storekey.Prefix, m *metadata.ArrayMetadata) (*Array, error) {
	raw, err := metadata.MarshalArray(m)
	if err != nil {
		return nil, err
	}
	key, err := metadataKey(prefix)
	if err != nil {
		return nil, err
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return nil, fmt.Errorf("array: write %q: %w", key, err)
	}
	return FromMetadata(store, prefix, m)
}
