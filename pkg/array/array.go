// Package array is the array façade: it ties a storage handle, its
// zarr.json metadata, a chunk grid and key encoding, and a codec chain
// together into the chunk- and subset-level read/write operations a
// caller actually wants. The chunk-iteration and buffer-copy structure is
// grounded on the teacher's Reader (ReadFull/ReadChunk/ReadRegion/
// processChunk) in reader.go, generalized from a fixed zlib/blosc
// compressor pair to an arbitrary codec chain and from full-array-only
// reads to arbitrary chunk and subset operations, including writes.
package array

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/TuSKan/zarrcore/pkg/chunkgrid"
	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/concurrency"
	"github.com/TuSKan/zarrcore/pkg/datatype"
	"github.com/TuSKan/zarrcore/pkg/indices"
	"github.com/TuSKan/zarrcore/pkg/storage"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Array is a handle onto one zarr array node.
type Array struct {
	Store       *storage.Handle
	Prefix      storekey.Prefix
	Shape       []int64
	DataType    datatype.DataType
	FillValue   datatype.FillValue
	Grid        *chunkgrid.Regular
	KeyEncoding chunkgrid.KeyEncoding
	Codecs      *codec.Chain
	Concurrency concurrency.Config
}

// New constructs an Array from its already-resolved components.
func New(store *storage.Handle, prefix storekey.Prefix, shape []int64, dt datatype.DataType, fill datatype.FillValue, grid *chunkgrid.Regular, keyEnc chunkgrid.KeyEncoding, chain *codec.Chain) *Array {
	return &Array{
		Store: store, Prefix: prefix, Shape: shape, DataType: dt, FillValue: fill,
		Grid: grid, KeyEncoding: keyEnc, Codecs: chain, Concurrency: concurrency.DefaultConfig(),
	}
}

func (a *Array) chunkKey(chunkCoord []int64) (storekey.Key, error) {
	return a.KeyEncoding.Encode(a.Prefix, chunkCoord)
}

func (a *Array) chunkRep(chunkCoord []int64) (codec.ChunkRepresentation, error) {
	shape, err := a.Grid.ChunkShape(chunkCoord)
	if err != nil {
		return codec.ChunkRepresentation{}, err
	}
	return codec.ChunkRepresentation{Shape: shape, DataType: a.DataType, FillValue: a.FillValue}, nil
}

func fullChunkSubset(shape []int64) indices.Subset {
	return indices.Subset{Start: make([]int64, len(shape)), Shape: shape}
}

// RetrieveChunkIfExists reads and decodes one chunk, reporting whether it
// was present in the store at all (vs. logically all-fill-value).
func (a *Array) RetrieveChunkIfExists(ctx context.Context, chunkCoord []int64) ([]byte, bool, error) {
	key, err := a.chunkKey(chunkCoord)
	if err != nil {
		return nil, false, err
	}
	rep, err := a.chunkRep(chunkCoord)
	if err != nil {
		return nil, false, err
	}
	encoded, ok, err := a.Store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("array: get chunk %q: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	decoded, err := a.Codecs.Decode(ctx, encoded, rep, codec.DefaultOptions())
	if err != nil {
		return nil, false, fmt.Errorf("array: decode chunk %q: %w", key, err)
	}
	return decoded, true, nil
}

// RetrieveChunk reads and decodes one chunk, returning a fill-value
// buffer when the chunk is absent.
func (a *Array) RetrieveChunk(ctx context.Context, chunkCoord []int64) ([]byte, error) {
	decoded, ok, err := a.RetrieveChunkIfExists(ctx, chunkCoord)
	if err != nil {
		return nil, err
	}
	if ok {
		return decoded, nil
	}
	rep, err := a.chunkRep(chunkCoord)
	if err != nil {
		return nil, err
	}
	return a.FillValue.Fill(int(rep.NumElements())), nil
}

// RetrieveChunkSubset reads a subset of one chunk (subset expressed in
// chunk-local coordinates), using the codec chain's partial decoder when
// possible instead of decoding the whole chunk.
func (a *Array) RetrieveChunkSubset(ctx context.Context, chunkCoord []int64, subset indices.Subset) ([]byte, error) {
	rep, err := a.chunkRep(chunkCoord)
	if err != nil {
		return nil, err
	}
	// Fast path: the subset is the whole chunk.
	if subset.Equal(fullChunkSubset(rep.Shape)) {
		return a.RetrieveChunk(ctx, chunkCoord)
	}

	key, err := a.chunkKey(chunkCoord)
	if err != nil {
		return nil, err
	}
	size, sizeOK, err := a.Store.Size(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("array: size chunk %q: %w", key, err)
	}
	if !sizeOK || size == 0 {
		return a.FillValue.Fill(int(subset.NumElements())), nil
	}

	storagePD := &codec.StoragePartialDecoder{Store: a.Store, Key: key}
	pd, err := a.Codecs.PartialDecoder(ctx, storagePD, rep, codec.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("array: build partial decoder for %q: %w", key, err)
	}
	return pd.PartialDecode(ctx, subset, codec.DefaultOptions())
}

// StoreChunk encodes and writes one whole chunk. A decoded buffer that is
// uniformly the fill value is erased instead of written, avoiding storing
// the redundant encoded bytes of an all-fill chunk.
func (a *Array) StoreChunk(ctx context.Context, chunkCoord []int64, decoded []byte) error {
	key, err := a.chunkKey(chunkCoord)
	if err != nil {
		return err
	}
	if a.FillValue.IsUniform(decoded) {
		if err := a.Store.Erase(ctx, key); err != nil {
			return fmt.Errorf("array: erase fill-value chunk %q: %w", key, err)
		}
		return nil
	}
	rep, err := a.chunkRep(chunkCoord)
	if err != nil {
		return err
	}
	encoded, err := a.Codecs.Encode(ctx, decoded, rep, codec.DefaultOptions())
	if err != nil {
		return fmt.Errorf("array: encode chunk %q: %w", key, err)
	}
	if err := a.Store.Set(ctx, key, encoded); err != nil {
		return fmt.Errorf("array: set chunk %q: %w", key, err)
	}
	return nil
}

// StoreChunkSubset writes a subset of one chunk (subset expressed in
// chunk-local coordinates) by a locked read-modify-write of the whole
// chunk.
func (a *Array) StoreChunkSubset(ctx context.Context, chunkCoord []int64, subset indices.Subset, data []byte) error {
	rep, err := a.chunkRep(chunkCoord)
	if err != nil {
		return err
	}
	if subset.Equal(fullChunkSubset(rep.Shape)) {
		return a.StoreChunk(ctx, chunkCoord, data)
	}

	key, err := a.chunkKey(chunkCoord)
	if err != nil {
		return err
	}
	unlock := a.Store.Locks().Lock(key)
	defer unlock()

	full, err := a.RetrieveChunk(ctx, chunkCoord)
	if err != nil {
		return err
	}
	elemSize := int64(a.DataType.ElementSize())
	scatterSubset(full, data, subset, rep.Shape, elemSize)
	return a.StoreChunk(ctx, chunkCoord, full)
}

// EraseChunk removes one chunk from the store.
func (a *Array) EraseChunk(ctx context.Context, chunkCoord []int64) error {
	key, err := a.chunkKey(chunkCoord)
	if err != nil {
		return err
	}
	if err := a.Store.Erase(ctx, key); err != nil {
		return fmt.Errorf("array: erase chunk %q: %w", key, err)
	}
	return nil
}

func gatherSubset(full []byte, subset indices.Subset, arrayShape []int64, elemSize int64) []byte {
	out := make([]byte, subset.NumElements()*elemSize)
	runs := indices.NewContiguousLinearisedIndices(subset, arrayShape)
	dstOff := int64(0)
	for {
		run, ok := runs.Next()
		if !ok {
			break
		}
		n := run.Length * elemSize
		srcStart := run.Offset * elemSize
		copy(out[dstOff:dstOff+n], full[srcStart:srcStart+n])
		dstOff += n
	}
	return out
}

func scatterSubset(full []byte, src []byte, subset indices.Subset, arrayShape []int64, elemSize int64) {
	runs := indices.NewContiguousLinearisedIndices(subset, arrayShape)
	srcOff := int64(0)
	for {
		run, ok := runs.Next()
		if !ok {
			break
		}
		n := run.Length * elemSize
		dstStart := run.Offset * elemSize
		copy(full[dstStart:dstStart+n], src[srcOff:srcOff+n])
		srcOff += n
	}
}

// chunkInGrid reports whether chunkCoord names a real chunk of the grid
// (every component within [0, gridShape_i)). indices.NewChunks enumerates
// candidate coordinates purely from the requested subset's bounds, so a
// subset extending beyond the array names chunk coordinates the grid does
// not actually have.
func chunkInGrid(chunkCoord, gridShape []int64) bool {
	for i, c := range chunkCoord {
		if c < 0 || c >= gridShape[i] {
			return false
		}
	}
	return true
}

// RetrieveArraySubsetInto decodes subset into a caller-provided buffer
// shaped subset.Shape, fanning out over the intersecting chunks according
// to the configured concurrency policy. Portions of subset that fall
// outside the array's shape are filled with the array's fill value rather
// than erroring.
func (a *Array) RetrieveArraySubsetInto(ctx context.Context, subset indices.Subset, out []byte) error {
	elemSize := int64(a.DataType.ElementSize())
	baseChunkShape := a.Grid.BaseChunkShape()
	gridShape := a.Grid.GridShape()
	chunks := indices.NewChunks(subset, baseChunkShape)
	rec := a.Codecs.ArrayToBytes.RecommendedConcurrency(codec.ChunkRepresentation{Shape: baseChunkShape, DataType: a.DataType})
	split := concurrency.Recommend(a.Concurrency, int(chunks.Len()), rec)

	return indices.ParChunks(ctx, chunks, split.ChunkConcurrency, func(chunkCoord []int64) error {
		origin := a.Grid.ChunkOrigin(chunkCoord)

		if !chunkInGrid(chunkCoord, gridShape) {
			// Out-of-bounds chunk: nothing is stored there and nothing
			// ever will be; the overlap is pure fill value.
			chunkSubset, err := indices.New(origin, baseChunkShape)
			if err != nil {
				return err
			}
			intersect, ok := subset.Intersect(chunkSubset)
			if !ok {
				return nil
			}
			fill := a.FillValue.Fill(int(intersect.NumElements()))
			scatterSubset(out, fill, intersect.Relative(subset.Start), subset.Shape, elemSize)
			return nil
		}

		shape, err := a.Grid.ChunkShape(chunkCoord)
		if err != nil {
			return err
		}
		chunkSubset, err := indices.New(origin, shape)
		if err != nil {
			return err
		}
		intersect, ok := subset.Intersect(chunkSubset)
		if !ok {
			return nil
		}
		local := intersect.Relative(origin)
		piece, err := a.RetrieveChunkSubset(ctx, chunkCoord, local)
		if err != nil {
			return err
		}
		scatterSubset(out, piece, intersect.Relative(subset.Start), subset.Shape, elemSize)
		return nil
	})
}

// RetrieveArraySubset decodes subset into a freshly allocated buffer.
func (a *Array) RetrieveArraySubset(ctx context.Context, subset indices.Subset) ([]byte, error) {
	elemSize := int64(a.DataType.ElementSize())
	out := make([]byte, subset.NumElements()*elemSize)
	if err := a.RetrieveArraySubsetInto(ctx, subset, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RetrieveArray decodes the whole array.
func (a *Array) RetrieveArray(ctx context.Context) ([]byte, error) {
	return a.RetrieveArraySubset(ctx, fullChunkSubset(a.Shape))
}

// StoreArraySubset writes data (shaped subset.Shape) into the array,
// fanning out over the intersecting chunks.
func (a *Array) StoreArraySubset(ctx context.Context, subset indices.Subset, data []byte) error {
	elemSize := int64(a.DataType.ElementSize())
	baseChunkShape := a.Grid.BaseChunkShape()
	chunks := indices.NewChunks(subset, baseChunkShape)
	rec := a.Codecs.ArrayToBytes.RecommendedConcurrency(codec.ChunkRepresentation{Shape: baseChunkShape, DataType: a.DataType})
	split := concurrency.Recommend(a.Concurrency, int(chunks.Len()), rec)

	return indices.ParChunks(ctx, chunks, split.ChunkConcurrency, func(chunkCoord []int64) error {
		origin := a.Grid.ChunkOrigin(chunkCoord)
		shape, err := a.Grid.ChunkShape(chunkCoord)
		if err != nil {
			return err
		}
		chunkSubset, err := indices.New(origin, shape)
		if err != nil {
			return err
		}
		intersect, ok := subset.Intersect(chunkSubset)
		if !ok {
			return nil
		}
		piece := gatherSubset(data, intersect.Relative(subset.Start), subset.Shape, elemSize)
		local := intersect.Relative(origin)
		return a.StoreChunkSubset(ctx, chunkCoord, local, piece)
	})
}

// StoreArray writes data as the whole array.
func (a *Array) StoreArray(ctx context.Context, data []byte) error {
	return a.StoreArraySubset(ctx, fullChunkSubset(a.Shape), data)
}

// RetrieveChunks decodes multiple chunks concurrently, preserving order.
func (a *Array) RetrieveChunks(ctx context.Context, chunkCoords [][]int64) ([][]byte, error) {
	out := make([][]byte, len(chunkCoords))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Concurrency.Target)
	for i, coord := range chunkCoords {
		i, coord := i, coord
		g.Go(func() error {
			decoded, err := a.RetrieveChunk(gctx, coord)
			if err != nil {
				return err
			}
			out[i] = decoded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreChunks writes multiple whole chunks concurrently.
func (a *Array) StoreChunks(ctx context.Context, chunkCoords [][]int64, decoded [][]byte) error {
	if len(chunkCoords) != len(decoded) {
		return fmt.Errorf("array: %d chunk coordinates but %d buffers", len(chunkCoords), len(decoded))
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Concurrency.Target)
	for i := range chunkCoords {
		i := i
		g.Go(func() error {
			return a.StoreChunk(gctx, chunkCoords[i], decoded[i])
		})
	}
	return g.Wait()
}
