// Package shardingcodec implements the "sharding_indexed" array→bytes
// codec: an outer chunk ("shard") packs a regular grid of inner chunks,
// each independently encoded through its own codec chain, plus a flat
// index of (offset, size) pairs describing where each inner chunk's bytes
// land in the shard. The gather/scatter helpers that move a chunk-shaped
// buffer into and out of the shard-shaped decoded buffer are grounded on
// the teacher's copyND in reader.go, generalized from a full-chunk memcpy
// to the inner-chunk subset used here.
package shardingcodec

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/TuSKan/zarrcore/pkg/chunkgrid"
	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/indices"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// IndexLocation selects whether the shard index sits before or after the
// inner-chunk payload within the encoded shard.
type IndexLocation int

const (
	IndexStart IndexLocation = iota
	IndexEnd
)

// MissingEntry marks an inner chunk absent from the shard.
var MissingEntry = indexEntry{Offset: ^uint64(0), Size: ^uint64(0)}

type indexEntry struct {
	Offset uint64
	Size   uint64
}

func (e indexEntry) missing() bool { return e == MissingEntry }

const entryBytes = 16 // two little-endian uint64s

// Codec is the "sharding_indexed" array→bytes codec.
type Codec struct {
	ChunkShape    []int64
	Codecs        *codec.Chain // inner chunk codec chain
	IndexCodecs   []codec.BytesToBytesCodec
	IndexLocation IndexLocation
}

var _ codec.ArrayToBytesCodec = Codec{}

func (c Codec) Name() string { return "sharding_indexed" }

func (c Codec) grid(rep codec.ChunkRepresentation) (*chunkgrid.Regular, error) {
	return chunkgrid.NewRegular(rep.Shape, c.ChunkShape)
}

func (c Codec) innerRep(rep codec.ChunkRepresentation, shape []int64) codec.ChunkRepresentation {
	return codec.ChunkRepresentation{Shape: shape, DataType: rep.DataType, FillValue: rep.FillValue}
}

// gatherSubset copies the elements of subset (row-major order) out of full,
// which holds arrayShape elements row-major, into a freshly allocated
// contiguous buffer.
func gatherSubset(full []byte, subset indices.Subset, arrayShape []int64, elemSize int64) []byte {
	out := make([]byte, subset.NumElements()*elemSize)
	runs := indices.NewContiguousLinearisedIndices(subset, arrayShape)
	dstOff := int64(0)
	for {
		run, ok := runs.Next()
		if !ok {
			break
		}
		srcStart := run.Offset * elemSize
		n := run.Length * elemSize
		copy(out[dstOff:dstOff+n], full[srcStart:srcStart+n])
		dstOff += n
	}
	return out
}

// scatterSubset copies src (contiguous, row-major over subset.Shape) into
// full, which holds arrayShape elements row-major, at subset's position.
func scatterSubset(full []byte, src []byte, subset indices.Subset, arrayShape []int64, elemSize int64) {
	runs := indices.NewContiguousLinearisedIndices(subset, arrayShape)
	srcOff := int64(0)
	for {
		run, ok := runs.Next()
		if !ok {
			break
		}
		dstStart := run.Offset * elemSize
		n := run.Length * elemSize
		copy(full[dstStart:dstStart+n], src[srcOff:srcOff+n])
		srcOff += n
	}
}

func (c Codec) encodeIndex(ctx context.Context, entries []indexEntry, opts codec.Options) ([]byte, error) {
	raw := make([]byte, len(entries)*entryBytes)
	for i, e := range entries {
		binary.LittleEndian.PutUint64(raw[i*entryBytes:], e.Offset)
		binary.LittleEndian.PutUint64(raw[i*entryBytes+8:], e.Size)
	}
	out := raw
	for _, ic := range c.IndexCodecs {
		var err error
		out, err = ic.Encode(ctx, out, opts)
		if err != nil {
			return nil, fmt.Errorf("shardingcodec: index codec %s: %w", ic.Name(), err)
		}
	}
	return out, nil
}

func (c Codec) indexEncodedSize(numEntries int) (codec.BytesRepresentation, error) {
	cur := codec.FixedSize(int64(numEntries * entryBytes))
	for _, ic := range c.IndexCodecs {
		next, err := ic.ComputeEncodedSize(cur)
		if err != nil {
			return codec.BytesRepresentation{}, err
		}
		cur = next
	}
	return cur, nil
}

func (c Codec) decodeIndex(ctx context.Context, encoded []byte, numEntries int, opts codec.Options) ([]indexEntry, error) {
	raw := encoded
	for i := len(c.IndexCodecs) - 1; i >= 0; i-- {
		var err error
		raw, err = c.IndexCodecs[i].Decode(ctx, raw, codec.FixedSize(int64(numEntries*entryBytes)), opts)
		if err != nil {
			return nil, fmt.Errorf("shardingcodec: index codec %s: %w", c.IndexCodecs[i].Name(), err)
		}
	}
	if len(raw) != numEntries*entryBytes {
		return nil, fmt.Errorf("shardingcodec: decoded index is %d bytes, want %d", len(raw), numEntries*entryBytes)
	}
	entries := make([]indexEntry, numEntries)
	for i := range entries {
		entries[i] = indexEntry{
			Offset: binary.LittleEndian.Uint64(raw[i*entryBytes:]),
			Size:   binary.LittleEndian.Uint64(raw[i*entryBytes+8:]),
		}
	}
	return entries, nil
}

func innerChunkCoords(gridShape []int64) [][]int64 {
	total := int64(1)
	for _, d := range gridShape {
		total *= d
	}
	coords := make([][]int64, 0, total)
	cur := make([]int64, len(gridShape))
	for i := int64(0); i < total; i++ {
		coords = append(coords, append([]int64(nil), cur...))
		for d := len(gridShape) - 1; d >= 0; d-- {
			cur[d]++
			if cur[d] < gridShape[d] {
				break
			}
			cur[d] = 0
		}
	}
	return coords
}

func (c Codec) Encode(ctx context.Context, decoded []byte, rep codec.ChunkRepresentation, opts codec.Options) ([]byte, error) {
	grid, err := c.grid(rep)
	if err != nil {
		return nil, err
	}
	gridShape := grid.GridShape()
	coords := innerChunkCoords(gridShape)
	elemSize := int64(rep.DataType.ElementSize())

	entries := make([]indexEntry, len(coords))
	var payload []byte
	for i, coord := range coords {
		origin := grid.ChunkOrigin(coord)
		shape, err := grid.ChunkShape(coord)
		if err != nil {
			return nil, err
		}
		subset, err := indices.New(origin, shape)
		if err != nil {
			return nil, err
		}
		innerDecoded := gatherSubset(decoded, subset, rep.Shape, elemSize)
		if rep.FillValue.IsUniform(innerDecoded) {
			entries[i] = MissingEntry
			continue
		}
		innerEncoded, err := c.Codecs.Encode(ctx, innerDecoded, c.innerRep(rep, shape), opts)
		if err != nil {
			return nil, fmt.Errorf("shardingcodec: inner chunk %v: %w", coord, err)
		}
		entries[i] = indexEntry{Offset: uint64(len(payload)), Size: uint64(len(innerEncoded))}
		payload = append(payload, innerEncoded...)
	}

	indexBytes, err := c.encodeIndex(ctx, entries, opts)
	if err != nil {
		return nil, err
	}

	if c.IndexLocation == IndexStart {
		return append(indexBytes, payload...), nil
	}
	return append(payload, indexBytes...), nil
}

func (c Codec) Decode(ctx context.Context, encoded []byte, rep codec.ChunkRepresentation, opts codec.Options) ([]byte, error) {
	grid, err := c.grid(rep)
	if err != nil {
		return nil, err
	}
	gridShape := grid.GridShape()
	coords := innerChunkCoords(gridShape)

	indexSize, err := c.indexEncodedSize(len(coords))
	if err != nil {
		return nil, err
	}
	if indexSize.Kind == codec.Unbounded {
		return nil, fmt.Errorf("shardingcodec: index codecs must have a fixed or bounded encoded size")
	}

	var indexBytes, payload []byte
	if c.IndexLocation == IndexStart {
		indexBytes = encoded[:indexSize.Size]
		payload = encoded[indexSize.Size:]
	} else {
		payload = encoded[:int64(len(encoded))-indexSize.Size]
		indexBytes = encoded[int64(len(encoded))-indexSize.Size:]
	}

	entries, err := c.decodeIndex(ctx, indexBytes, len(coords), opts)
	if err != nil {
		return nil, err
	}

	out := make([]byte, rep.DecodedSize())
	elemSize := int64(rep.DataType.ElementSize())
	for i, coord := range coords {
		entry := entries[i]
		if entry.missing() {
			shape, err := grid.ChunkShape(coord)
			if err != nil {
				return nil, err
			}
			origin := grid.ChunkOrigin(coord)
			subset, err := indices.New(origin, shape)
			if err != nil {
				return nil, err
			}
			fill := rep.FillValue.Fill(int(subset.NumElements()))
			scatterSubset(out, fill, subset, rep.Shape, elemSize)
			continue
		}
		innerEncoded := payload[entry.Offset : entry.Offset+entry.Size]
		shape, err := grid.ChunkShape(coord)
		if err != nil {
			return nil, err
		}
		innerDecoded, err := c.Codecs.Decode(ctx, innerEncoded, c.innerRep(rep, shape), opts)
		if err != nil {
			return nil, fmt.Errorf("shardingcodec: inner chunk %v: %w", coord, err)
		}
		origin := grid.ChunkOrigin(coord)
		subset, err := indices.New(origin, shape)
		if err != nil {
			return nil, err
		}
		scatterSubset(out, innerDecoded, subset, rep.Shape, elemSize)
	}
	return out, nil
}

func (c Codec) ComputeEncodedSize(codec.ChunkRepresentation) (codec.BytesRepresentation, error) {
	return codec.UnboundedSize(), nil
}

func (c Codec) RecommendedConcurrency(rep codec.ChunkRepresentation) codec.RecommendedConcurrency {
	grid, err := c.grid(rep)
	if err != nil {
		return codec.RecommendedConcurrency{Min: 1, Max: 1}
	}
	n := 1
	for _, d := range grid.GridShape() {
		n *= int(d)
	}
	if n < 1 {
		n = 1
	}
	return codec.RecommendedConcurrency{Min: 1, Max: n}
}

// PartialDecoder reads only the shard index and the inner chunks that
// intersect each requested subset, never the full shard: this is the
// sharding codec's core advantage over a plain array→bytes codec.
func (c Codec) PartialDecoder(ctx context.Context, input codec.BytesPartialDecoder, rep codec.ChunkRepresentation, opts codec.Options) (codec.ArrayPartialDecoder, error) {
	grid, err := c.grid(rep)
	if err != nil {
		return nil, err
	}
	coords := innerChunkCoords(grid.GridShape())

	indexSize, err := c.indexEncodedSize(len(coords))
	if err != nil {
		return nil, err
	}
	if indexSize.Kind == codec.Unbounded {
		return nil, fmt.Errorf("shardingcodec: index codecs must have a fixed or bounded encoded size")
	}

	var indexRange storekey.ByteRange
	if c.IndexLocation == IndexStart {
		length := uint64(indexSize.Size)
		indexRange = storekey.FromStart(0, &length)
	} else {
		length := uint64(indexSize.Size)
		indexRange = storekey.FromEnd(length, &length)
	}
	vals, err := input.PartialDecode(ctx, []storekey.ByteRange{indexRange})
	if err != nil {
		return nil, fmt.Errorf("shardingcodec: read index: %w", err)
	}
	entries, err := c.decodeIndex(ctx, vals[0], len(coords), opts)
	if err != nil {
		return nil, err
	}

	return &partialDecoder{codec: c, grid: grid, coords: coords, entries: entries, input: input, rep: rep}, nil
}

type partialDecoder struct {
	codec   Codec
	grid    *chunkgrid.Regular
	coords  [][]int64
	entries []indexEntry
	input   codec.BytesPartialDecoder
	rep     codec.ChunkRepresentation
}

func (p *partialDecoder) PartialDecode(ctx context.Context, subset indices.Subset, opts codec.Options) ([]byte, error) {
	elemSize := int64(p.rep.DataType.ElementSize())
	out := make([]byte, subset.NumElements()*elemSize)

	chunks := indices.NewChunks(subset, p.codec.ChunkShape)
	for {
		chunkCoord, ok := chunks.Next()
		if !ok {
			break
		}
		idx := p.flatIndex(chunkCoord)
		entry := p.entries[idx]

		shape, err := p.grid.ChunkShape(chunkCoord)
		if err != nil {
			return nil, err
		}
		origin := p.grid.ChunkOrigin(chunkCoord)
		chunkSubset, err := indices.New(origin, shape)
		if err != nil {
			return nil, err
		}
		intersect, ok := subset.Intersect(chunkSubset)
		if !ok {
			continue
		}

		var innerDecoded []byte
		if entry.missing() {
			innerDecoded = p.rep.FillValue.Fill(int(chunkSubset.NumElements()))
		} else {
			length := entry.Size
			offset := entry.Offset
			if p.codec.IndexLocation == IndexStart {
				// Entry offsets are relative to the payload, which follows
				// the index when the index sits at the start of the shard.
				indexSize, err := p.codec.indexEncodedSize(len(p.entries))
				if err != nil {
					return nil, err
				}
				offset += uint64(indexSize.Size)
			}
			vals, err := p.input.PartialDecode(ctx, []storekey.ByteRange{storekey.FromStart(offset, &length)})
			if err != nil {
				return nil, fmt.Errorf("shardingcodec: read inner chunk %v: %w", chunkCoord, err)
			}
			innerDecoded, err = p.codec.Codecs.Decode(ctx, vals[0], p.codec.innerRep(p.rep, shape), opts)
			if err != nil {
				return nil, fmt.Errorf("shardingcodec: decode inner chunk %v: %w", chunkCoord, err)
			}
		}

		local := intersect.Relative(origin)
		piece := gatherSubset(innerDecoded, local, shape, elemSize)
		scatterSubset(out, piece, intersect.Relative(subset.Start), subset.Shape, elemSize)
	}
	return out, nil
}

func (p *partialDecoder) flatIndex(chunkCoord []int64) int {
	gridShape := p.grid.GridShape()
	idx := 0
	for d, c := range chunkCoord {
		idx = idx*int(gridShape[d]) + int(c)
	}
	return idx
}
