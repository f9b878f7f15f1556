package array

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/codec/blosccodec"
	"github.com/TuSKan/zarrcore/pkg/codec/bytescodec"
	"github.com/TuSKan/zarrcore/pkg/codec/crc32ccodec"
	"github.com/TuSKan/zarrcore/pkg/codec/gzipcodec"
	"github.com/TuSKan/zarrcore/pkg/codec/shardingcodec"
	"github.com/TuSKan/zarrcore/pkg/codec/transposecodec"
	"github.com/TuSKan/zarrcore/pkg/codec/zstdcodec"
	"github.com/TuSKan/zarrcore/pkg/metadata"
)

type bytesConfig struct {
	Endian string `json:"endian"`
}

type gzipConfig struct {
	Level int `json:"level"`
}

type bloscConfig struct {
	Cname    string `json:"cname"`
	Clevel   int    `json:"clevel"`
	Shuffle  string `json:"shuffle"`
	Typesize int    `json:"typesize"`
}

type zstdConfig struct {
	Level int `json:"level"`
}

type transposeConfig struct {
	Order []int `json:"order"`
}

type shardingConfig struct {
	ChunkShape    []int64                       `json:"chunk_shape"`
	Codecs        []metadata.NamedConfiguration `json:"codecs"`
	IndexCodecs   []metadata.NamedConfiguration `json:"index_codecs"`
	IndexLocation string                        `json:"index_location"`
}

func unmarshalConfig(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("array: parse codec configuration: %w", err)
	}
	return nil
}

// BuildChain constructs a codec.Chain from a zarr.json codecs array,
// recursively resolving a nested sharding_indexed codec's own codecs list.
func BuildChain(codecs []metadata.NamedConfiguration) (*codec.Chain, error) {
	var a2a []codec.ArrayToArrayCodec
	var a2b codec.ArrayToBytesCodec
	var b2b []codec.BytesToBytesCodec

	for _, nc := range codecs {
		switch nc.Name {
		case "transpose":
			var cfg transposeConfig
			if err := unmarshalConfig(nc.Configuration, &cfg); err != nil {
				return nil, err
			}
			a2a = append(a2a, transposecodec.Codec{Order: cfg.Order})

		case "bytes":
			c, err := buildBytesCodec(nc)
			if err != nil {
				return nil, err
			}
			a2b = c

		case "sharding_indexed":
			c, err := buildShardingCodec(nc)
			if err != nil {
				return nil, err
			}
			a2b = c

		case "gzip":
			var cfg gzipConfig
			if err := unmarshalConfig(nc.Configuration, &cfg); err != nil {
				return nil, err
			}
			b2b = append(b2b, gzipcodec.Codec{Level: cfg.Level})

		case "blosc":
			var cfg bloscConfig
			if err := unmarshalConfig(nc.Configuration, &cfg); err != nil {
				return nil, err
			}
			b2b = append(b2b, blosccodec.Codec{
				Level:    cfg.Clevel,
				Shuffle:  bloscShuffle(cfg.Shuffle),
				TypeSize: cfg.Typesize,
			})

		case "zstd":
			var cfg zstdConfig
			if err := unmarshalConfig(nc.Configuration, &cfg); err != nil {
				return nil, err
			}
			b2b = append(b2b, zstdcodec.Codec{Level: zstd.EncoderLevel(cfg.Level)})

		case "crc32c":
			b2b = append(b2b, crc32ccodec.Codec{})

		default:
			return nil, fmt.Errorf("array: unsupported codec %q", nc.Name)
		}
	}

	return codec.NewChain(a2a, a2b, b2b)
}

func buildBytesCodec(nc metadata.NamedConfiguration) (bytescodec.Codec, error) {
	var cfg bytesConfig
	if err := unmarshalConfig(nc.Configuration, &cfg); err != nil {
		return bytescodec.Codec{}, err
	}
	endian := bytescodec.Little
	if cfg.Endian == "big" {
		endian = bytescodec.Big
	}
	return bytescodec.Codec{Endian: endian}, nil
}

func buildShardingCodec(nc metadata.NamedConfiguration) (shardingcodec.Codec, error) {
	var cfg shardingConfig
	if err := unmarshalConfig(nc.Configuration, &cfg); err != nil {
		return shardingcodec.Codec{}, err
	}
	inner, err := BuildChain(cfg.Codecs)
	if err != nil {
		return shardingcodec.Codec{}, fmt.Errorf("array: sharding_indexed inner codecs: %w", err)
	}
	var indexChain []codec.BytesToBytesCodec
	if len(cfg.IndexCodecs) > 0 {
		// The shard index is packed as raw little-endian entries by the
		// sharding codec itself, so only the bytes→bytes codecs are kept;
		// a "bytes" entry is supplied so index_codecs need not list one.
		built, err := BuildChain(append([]metadata.NamedConfiguration{{Name: "bytes"}}, cfg.IndexCodecs...))
		if err != nil {
			return shardingcodec.Codec{}, fmt.Errorf("array: sharding_indexed index_codecs: %w", err)
		}
		indexChain = built.BytesToBytes
	}
	loc := shardingcodec.IndexEnd
	if cfg.IndexLocation == "start" {
		loc = shardingcodec.IndexStart
	}
	return shardingcodec.Codec{
		ChunkShape:    cfg.ChunkShape,
		Codecs:        inner,
		IndexCodecs:   indexChain,
		IndexLocation: loc,
	}, nil
}

func bloscShuffle(name string) blosccodec.Shuffle {
	switch name {
	case "shuffle":
		return blosccodec.ByteShuffle
	case "bitshuffle":
		return blosccodec.BitShuffle
	default:
		return blosccodec.NoShuffle
	}
}

