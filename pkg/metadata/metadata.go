// Package metadata defines the zarr.json array metadata document: the
// JSON schema an array's configuration is persisted as, generalizing the
// teacher's Metadata/.zarray (zarr v2) struct in zarr/metadata.go to the
// v3 document shape (codecs pipeline, chunk_grid/chunk_key_encoding
// objects, node_type, optional dimension_names).
package metadata

import (
	"encoding/json"
	"fmt"
)

// NamedConfiguration is the {name, configuration} envelope every chunk
// grid, chunk key encoding, and codec uses in zarr.json.
type NamedConfiguration struct {
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// RegularChunkGridConfiguration is the configuration body of a
// chunk_grid with name "regular".
type RegularChunkGridConfiguration struct {
	ChunkShape []int64 `json:"chunk_shape"`
}

// DefaultChunkKeyEncodingConfiguration is the configuration body of a
// chunk_key_encoding with name "default".
type DefaultChunkKeyEncodingConfiguration struct {
	Separator string `json:"separator"`
}

// ArrayMetadata is the top-level zarr.json document for an array node.
type ArrayMetadata struct {
	ZarrFormat       int                `json:"zarr_format"`
	NodeType         string             `json:"node_type"`
	Shape            []int64            `json:"shape"`
	DataType         string             `json:"data_type"`
	ChunkGrid        NamedConfiguration `json:"chunk_grid"`
	ChunkKeyEncoding NamedConfiguration `json:"chunk_key_encoding"`
	FillValue        json.RawMessage    `json:"fill_value"`
	Codecs           []NamedConfiguration `json:"codecs"`
	Attributes       map[string]any     `json:"attributes,omitempty"`
	DimensionNames   []*string          `json:"dimension_names,omitempty"`
}

// GroupMetadata is the top-level zarr.json document for a group node.
type GroupMetadata struct {
	ZarrFormat int            `json:"zarr_format"`
	NodeType   string         `json:"node_type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

const (
	NodeTypeArray = "array"
	NodeTypeGroup = "group"
	FormatV3      = 3
)

// ImplementationAttribute is the key this implementation stamps into an
// array's attributes to record the writer's identity, mirroring the
// "_zarrs"-style implementation marker some Zarr v3 writers use.
const ImplementationAttribute = "_zarrcore"

// RegularChunkGrid builds a "regular" chunk_grid NamedConfiguration.
func RegularChunkGrid(chunkShape []int64) (NamedConfiguration, error) {
	body, err := json.Marshal(RegularChunkGridConfiguration{ChunkShape: chunkShape})
	if err != nil {
		return NamedConfiguration{}, fmt.Errorf("metadata: marshal chunk_grid: %w", err)
	}
	return NamedConfiguration{Name: "regular", Configuration: body}, nil
}

// DefaultChunkKeyEncoding builds a "default" chunk_key_encoding
// NamedConfiguration with the given separator ("/" or ".").
func DefaultChunkKeyEncoding(separator string) (NamedConfiguration, error) {
	body, err := json.Marshal(DefaultChunkKeyEncodingConfiguration{Separator: separator})
	if err != nil {
		return NamedConfiguration{}, fmt.Errorf("metadata: marshal chunk_key_encoding: %w", err)
	}
	return NamedConfiguration{Name: "default", Configuration: body}, nil
}

// V2ChunkKeyEncoding builds a "v2" chunk_key_encoding NamedConfiguration.
func V2ChunkKeyEncoding(separator string) (NamedConfiguration, error) {
	body, err := json.Marshal(DefaultChunkKeyEncodingConfiguration{Separator: separator})
	if err != nil {
		return NamedConfiguration{}, fmt.Errorf("metadata: marshal chunk_key_encoding: %w", err)
	}
	return NamedConfiguration{Name: "v2", Configuration: body}, nil
}

// NodeType decodes a zarr.json document's shared fields (zarr_format,
// node_type) and returns the node type, for choosing between ParseArray
// and ParseGroup.
func NodeType(raw []byte) (string, error) {
	var probe struct {
		ZarrFormat int    `json:"zarr_format"`
		NodeType   string `json:"node_type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("metadata: parse node_type: %w", err)
	}
	if probe.ZarrFormat != FormatV3 {
		return "", fmt.Errorf("metadata: unsupported zarr_format %d, expected %d", probe.ZarrFormat, FormatV3)
	}
	return probe.NodeType, nil
}

// ParseArray decodes an array zarr.json document.
func ParseArray(raw []byte) (*ArrayMetadata, error) {
	var m ArrayMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("metadata: parse array metadata: %w", err)
	}
	if m.ZarrFormat != FormatV3 {
		return nil, fmt.Errorf("metadata: unsupported zarr_format %d, expected %d", m.ZarrFormat, FormatV3)
	}
	if m.NodeType != NodeTypeArray {
		return nil, fmt.Errorf("metadata: node_type %q is not %q", m.NodeType, NodeTypeArray)
	}
	return &m, nil
}

// ParseGroup decodes a group zarr.json document.
func ParseGroup(raw []byte) (*GroupMetadata, error) {
	var m GroupMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("metadata: parse group metadata: %w", err)
	}
	if m.ZarrFormat != FormatV3 {
		return nil, fmt.Errorf("metadata: unsupported zarr_format %d, expected %d", m.ZarrFormat, FormatV3)
	}
	if m.NodeType != NodeTypeGroup {
		return nil, fmt.Errorf("metadata: node_type %q is not %q", m.NodeType, NodeTypeGroup)
	}
	return &m, nil
}

// MarshalArray serializes an ArrayMetadata to its zarr.json bytes.
func MarshalArray(m *ArrayMetadata) ([]byte, error) {
	m.ZarrFormat = FormatV3
	m.NodeType = NodeTypeArray
	return json.Marshal(m)
}

// MarshalGroup serializes a GroupMetadata to its zarr.json bytes.
func MarshalGroup(m *GroupMetadata) ([]byte, error) {
	m.ZarrFormat = FormatV3
	m.NodeType = NodeTypeGroup
	return json.Marshal(m)
}

// ParseRegularChunkGrid decodes a "regular" chunk_grid's configuration.
func ParseRegularChunkGrid(nc NamedConfiguration) ([]int64, error) {
	if nc.Name != "regular" {
		return nil, fmt.Errorf("metadata: unsupported chunk_grid %q", nc.Name)
	}
	var cfg RegularChunkGridConfiguration
	if err := json.Unmarshal(nc.Configuration, &cfg); err != nil {
		return nil, fmt.Errorf("metadata: parse chunk_grid configuration: %w", err)
	}
	return cfg.ChunkShape, nil
}

// ParseChunkKeyEncoding decodes a chunk_key_encoding's name and separator.
func ParseChunkKeyEncoding(nc NamedConfiguration) (name, separator string, err error) {
	if nc.Name != "default" && nc.Name != "v2" {
		return "", "", fmt.Errorf("metadata: unsupported chunk_key_encoding %q", nc.Name)
	}
	var cfg DefaultChunkKeyEncodingConfiguration
	if err := json.Unmarshal(nc.Configuration, &cfg); err != nil {
		return "", "", fmt.Errorf("metadata: parse chunk_key_encoding configuration: %w", err)
	}
	if cfg.Separator == "" {
		cfg.Separator = "/"
	}
	return nc.Name, cfg.Separator, nil
}
