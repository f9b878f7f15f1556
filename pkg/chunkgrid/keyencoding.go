package chunkgrid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Separator is the single character placed between chunk coordinate
// components in an encoded key.
type Separator byte

// The two separators permitted by the Zarr V3 chunk key encodings.
const (
	SlashSeparator Separator = '/'
	DotSeparator   Separator = '.'
)

// KeyEncoding maps a chunk coordinate to a store key under a given prefix.
type KeyEncoding interface {
	Encode(prefix storekey.Prefix, chunkCoord []int64) (storekey.Key, error)
}

// Default is the "default" chunk key encoding: prefix + "c" + sep + coords.
// Zero-dimensional arrays encode to the sentinel key prefix+"c".
type Default struct {
	Sep Separator
}

var _ KeyEncoding = Default{}

func (d Default) Encode(prefix storekey.Prefix, chunkCoord []int64) (storekey.Key, error) {
	if d.Sep != SlashSeparator && d.Sep != DotSeparator {
		return "", fmt.Errorf("chunkgrid: invalid separator %q", rune(d.Sep))
	}
	if len(chunkCoord) == 0 {
		return prefix.WithKey("c")
	}
	var sb strings.Builder
	sb.WriteByte('c')
	for _, c := range chunkCoord {
		sb.WriteByte(byte(d.Sep))
		sb.WriteString(strconv.FormatInt(c, 10))
	}
	return prefix.WithKey(sb.String())
}

// V2 is the "v2" chunk key encoding (the classic Zarr V2 layout):
// prefix + coords, separated by Sep. Zero-dimensional arrays encode to the
// sentinel key prefix+"0".
type V2 struct {
	Sep Separator
}

var _ KeyEncoding = V2{}

func (v V2) Encode(prefix storekey.Prefix, chunkCoord []int64) (storekey.Key, error) {
	if v.Sep != SlashSeparator && v.Sep != DotSeparator {
		return "", fmt.Errorf("chunkgrid: invalid separator %q", rune(v.Sep))
	}
	if len(chunkCoord) == 0 {
		return prefix.WithKey("0")
	}
	var sb strings.Builder
	for i, c := range chunkCoord {
		if i > 0 {
			sb.WriteByte(byte(v.Sep))
		}
		sb.WriteString(strconv.FormatInt(c, 10))
	}
	return prefix.WithKey(sb.String())
}
