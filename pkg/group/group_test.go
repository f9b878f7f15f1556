package group_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/array"
	"github.com/TuSKan/zarrcore/pkg/group"
	"github.com/TuSKan/zarrcore/pkg/metadata"
	"github.com/TuSKan/zarrcore/pkg/storage"
	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/TuSKan/zarrcore/store/memstore"
	"github.com/stretchr/testify/require"
)

func arrayMetadata(t *testing.T) *metadata.ArrayMetadata {
	t.Helper()
	grid, err := metadata.RegularChunkGrid([]int64{2})
	require.NoError(t, err)
	enc, err := metadata.DefaultChunkKeyEncoding("/")
	require.NoError(t, err)
	return &metadata.ArrayMetadata{
		Shape: []int64{2}, DataType: "uint8",
		ChunkGrid: grid, ChunkKeyEncoding: enc,
		FillValue: json.RawMessage("0"),
		Codecs:    []metadata.NamedConfiguration{{Name: "bytes"}},
	}
}

func TestCreateAndOpenGroup(t *testing.T) {
	ctx := context.Background()
	handle := storage.NewHandle(memstore.New())

	_, err := group.Create(ctx, handle, storekey.RootPrefix, map[string]any{"title": "root"})
	require.NoError(t, err)

	g, err := group.Open(ctx, handle, storekey.RootPrefix)
	require.NoError(t, err)
	require.Equal(t, "root", g.Attributes["title"])
}

func TestGroupChildrenListsArraysAndSubgroups(t *testing.T) {
	ctx := context.Background()
	handle := storage.NewHandle(memstore.New())

	root, err := group.Create(ctx, handle, storekey.RootPrefix, nil)
	require.NoError(t, err)

	_, err = group.Create(ctx, handle, storekey.RootPrefix.Child("sub"), nil)
	require.NoError(t, err)

	_, err = array.Create(ctx, handle, storekey.RootPrefix.Child("data"), arrayMetadata(t))
	require.NoError(t, err)

	children, err := root.Children(ctx)
	require.NoError(t, err)
	require.Len(t, children, 2)
	require.Equal(t, "data", children[0].Name)
	require.Equal(t, metadata.NodeTypeArray, children[0].Kind)
	require.Equal(t, "sub", children[1].Name)
	require.Equal(t, metadata.NodeTypeGroup, children[1].Kind)
}

func TestGroupOpenArrayAndSubgroup(t *testing.T) {
	ctx := context.Background()
	handle := storage.NewHandle(memstore.New())
	root, err := group.Create(ctx, handle, storekey.RootPrefix, nil)
	require.NoError(t, err)
	_, err = group.Create(ctx, handle, storekey.RootPrefix.Child("sub"), nil)
	require.NoError(t, err)
	_, err = array.Create(ctx, handle, storekey.RootPrefix.Child("data"), arrayMetadata(t))
	require.NoError(t, err)

	sub, err := root.OpenGroup(ctx, "sub")
	require.NoError(t, err)
	require.Equal(t, storekey.RootPrefix.Child("sub"), sub.Prefix)

	arr, err := root.OpenArray(ctx, "data")
	require.NoError(t, err)
	require.Equal(t, []int64{2}, arr.Shape)
}

func TestWalkVisitsEveryNode(t *testing.T) {
	ctx := context.Background()
	handle := storage.NewHandle(memstore.New())
	_, err := group.Create(ctx, handle, storekey.RootPrefix, nil)
	require.NoError(t, err)
	_, err = group.Create(ctx, handle, storekey.RootPrefix.Child("sub"), nil)
	require.NoError(t, err)
	_, err = array.Create(ctx, handle, storekey.RootPrefix.Child("sub").Child("data"), arrayMetadata(t))
	require.NoError(t, err)

	var visited []string
	err = group.Walk(ctx, handle, storekey.RootPrefix, func(prefix storekey.Prefix, kind string) error {
		visited = append(visited, prefix.String()+":"+kind)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		":group",
		"sub/:group",
		"sub/data/:array",
	}, visited)
}
