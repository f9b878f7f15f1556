// Package group implements zarr.json group nodes and the recursive
// discovery of arrays and subgroups beneath one, generalizing the
// teacher's iterateSubGrid recursive-walk shape (in zarr/dataset.go) from
// walking an index grid to walking a store's key hierarchy.
package group

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/TuSKan/zarrcore/pkg/array"
	"github.com/TuSKan/zarrcore/pkg/metadata"
	"github.com/TuSKan/zarrcore/pkg/storage"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Group is a handle onto one zarr group node.
type Group struct {
	Store      *storage.Handle
	Prefix     storekey.Prefix
	Attributes map[string]any
}

func metadataKey(prefix storekey.Prefix) (storekey.Key, error) {
	return prefix.WithKey(array.ZarrJSON)
}

// Open reads prefix's zarr.json and constructs the Group it describes.
func Open(ctx context.Context, store *storage.Handle, prefix storekey.Prefix) (*Group, error) {
	key, err := metadataKey(prefix)
	if err != nil {
		return nil, err
	}
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("group: read %q: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("group: no zarr.json at %q", prefix)
	}
	m, err := metadata.ParseGroup(raw)
	if err != nil {
		return nil, fmt.Errorf("group: parse %q: %w", key, err)
	}
	return &Group{Store: store, Prefix: prefix, Attributes: m.Attributes}, nil
}

// Create writes prefix's zarr.json for a new group with the given
// attributes and returns the resulting Group.
func Create(ctx context.Context, store *storage.Handle, prefix storekey.Prefix, attributes map[string]any) (*Group, error) {
	m := &metadata.GroupMetadata{Attributes: attributes}
	raw, err := metadata.MarshalGroup(m)
	if err != nil {
		return nil, err
	}
	key, err := metadataKey(prefix)
	if err != nil {
		return nil, err
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return nil, fmt.Errorf("group: write %q: %w", key, err)
	}
	return &Group{Store: store, Prefix: prefix, Attributes: attributes}, nil
}

// Entry describes one immediate child node of a group.
type Entry struct {
	Name   string
	Prefix storekey.Prefix
	Kind   string // metadata.NodeTypeArray or metadata.NodeTypeGroup
}

func childName(prefix storekey.Prefix) string {
	s := strings.TrimSuffix(string(prefix), "/")
	idx := strings.LastIndexByte(s, '/')
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

// Children lists g's immediate child nodes, reading each candidate
// child's zarr.json to determine whether it is an array or a group.
// Child prefixes with no zarr.json of their own (no node there) are
// skipped.
func (g *Group) Children(ctx context.Context) ([]Entry, error) {
	_, prefixes, err := g.Store.ListDir(ctx, g.Prefix)
	if err != nil {
		return nil, fmt.Errorf("group: list %q: %w", g.Prefix, err)
	}
	entries := make([]Entry, 0, len(prefixes))
	for _, p := range prefixes {
		key, err := metadataKey(p)
		if err != nil {
			return nil, err
		}
		raw, ok, err := g.Store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("group: read %q: %w", key, err)
		}
		if !ok {
			continue
		}
		kind, err := metadata.NodeType(raw)
		if err != nil {
			return nil, fmt.Errorf("group: %q: %w", key, err)
		}
		entries = append(entries, Entry{Name: childName(p), Prefix: p, Kind: kind})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// OpenArray opens the array node named name directly beneath g.
func (g *Group) OpenArray(ctx context.Context, name string) (*array.Array, error) {
	return array.Open(ctx, g.Store, g.Prefix.Child(name))
}

// OpenGroup opens the group node named name directly beneath g.
func (g *Group) OpenGroup(ctx context.Context, name string) (*Group, error) {
	return Open(ctx, g.Store, g.Prefix.Child(name))
}

// Visitor receives one call per node discovered by Walk, including the
// root itself.
type Visitor func(prefix storekey.Prefix, kind string) error

// Walk recursively visits root and every array/group node beneath it,
// depth-first, visiting a group before its children.
func Walk(ctx context.Context, store *storage.Handle, root storekey.Prefix, visit Visitor) error {
	key, err := metadataKey(root)
	if err != nil {
		return err
	}
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("group: read %q: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("group: no zarr.json at %q", root)
	}
	kind, err := metadata.NodeType(raw)
	if err != nil {
		return fmt.Errorf("group: %q: %w", key, err)
	}
	if err := visit(root, kind); err != nil {
		return err
	}
	if kind != metadata.NodeTypeGroup {
		return nil
	}
	g := &Group{Store: store, Prefix: root}
	children, err := g.Children(ctx)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := Walk(ctx, store, child.Prefix, visit); err != nil {
			return err
		}
	}
	return nil
}
