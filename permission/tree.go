package permission

import "fmt"

// Node is one resource in the permission tree. Grants is nil when the
// caller's roles carry no entry for the resource.
type Node struct {
	ResourceKey string  `json:"resourceKey"`
	Grants      *Grants `json:"grants,omitempty"`
	Children    []*Node `json:"children,omitempty"`
}

// Tree is an immutable, validated permission tree.
type Tree struct {
	roots []*Node
	size  int
}

// NewTree validates nodes and returns a tree over them. Resource keys must be
// non-empty and unique across all levels.
func NewTree(nodes []*Node) (*Tree, error) {
	seen := make(map[string]struct{})
	var walk func(ns []*Node) error
	walk = func(ns []*Node) error {
		for _, n := range ns {
			if n == nil {
				continue
			}
			if n.ResourceKey == "" {
				return ErrEmptyResourceKey
			}
			if _, ok := seen[n.ResourceKey]; ok {
				return fmt.Errorf("%w: %s", ErrDuplicateResourceKey, n.ResourceKey)
			}
			seen[n.ResourceKey] = struct{}{}
			if err := walk(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(nodes); err != nil {
		return nil, err
	}
	return &Tree{roots: nodes, size: len(seen)}, nil
}

// Empty reports whether the tree has no nodes. A nil tree is empty.
func (t *Tree) Empty() bool {
	return t == nil || t.size == 0
}

// Len is the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Roots returns the top level nodes.
func (t *Tree) Roots() []*Node {
	if t == nil {
		return nil
	}
	return t.roots
}

// Find does a pre-order depth first search for resourceKey.
func (t *Tree) Find(resourceKey string) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	return find(t.roots, resourceKey)
}

func find(nodes []*Node, resourceKey string) (*Node, bool) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.ResourceKey == resourceKey {
			return n, true
		}
		if found, ok := find(n.Children, resourceKey); ok {
			return found, true
		}
	}
	return nil, false
}
