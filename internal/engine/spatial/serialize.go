package spatial

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/vecstorm/internal/engine/geom"
)

// Node is the serialisable form of a tree node. In JSON it is
// {children, height, leaf, minX, minY, maxX, maxY}, where children holds
// nodes for inner nodes and items for leaves.
type Node[T any] struct {
	Children []*Node[T]
	Items    []T
	Height   int
	Leaf     bool
	MinX     float64
	MinY     float64
	MaxX     float64
	MaxY     float64
}

type nodeJSON struct {
	Children json.RawMessage `json:"children"`
	Height   int             `json:"height"`
	Leaf     bool            `json:"leaf"`
	MinX     float64         `json:"minX"`
	MinY     float64         `json:"minY"`
	MaxX     float64         `json:"maxX"`
	MaxY     float64         `json:"maxY"`
}

// MarshalJSON implements json.Marshaler.
func (n *Node[T]) MarshalJSON() ([]byte, error) {
	var children any = n.Children
	if n.Leaf {
		items := n.Items
		if items == nil {
			items = []T{}
		}
		children = items
	} else if n.Children == nil {
		children = []*Node[T]{}
	}
	raw, err := json.Marshal(children)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nodeJSON{
		Children: raw,
		Height:   n.Height,
		Leaf:     n.Leaf,
		MinX:     finite(n.MinX),
		MinY:     finite(n.MinY),
		MaxX:     finite(n.MaxX),
		MaxY:     finite(n.MaxY),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node[T]) UnmarshalJSON(data []byte) error {
	var aux nodeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Node[T]{
		Height: aux.Height,
		Leaf:   aux.Leaf,
		MinX:   aux.MinX,
		MinY:   aux.MinY,
		MaxX:   aux.MaxX,
		MaxY:   aux.MaxY,
	}
	if len(aux.Children) == 0 {
		return nil
	}
	if aux.Leaf {
		return json.Unmarshal(aux.Children, &n.Items)
	}
	return json.Unmarshal(aux.Children, &n.Children)
}

// finite maps the infinities of an empty box to 0; JSON has no infinity.
func finite(v float64) float64 {
	if v > 1e308 || v < -1e308 {
		return 0
	}
	return v
}

// ToSerializable returns a deep copy of the node graph.
func (t *Tree[T]) ToSerializable() *Node[T] {
	return exportNode(t.root)
}

func exportNode[T comparable](n *node[T]) *Node[T] {
	out := &Node[T]{
		Height: n.height,
		Leaf:   n.leaf,
		MinX:   n.box.MinX,
		MinY:   n.box.MinY,
		MaxX:   n.box.MaxX,
		MaxY:   n.box.MaxY,
	}
	if n.leaf {
		out.Items = append([]T(nil), n.items...)
		return out
	}
	out.Children = make([]*Node[T], len(n.children))
	for i, c := range n.children {
		out.Children[i] = exportNode(c)
	}
	return out
}

// FromSerializable replaces the tree's contents with a node graph produced
// by ToSerializable, without rebuilding. A nil root clears the tree.
func (t *Tree[T]) FromSerializable(root *Node[T]) error {
	if root == nil {
		t.Clear()
		return nil
	}
	n, size, err := importNode(root, root.Height)
	if err != nil {
		return err
	}
	if size == 0 {
		t.Clear()
		return nil
	}
	t.root = n
	t.size = size
	return nil
}

func importNode[T comparable](in *Node[T], height int) (*node[T], int, error) {
	if in.Height != height {
		return nil, 0, fmt.Errorf("spatial: node height %d, expected %d", in.Height, height)
	}
	if in.Leaf {
		if height != 1 {
			return nil, 0, fmt.Errorf("spatial: leaf at height %d", height)
		}
		n := newLeaf(append([]T(nil), in.Items...))
		n.box = boxOf(in)
		return n, len(n.items), nil
	}
	if len(in.Children) == 0 {
		return nil, 0, fmt.Errorf("spatial: inner node at height %d has no children", height)
	}
	n := newInner[T](make([]*node[T], 0, len(in.Children)), height)
	n.box = boxOf(in)
	size := 0
	for _, c := range in.Children {
		if c == nil {
			return nil, 0, fmt.Errorf("spatial: nil child at height %d", height)
		}
		child, k, err := importNode(c, height-1)
		if err != nil {
			return nil, 0, err
		}
		n.children = append(n.children, child)
		size += k
	}
	return n, size, nil
}

func boxOf[T any](in *Node[T]) geom.Box {
	return geom.Box{MinX: in.MinX, MinY: in.MinY, MaxX: in.MaxX, MaxY: in.MaxY}
}
