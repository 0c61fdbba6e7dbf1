package spatial

import (
	"math"

	"github.com/dshills/vecstorm/internal/engine/geom"
)

// DefaultMaxEntries is the node capacity used when Options.MaxEntries is 0.
const DefaultMaxEntries = 9

// Options describes the item type stored in a Tree.
type Options[T comparable] struct {
	// MaxEntries is the node capacity. Values below 4 are raised to 4.
	MaxEntries int

	// BBox returns the box an item is indexed under. Required.
	BBox func(T) geom.Box

	// Precise confirms an accurate hit for an item whose box intersects
	// but is not contained in the query box. When nil, box intersection
	// alone counts as a hit.
	Precise func(geom.Box, T) bool

	// Equal decides which leaf entry Remove deletes. When nil, items are
	// compared with ==.
	Equal func(a, b T) bool
}

// node is an internal tree node. Leaves hold items, inner nodes hold
// children. box is always the union of what the node holds.
type node[T comparable] struct {
	children []*node[T]
	items    []T
	height   int
	leaf     bool
	box      geom.Box
}

func newLeaf[T comparable](items []T) *node[T] {
	return &node[T]{items: items, height: 1, leaf: true, box: geom.EmptyBox()}
}

func newInner[T comparable](children []*node[T], height int) *node[T] {
	return &node[T]{children: children, height: height, box: geom.EmptyBox()}
}

func (n *node[T]) len() int {
	if n.leaf {
		return len(n.items)
	}
	return len(n.children)
}

// Tree is an R-tree of items of type T.
type Tree[T comparable] struct {
	maxEntries int
	minEntries int
	bbox       func(T) geom.Box
	precise    func(geom.Box, T) bool
	equal      func(a, b T) bool

	root *node[T]
	size int
}

// New creates an empty tree.
func New[T comparable](opts Options[T]) *Tree[T] {
	if opts.BBox == nil {
		panic("spatial: Options.BBox is required")
	}
	maxEntries := opts.MaxEntries
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}
	maxEntries = max(4, maxEntries)

	t := &Tree[T]{
		maxEntries: maxEntries,
		minEntries: max(2, int(math.Ceil(float64(maxEntries)*0.4))),
		bbox:       opts.BBox,
		precise:    opts.Precise,
		equal:      opts.Equal,
	}
	if t.equal == nil {
		t.equal = func(a, b T) bool { return a == b }
	}
	t.Clear()
	return t
}

// Clear removes every item.
func (t *Tree[T]) Clear() {
	t.root = newLeaf[T](nil)
	t.size = 0
}

// Len returns the number of items.
func (t *Tree[T]) Len() int { return t.size }

// Height returns the height of the tree; an empty tree has height 1.
func (t *Tree[T]) Height() int { return t.root.height }

// Bounds returns the union of every item's box.
func (t *Tree[T]) Bounds() geom.Box { return t.root.box }

// MaxEntries returns the node capacity.
func (t *Tree[T]) MaxEntries() int { return t.maxEntries }

// Insert adds one item.
func (t *Tree[T]) Insert(item T) {
	t.insertItem(item)
	t.size++
}

// Load bulk-inserts items. A small batch falls back to one-by-one insertion.
func (t *Tree[T]) Load(items []T) {
	if len(items) == 0 {
		return
	}
	if len(items) < t.minEntries {
		for _, it := range items {
			t.Insert(it)
		}
		return
	}

	work := make([]T, len(items))
	copy(work, items)
	n := t.build(work, 0, len(work)-1, 0)
	t.size += len(items)

	switch {
	case t.root.len() == 0:
		t.root = n
	case t.root.height == n.height:
		t.splitRoot(t.root, n)
	default:
		if t.root.height < n.height {
			t.root, n = n, t.root
		}
		t.insertNode(n, t.root.height-n.height-1)
	}
}

// Remove deletes the leaf entry equal to item. Removing an item that is
// not in the tree is a no-op.
func (t *Tree[T]) Remove(item T) {
	t.RemoveFunc(item, t.equal)
}

// RemoveFunc is Remove with an explicit equality.
func (t *Tree[T]) RemoveFunc(item T, equal func(a, b T) bool) {
	box := t.bbox(item)

	var (
		n       = t.root
		parent  *node[T]
		path    []*node[T]
		indexes []int
		i       int
		goingUp bool
	)
	for n != nil || len(path) > 0 {
		if n == nil {
			// go up
			n = path[len(path)-1]
			path = path[:len(path)-1]
			parent = nil
			if len(path) > 0 {
				parent = path[len(path)-1]
			}
			i = indexes[len(indexes)-1]
			indexes = indexes[:len(indexes)-1]
			goingUp = true
		}

		if n.leaf {
			for k, it := range n.items {
				if equal(item, it) {
					n.items = append(n.items[:k], n.items[k+1:]...)
					path = append(path, n)
					t.condense(path)
					t.size--
					return
				}
			}
		}

		switch {
		case !goingUp && !n.leaf && n.box.Contains(box):
			// go down
			path = append(path, n)
			indexes = append(indexes, i)
			i = 0
			parent = n
			n = n.children[0]
		case parent != nil:
			// go right
			i++
			n = nil
			if i < len(parent.children) {
				n = parent.children[i]
			}
			goingUp = false
		default:
			n = nil
		}
	}
}

func (t *Tree[T]) insertItem(item T) {
	box := t.bbox(item)
	level := t.root.height - 1
	path := t.chooseSubtree(box, level)
	leaf := path[len(path)-1]
	leaf.items = append(leaf.items, item)
	leaf.box = leaf.box.Union(box)
	t.afterInsert(box, path, level)
}

func (t *Tree[T]) insertNode(n *node[T], level int) {
	path := t.chooseSubtree(n.box, level)
	target := path[len(path)-1]
	target.children = append(target.children, n)
	target.box = target.box.Union(n.box)
	t.afterInsert(n.box, path, level)
}

// afterInsert splits overflowing nodes bottom-up and widens the boxes of
// the ancestors that were not split.
func (t *Tree[T]) afterInsert(box geom.Box, path []*node[T], level int) {
	for level >= 0 {
		if path[level].len() > t.maxEntries {
			t.split(path, level)
			level--
		} else {
			break
		}
	}
	for i := level; i >= 0; i-- {
		path[i].box = path[i].box.Union(box)
	}
}

// condense removes emptied nodes along path and refreshes boxes.
func (t *Tree[T]) condense(path []*node[T]) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].len() == 0 {
			if i > 0 {
				siblings := path[i-1].children
				for k, c := range siblings {
					if c == path[i] {
						path[i-1].children = append(siblings[:k], siblings[k+1:]...)
						break
					}
				}
			} else {
				t.root = newLeaf[T](nil)
			}
		} else {
			t.calcBox(path[i])
		}
	}
}

// calcBox recomputes a node's box from what it holds.
func (t *Tree[T]) calcBox(n *node[T]) {
	n.box = t.distBox(n, 0, n.len())
}

// distBox returns the union of the boxes of entries [k, p) of n.
func (t *Tree[T]) distBox(n *node[T], k, p int) geom.Box {
	b := geom.EmptyBox()
	for i := k; i < p; i++ {
		b = b.Union(t.entryBox(n, i))
	}
	return b
}

func (t *Tree[T]) entryBox(n *node[T], i int) geom.Box {
	if n.leaf {
		return t.bbox(n.items[i])
	}
	return n.children[i].box
}
