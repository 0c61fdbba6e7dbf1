package spatial

import (
	"cmp"
	"math"
	"slices"

	"github.com/dshills/vecstorm/internal/engine/geom"
)

// chooseSubtree walks from the root to the node at depth level that needs
// the least enlargement to take box, returning the visited path.
func (t *Tree[T]) chooseSubtree(box geom.Box, level int) []*node[T] {
	var path []*node[T]
	n := t.root
	for {
		path = append(path, n)
		if n.leaf || len(path)-1 == level {
			return path
		}

		minArea := math.Inf(1)
		minEnlargement := math.Inf(1)
		var target *node[T]
		for _, child := range n.children {
			area := child.box.Area()
			enlargement := box.EnlargedArea(child.box) - area
			if enlargement < minEnlargement {
				minEnlargement = enlargement
				minArea = math.Min(area, minArea)
				target = child
			} else if enlargement == minEnlargement && area < minArea {
				minArea = area
				target = child
			}
		}
		if target == nil {
			target = n.children[0]
		}
		n = target
	}
}

// split divides the overflowing node at path[level] in two.
func (t *Tree[T]) split(path []*node[T], level int) {
	n := path[level]
	total := n.len()
	m := t.minEntries

	t.chooseSplitAxis(n, m, total)
	at := t.chooseSplitIndex(n, m, total)

	var sibling *node[T]
	if n.leaf {
		sibling = newLeaf(slices.Clone(n.items[at:]))
		n.items = slices.Clip(n.items[:at])
	} else {
		sibling = newInner(slices.Clone(n.children[at:]), n.height)
		n.children = slices.Clip(n.children[:at])
	}
	sibling.height = n.height
	t.calcBox(n)
	t.calcBox(sibling)

	if level > 0 {
		parent := path[level-1]
		parent.children = append(parent.children, sibling)
	} else {
		t.splitRoot(n, sibling)
	}
}

func (t *Tree[T]) splitRoot(a, b *node[T]) {
	t.root = newInner([]*node[T]{a, b}, a.height+1)
	t.calcBox(t.root)
}

// chooseSplitIndex picks the split position with the least overlap
// between the two groups, then the least total area.
func (t *Tree[T]) chooseSplitIndex(n *node[T], m, total int) int {
	index := -1
	minOverlap := math.Inf(1)
	minArea := math.Inf(1)
	for i := m; i <= total-m; i++ {
		b1 := t.distBox(n, 0, i)
		b2 := t.distBox(n, i, total)
		overlap := b1.IntersectionArea(b2)
		area := b1.Area() + b2.Area()
		if overlap < minOverlap {
			minOverlap = overlap
			index = i
			minArea = math.Min(area, minArea)
		} else if overlap == minOverlap && area < minArea {
			minArea = area
			index = i
		}
	}
	if index <= 0 {
		return total - m
	}
	return index
}

// chooseSplitAxis sorts the node's entries along the axis whose candidate
// distributions have the smaller total margin.
func (t *Tree[T]) chooseSplitAxis(n *node[T], m, total int) {
	xMargin := t.allDistMargin(n, m, total, compareMinX)
	yMargin := t.allDistMargin(n, m, total, compareMinY)
	if xMargin < yMargin {
		t.sortEntries(n, compareMinX)
	}
}

// allDistMargin sorts by compare and sums the margins of every candidate
// distribution.
func (t *Tree[T]) allDistMargin(n *node[T], m, total int, compare func(a, b geom.Box) int) float64 {
	t.sortEntries(n, compare)

	left := t.distBox(n, 0, m)
	right := t.distBox(n, total-m, total)
	margin := left.Margin() + right.Margin()

	for i := m; i < total-m; i++ {
		left = left.Union(t.entryBox(n, i))
		margin += left.Margin()
	}
	for i := total - m - 1; i >= m; i-- {
		right = right.Union(t.entryBox(n, i))
		margin += right.Margin()
	}
	return margin
}

func (t *Tree[T]) sortEntries(n *node[T], compare func(a, b geom.Box) int) {
	if n.leaf {
		slices.SortStableFunc(n.items, func(a, b T) int { return compare(t.bbox(a), t.bbox(b)) })
		return
	}
	slices.SortStableFunc(n.children, func(a, b *node[T]) int { return compare(a.box, b.box) })
}

func compareMinX(a, b geom.Box) int { return cmp.Compare(a.MinX, b.MinX) }
func compareMinY(a, b geom.Box) int { return cmp.Compare(a.MinY, b.MinY) }
