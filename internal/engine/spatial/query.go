package spatial

import "github.com/dshills/vecstorm/internal/engine/geom"

// All returns every item in the tree.
func (t *Tree[T]) All() []T {
	return collect(t.root, make([]T, 0, t.size))
}

func collect[T comparable](n *node[T], out []T) []T {
	stack := []*node[T]{n}
	for len(stack) > 0 {
		n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.leaf {
			out = append(out, n.items...)
		} else {
			stack = append(stack, n.children...)
		}
	}
	return out
}

// hit reports whether an item that is not contained in box still counts
// as an accurate hit.
func (t *Tree[T]) hit(box geom.Box, item T, itemBox geom.Box) bool {
	if !box.Intersects(itemBox) {
		return false
	}
	return t.precise == nil || t.precise(box, item)
}

// Search returns the items whose boxes intersect box. With accurate set,
// items only partly inside box must also pass the Precise predicate.
func (t *Tree[T]) Search(box geom.Box, accurate bool) []T {
	var result []T
	n := t.root
	if !box.Intersects(n.box) {
		return result
	}

	var stack []*node[T]
	for n != nil {
		for i := 0; i < n.len(); i++ {
			childBox := t.entryBox(n, i)
			switch {
			case accurate && box.Contains(childBox):
				if n.leaf {
					result = append(result, n.items[i])
				} else {
					result = collect(n.children[i], result)
				}
			case accurate && n.leaf:
				if t.hit(box, n.items[i], childBox) {
					result = append(result, n.items[i])
				}
			case !box.Intersects(childBox):
			case n.leaf:
				result = append(result, n.items[i])
			case box.Contains(childBox):
				result = collect(n.children[i], result)
			default:
				stack = append(stack, n.children[i])
			}
		}
		n = pop(&stack)
	}
	return result
}

// SearchAllIn returns the items whose boxes lie entirely inside box.
func (t *Tree[T]) SearchAllIn(box geom.Box) []T {
	var result []T
	n := t.root
	if !box.Intersects(n.box) {
		return result
	}

	var stack []*node[T]
	for n != nil {
		for i := 0; i < n.len(); i++ {
			childBox := t.entryBox(n, i)
			switch {
			case box.Contains(childBox):
				if n.leaf {
					result = append(result, n.items[i])
				} else {
					result = collect(n.children[i], result)
				}
			case !n.leaf && box.Intersects(childBox):
				stack = append(stack, n.children[i])
			}
		}
		n = pop(&stack)
	}
	return result
}

// Collide returns the first item an accurate Search would report. It stops
// as soon as one is found.
func (t *Tree[T]) Collide(box geom.Box) (T, bool) {
	var zero T
	n := t.root
	if !box.Intersects(n.box) {
		return zero, false
	}

	var stack []*node[T]
	for n != nil {
		for i := 0; i < n.len(); i++ {
			childBox := t.entryBox(n, i)
			switch {
			case box.Contains(childBox):
				if n.leaf {
					return n.items[i], true
				}
				return firstItem(n.children[i])
			case n.leaf:
				if t.hit(box, n.items[i], childBox) {
					return n.items[i], true
				}
			case box.Intersects(childBox):
				stack = append(stack, n.children[i])
			}
		}
		n = pop(&stack)
	}
	return zero, false
}

func firstItem[T comparable](n *node[T]) (T, bool) {
	for !n.leaf {
		if len(n.children) == 0 {
			break
		}
		n = n.children[0]
	}
	if n.leaf && len(n.items) > 0 {
		return n.items[0], true
	}
	var zero T
	return zero, false
}

func pop[T comparable](stack *[]*node[T]) *node[T] {
	s := *stack
	if len(s) == 0 {
		return nil
	}
	n := s[len(s)-1]
	*stack = s[:len(s)-1]
	return n
}

// Stats summarises the shape of a tree.
type Stats struct {
	Height int `json:"height"`
	Nodes  int `json:"nodes"`
	Leaves int `json:"leaves"`
	Items  int `json:"items"`
}

// Stats walks the tree and counts its nodes.
func (t *Tree[T]) Stats() Stats {
	s := Stats{Height: t.root.height}
	t.Walk(func(_ geom.Box, _ int, leaf bool) bool {
		s.Nodes++
		if leaf {
			s.Leaves++
		}
		return true
	})
	s.Items = t.size
	return s
}

// Walk visits every node top-down, reporting its box, height and whether it
// is a leaf. Returning false from fn skips the node's subtree.
func (t *Tree[T]) Walk(fn func(box geom.Box, height int, leaf bool) bool) {
	stack := []*node[T]{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n.box, n.height, n.leaf) || n.leaf {
			continue
		}
		stack = append(stack, n.children...)
	}
}
