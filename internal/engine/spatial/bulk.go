package spatial

import (
	"math"
	"slices"
)

// build constructs a subtree over items[left..right] using OMT tiling.
// height 0 means "this is the top of the subtree; derive the height".
func (t *Tree[T]) build(items []T, left, right, height int) *node[T] {
	n := right - left + 1
	m := t.maxEntries

	if n <= m {
		leaf := newLeaf(slices.Clone(items[left : right+1]))
		t.calcBox(leaf)
		return leaf
	}

	if height == 0 {
		height = int(math.Ceil(math.Log(float64(n)) / math.Log(float64(m))))
		// capacity of the root so that the tree comes out full
		m = int(math.Ceil(float64(n) / math.Pow(float64(m), float64(height-1))))
	}

	inner := newInner[T](nil, height)

	n2 := int(math.Ceil(float64(n) / float64(m)))
	n1 := n2 * int(math.Ceil(math.Sqrt(float64(m))))

	byX := func(a, b T) int { return compareMinX(t.bbox(a), t.bbox(b)) }
	byY := func(a, b T) int { return compareMinY(t.bbox(a), t.bbox(b)) }

	multiSelect(items, left, right, n1, byX)
	for i := left; i <= right; i += n1 {
		right2 := min(i+n1-1, right)
		multiSelect(items, i, right2, n2, byY)
		for j := i; j <= right2; j += n2 {
			right3 := min(j+n2-1, right2)
			inner.children = append(inner.children, t.build(items, j, right3, height-1))
		}
	}
	t.calcBox(inner)
	return inner
}

// multiSelect partially sorts items[left..right] so that every run of n
// elements holds the right elements, unordered within the run.
func multiSelect[T any](items []T, left, right, n int, compare func(a, b T) int) {
	stack := []int{left, right}
	for len(stack) > 0 {
		right = stack[len(stack)-1]
		left = stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		if right-left <= n {
			continue
		}
		mid := left + int(math.Ceil(float64(right-left)/float64(n)/2))*n
		quickselect(items, mid, left, right, compare)
		stack = append(stack, left, mid, mid, right)
	}
}

// quickselect rearranges items[left..right] so that items[k] is the
// element that would be there if sorted, with smaller elements before it
// and larger after (Floyd-Rivest selection).
func quickselect[T any](items []T, k, left, right int, compare func(a, b T) int) {
	for right > left {
		if right-left > 600 {
			n := float64(right - left + 1)
			m := float64(k - left + 1)
			z := math.Log(n)
			s := 0.5 * math.Exp(2*z/3)
			sd := 0.5 * math.Sqrt(z*s*(n-s)/n)
			if m-n/2 < 0 {
				sd = -sd
			}
			newLeft := max(left, int(math.Floor(float64(k)-m*s/n+sd)))
			newRight := min(right, int(math.Floor(float64(k)+(n-m)*s/n+sd)))
			quickselect(items, k, newLeft, newRight, compare)
		}

		pivot := items[k]
		i, j := left, right

		items[left], items[k] = items[k], items[left]
		if compare(items[right], pivot) > 0 {
			items[left], items[right] = items[right], items[left]
		}

		for i < j {
			items[i], items[j] = items[j], items[i]
			i++
			j--
			for compare(items[i], pivot) < 0 {
				i++
			}
			for compare(items[j], pivot) > 0 {
				j--
			}
		}

		if compare(items[left], pivot) == 0 {
			items[left], items[j] = items[j], items[left]
		} else {
			j++
			items[j], items[right] = items[right], items[j]
		}

		if j <= k {
			left = j + 1
		}
		if k <= j {
			right = j - 1
		}
	}
}
