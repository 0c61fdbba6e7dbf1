// Package spatial provides an R-tree over opaque items keyed by their
// axis-aligned bounding boxes.
//
// The tree knows nothing about what it stores. Callers describe their item
// type through Options:
//
//	tree := spatial.New(spatial.Options[Handle]{
//		BBox:    func(h Handle) geom.Box { return h.Box },
//		Precise: func(b geom.Box, h Handle) bool { return kernel.Hit(b, h) },
//		Equal:   func(a, b Handle) bool { return a.ID == b.ID },
//	})
//
// # Building
//
// Load builds a balanced tree bottom-up with the Overlap Minimizing
// Top-down (OMT) algorithm and is much faster than inserting items one by
// one. Loading into a non-empty tree merges the new subtree at the level
// that matches its height.
//
// Insert descends choosing the child that needs the least enlargement and
// splits overflowing nodes along the axis of least margin.
//
// # Queries
//
//   - Search returns every item whose box intersects a query box. In
//     accurate mode, items that are not fully inside the query box are
//     confirmed with the Precise predicate.
//   - SearchAllIn returns only items fully contained in the query box.
//   - Collide returns the first item Search(box, true) would report.
//
// A Tree is not safe for concurrent use.
package spatial
