// Package renderer draws a drawing onto a character-cell backend.
//
// The renderer listens to store events and repaints only what changed:
// every event carries the area it touched before and after, which the
// dirty tracker coalesces until the next frame. A frame clears those
// areas and redraws the entities the store reports inside them.
//
//	┌─────────────────────────────────────────┐
//	│      Renderer (store/command events)    │
//	├─────────────────────────────────────────┤
//	│  Viewport │ Dirty tracker │ Rasteriser  │
//	├─────────────────────────────────────────┤
//	│  Terminal (tcell) │ Memory │ Null       │
//	└─────────────────────────────────────────┘
//
// Hovered entities and selected entities get their own styles, command
// previews are drawn on top, and the RTV command toggles an overlay of
// the spatial index's node boxes.
//
// Render must run on the goroutine that mutates the store.
package renderer
