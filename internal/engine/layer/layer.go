// Package layer keeps the drawing's layer table and tracks which layer new
// entities are stamped with.
package layer

import (
	"errors"
	"slices"
)

// Errors returned by Registry.
var (
	ErrNotFound  = errors.New("layer: not found")
	ErrLastLayer = errors.New("layer: cannot remove the last layer")
)

// DefaultName is the name of the layer every registry starts with.
const DefaultName = "0"

// Layer is the record stamped onto entities. It is copied by value so an
// entity keeps the attributes its layer had when it was drawn.
type Layer struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	On          bool    `json:"on"`
	Frozen      bool    `json:"frozen"`
	Locked      bool    `json:"locked"`
	Color       string  `json:"color"`
	LineType    string  `json:"lineType"`
	LineWeight  float64 `json:"lineWeight"`
	PrintStyle  string  `json:"printStyle"`
	Print       bool    `json:"print"`
	Description string  `json:"description"`
}

// New returns a visible, printable layer with the default colours.
func New(id, name string) Layer {
	return Layer{
		ID:         id,
		Name:       name,
		On:         true,
		Color:      "#fff",
		PrintStyle: "#fff",
		Print:      true,
	}
}

// Registry is an ordered layer table with exactly one current layer.
// It is not safe for concurrent use.
type Registry struct {
	layers  []Layer
	current string
	newID   func() string
}

// NewRegistry creates a registry holding a single default layer, which is
// current. newID supplies ids for layers created later.
func NewRegistry(newID func() string) *Registry {
	first := New(newID(), DefaultName)
	return &Registry{
		layers:  []Layer{first},
		current: first.ID,
		newID:   newID,
	}
}

// Current returns the layer new entities are drawn on.
func (r *Registry) Current() Layer {
	if i := r.index(r.current); i >= 0 {
		return r.layers[i]
	}
	// the current layer was removed from under us; fall back to the first
	r.current = r.layers[0].ID
	return r.layers[0]
}

// List returns a copy of the layer table in order.
func (r *Registry) List() []Layer {
	return slices.Clone(r.layers)
}

// Get returns the layer with the given id.
func (r *Registry) Get(id string) (Layer, error) {
	i := r.index(id)
	if i < 0 {
		return Layer{}, ErrNotFound
	}
	return r.layers[i], nil
}

// Add appends a new layer with the given name and returns it.
func (r *Registry) Add(name string) Layer {
	l := New(r.newID(), name)
	r.layers = append(r.layers, l)
	return l
}

// Update replaces the stored attributes of an existing layer.
func (r *Registry) Update(l Layer) error {
	i := r.index(l.ID)
	if i < 0 {
		return ErrNotFound
	}
	r.layers[i] = l
	return nil
}

// SetCurrent makes the layer with the given id current.
func (r *Registry) SetCurrent(id string) error {
	if r.index(id) < 0 {
		return ErrNotFound
	}
	r.current = id
	return nil
}

// Remove deletes a layer. The last remaining layer cannot be removed.
// Removing the current layer makes the first remaining layer current.
func (r *Registry) Remove(id string) error {
	i := r.index(id)
	if i < 0 {
		return ErrNotFound
	}
	if len(r.layers) == 1 {
		return ErrLastLayer
	}
	r.layers = slices.Delete(r.layers, i, i+1)
	if r.current == id {
		r.current = r.layers[0].ID
	}
	return nil
}

// Replace swaps the whole table, as when a drawing is loaded. The first
// layer becomes current unless the previous current id is still present.
func (r *Registry) Replace(layers []Layer) {
	if len(layers) == 0 {
		return
	}
	r.layers = slices.Clone(layers)
	if r.index(r.current) < 0 {
		r.current = r.layers[0].ID
	}
}

func (r *Registry) index(id string) int {
	return slices.IndexFunc(r.layers, func(l Layer) bool { return l.ID == id })
}
