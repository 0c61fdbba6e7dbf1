package dispatcher

import (
	"container/list"
	"sort"
	"strings"
)

// DefaultCacheSize is the number of command instances kept for reuse.
const DefaultCacheSize = 10

// Registry maps command names to definitions and caches instances in a
// small LRU. Names are case-insensitive.
// It is not safe for concurrent use.
type Registry struct {
	defs map[string]Definition

	maxSize int
	items   map[string]*list.Element
	lru     *list.List
}

type cacheEntry struct {
	name string
	inst Instance
}

// NewRegistry creates a registry caching up to cacheSize instances.
func NewRegistry(cacheSize int) *Registry {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Registry{
		defs:    make(map[string]Definition),
		maxSize: cacheSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Register adds definitions, replacing any with the same name.
func (r *Registry) Register(defs ...Definition) {
	for _, d := range defs {
		name := normalize(d.CommandName())
		r.defs[name] = d
		if elem, ok := r.items[name]; ok {
			r.removeElement(elem)
		}
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.defs[normalize(name)]
	return ok
}

// Get returns a ready instance of the named command. Cached instances are
// reset before they are handed out.
func (r *Registry) Get(name string) (Instance, bool) {
	name = normalize(name)
	if elem, ok := r.items[name]; ok {
		r.lru.MoveToFront(elem)
		inst := elem.Value.(*cacheEntry).inst //nolint:errcheck // list only contains *cacheEntry
		inst.Reset()
		return inst, true
	}

	d, ok := r.defs[name]
	if !ok {
		return nil, false
	}
	inst := d.Instantiate()

	if r.lru.Len() >= r.maxSize {
		r.evictOldest()
	}
	r.items[name] = r.lru.PushFront(&cacheEntry{name: name, inst: inst})
	return inst, true
}

// List returns all registered command names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Description returns the description of the named command.
func (r *Registry) Description(name string) string {
	if d, ok := r.defs[normalize(name)]; ok {
		return d.CommandDescription()
	}
	return ""
}

// Cached returns the number of cached instances.
func (r *Registry) Cached() int { return r.lru.Len() }

func (r *Registry) evictOldest() {
	if elem := r.lru.Back(); elem != nil {
		r.removeElement(elem)
	}
}

func (r *Registry) removeElement(elem *list.Element) {
	r.lru.Remove(elem)
	delete(r.items, elem.Value.(*cacheEntry).name) //nolint:errcheck // list only contains *cacheEntry
}
