// Package idpool allocates entity ids. Ids are TypeIDs (a readable prefix
// plus a sortable random suffix) and are never handed out twice while the
// entity holding them is alive.
package idpool

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefixes for the ids this module allocates.
const (
	PrefixEntity = "ent"
	PrefixLayer  = "layer"
)

// New returns a fresh TypeID string with the given prefix.
func New(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

// Validate checks that id is a well formed TypeID carrying prefix.
func Validate(id, prefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("idpool: invalid id %q: %w", id, err)
	}
	if parsed.Prefix() != prefix {
		return fmt.Errorf("idpool: expected prefix %q but got %q in id %q", prefix, parsed.Prefix(), id)
	}
	return nil
}

// Pool tracks the ids of live entities.
// It is not safe for concurrent use.
type Pool struct {
	prefix string
	live   map[string]struct{}
	gen    func(prefix string) string
}

// NewPool creates a pool handing out ids with the given prefix.
func NewPool(prefix string) *Pool {
	return &Pool{
		prefix: prefix,
		live:   make(map[string]struct{}),
		gen:    New,
	}
}

// Allocate returns an id that is not currently live and marks it live.
func (p *Pool) Allocate() string {
	for {
		id := p.gen(p.prefix)
		if _, taken := p.live[id]; taken {
			continue
		}
		p.live[id] = struct{}{}
		return id
	}
}

// Reserve marks an existing id live, as when an entity is restored by undo
// or loaded from storage.
func (p *Pool) Reserve(id string) {
	p.live[id] = struct{}{}
}

// Release marks id free. Releasing an unknown id is a no-op.
func (p *Pool) Release(id string) {
	delete(p.live, id)
}

// Live reports whether id is currently allocated.
func (p *Pool) Live(id string) bool {
	_, ok := p.live[id]
	return ok
}

// Len returns the number of live ids.
func (p *Pool) Len() int {
	return len(p.live)
}
