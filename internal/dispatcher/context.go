package dispatcher

import (
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/engine/history"
	"github.com/dshills/vecstorm/internal/engine/spatial"
	"github.com/dshills/vecstorm/internal/engine/store"
)

// Context is what command actions see of the editor: read access to the
// store and the three commit helpers. Commands never touch the store or
// the history directly.
type Context struct {
	m *Manager
}

// CommitCreate assigns fresh ids to entities, adds them to the store and
// records the creation. The input is not modified. It returns the stored
// entities.
func (c *Context) CommitCreate(entities []*entity.Entity) []*entity.Entity {
	if len(entities) == 0 {
		return nil
	}
	batch := make([]*entity.Entity, len(entities))
	for i, e := range entities {
		batch[i] = e.Clone()
		batch[i].ID = c.m.ids.Allocate()
		batch[i].AABB = nil
	}
	added := c.m.store.Add(batch)
	if len(added) != len(batch) {
		// ids of skipped entities go back to the pool
		stored := make(map[string]bool, len(added))
		for _, e := range added {
			stored[e.ID] = true
		}
		for _, e := range batch {
			if !stored[e.ID] {
				c.m.ids.Release(e.ID)
			}
		}
	}
	c.m.history.Record(history.Created, added)
	c.m.metrics.setHistoryDepth(c.m.history.Pointer())
	return added
}

// CommitEdit replaces stored entities, matched by id, and records the
// edit. It returns the stored entities.
func (c *Context) CommitEdit(entities []*entity.Entity) []*entity.Entity {
	if len(entities) == 0 {
		return nil
	}
	before := make([]*entity.Entity, 0, len(entities))
	for _, e := range entities {
		if cur, ok := c.m.store.Get(e.ID); ok {
			before = append(before, cur)
		}
	}
	c.m.history.Baseline(before)

	edited := c.m.store.Edit(entities)
	c.m.history.Record(history.Edited, edited)
	c.m.metrics.setHistoryDepth(c.m.history.Pointer())
	return edited
}

// CommitDelete removes stored entities, matched by id, and records the
// deletion. It returns the removed entities.
func (c *Context) CommitDelete(entities []*entity.Entity) []*entity.Entity {
	if len(entities) == 0 {
		return nil
	}
	removed := c.m.store.Delete(entities)
	c.m.history.Record(history.Deleted, removed)
	c.m.metrics.setHistoryDepth(c.m.history.Pointer())
	return removed
}

// Get returns a copy of the entity with the given id.
func (c *Context) Get(id string) (*entity.Entity, bool) { return c.m.store.Get(id) }

// All returns copies of every entity.
func (c *Context) All() []*entity.Entity { return c.m.store.All() }

// Len returns the number of stored entities.
func (c *Context) Len() int { return c.m.store.Len() }

// Selection returns copies of the selected entities.
func (c *Context) Selection() []*entity.Entity { return c.m.store.Selection() }

// SelectionLen returns the number of selected entities.
func (c *Context) SelectionLen() int { return c.m.store.SelectionLen() }

// QueryTouching returns copies of the entities touching box.
func (c *Context) QueryTouching(box geom.Box, exact bool) []*entity.Entity {
	return c.m.store.QueryTouching(box, exact)
}

// HitBox returns the square around p that hit tests use.
func (c *Context) HitBox(p geom.Point) geom.Box { return c.m.hitBox(p) }

// Cursor returns the last pointer position reported to the manager.
func (c *Context) Cursor() geom.Point { return c.m.cursor }

// Document captures the store for saving.
func (c *Context) Document() store.Document { return c.m.store.Document() }

// IndexStats describes the spatial index.
func (c *Context) IndexStats() spatial.Stats { return c.m.store.IndexStats() }

// Commands lists the registered command names.
func (c *Context) Commands() []string { return c.m.registry.List() }

// Describe returns the description of a registered command.
func (c *Context) Describe(name string) string { return c.m.registry.Description(name) }

// Logger returns the manager's logger.
func (c *Context) Logger() Logger { return c.m.logger }
