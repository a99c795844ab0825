package dbcontext

import (
	"context"
	"sync"

	"github.com/seeqdb/seeq/internal/model"
)

// Cache wraps a Builder with lazy, single-flight construction. The first
// caller builds the context; concurrent callers block and share the
// result. Invalidate discards the snapshot so the next call rebuilds.
type Cache struct {
	builder *Builder

	mu      sync.Mutex
	current *model.SchemaContext
}

// NewCache creates a Cache over the given builder.
func NewCache(builder *Builder) *Cache {
	return &Cache{builder: builder}
}

// Context returns the cached schema context, building it on first use.
func (c *Cache) Context(ctx context.Context) (*model.SchemaContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return c.current, nil
	}
	sc, err := c.builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	c.current = sc
	return sc, nil
}

// Invalidate discards the cached snapshot. The next Context call rebuilds
// from the live database.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
