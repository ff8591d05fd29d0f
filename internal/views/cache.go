// Package views tracks a version number per rendered path so the rendering
// layer can tell when its cached view of that path went stale.
package views

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var invalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invoicedesk_view_invalidations_total",
	Help: "View cache invalidations, labeled by path",
}, []string{"path"})

type Cache struct {
	mu       sync.RWMutex
	versions map[string]uint64
}

func NewCache() *Cache {
	return &Cache{versions: make(map[string]uint64)}
}

// Invalidate signals that cached views of path are stale.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	c.versions[path]++
	c.mu.Unlock()
	invalidationsTotal.WithLabelValues(path).Inc()
}

// Version returns the current version of path. Paths never invalidated
// report version 0.
func (c *Cache) Version(path string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[path]
}
