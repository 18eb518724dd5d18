package region

import (
	"sort"
	"sync"
)

// Manager is the in-memory authority holding the live regions of one world.
type Manager interface {
	// AddRegion adds or replaces the region with the same id.
	AddRegion(r *Region)
	// RemoveRegion removes the region with the given id, if present.
	RemoveRegion(id string)
	// GetRegion returns the region with the given id.
	GetRegion(id string) (*Region, bool)
}

// Registry resolves a world name to its region manager.
type Registry interface {
	// Manager returns the manager of the named world, or false when the world
	// is not known.
	Manager(world string) (Manager, bool)
}

// MemoryManager is a Manager backed by a map.
type MemoryManager struct {
	mu      sync.RWMutex
	regions map[string]*Region
}

// NewMemoryManager creates an empty manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{regions: make(map[string]*Region)}
}

func (m *MemoryManager) AddRegion(r *Region) {
	m.mu.Lock()
	m.regions[r.ID] = r
	m.mu.Unlock()
}

func (m *MemoryManager) RemoveRegion(id string) {
	m.mu.Lock()
	delete(m.regions, id)
	m.mu.Unlock()
}

func (m *MemoryManager) GetRegion(id string) (*Region, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.regions[id]
	return r, ok
}

// Replace swaps the whole region set, e.g. after a bulk load.
func (m *MemoryManager) Replace(regions []*Region) {
	next := make(map[string]*Region, len(regions))
	for _, r := range regions {
		next[r.ID] = r
	}
	m.mu.Lock()
	m.regions = next
	m.mu.Unlock()
}

// Regions returns all regions sorted by id.
func (m *MemoryManager) Regions() []*Region {
	m.mu.RLock()
	out := make([]*Region, 0, len(m.regions))
	for _, r := range m.regions {
		out = append(out, r)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MemoryRegistry is a Registry over a fixed set of worlds.
type MemoryRegistry struct {
	managers map[string]*MemoryManager
	worlds   []string
}

// NewMemoryRegistry creates a registry with one empty manager per world.
func NewMemoryRegistry(worlds ...string) *MemoryRegistry {
	reg := &MemoryRegistry{managers: make(map[string]*MemoryManager, len(worlds))}
	for _, w := range worlds {
		if _, ok := reg.managers[w]; ok || w == "" {
			continue
		}
		reg.managers[w] = NewMemoryManager()
		reg.worlds = append(reg.worlds, w)
	}
	return reg
}

func (r *MemoryRegistry) Manager(world string) (Manager, bool) {
	m, ok := r.managers[world]
	if !ok {
		return nil, false
	}
	return m, true
}

// World returns the concrete manager of a world.
func (r *MemoryRegistry) World(world string) (*MemoryManager, bool) {
	m, ok := r.managers[world]
	return m, ok
}

// Worlds returns the configured world names in registration order.
func (r *MemoryRegistry) Worlds() []string {
	return append([]string(nil), r.worlds...)
}
