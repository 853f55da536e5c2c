package formflow

import "sync"

// LocationNode is one fetched entry of a level's option list. ParentID is
// empty for site nodes; for every other level it must reference a node of the
// immediately enclosing level.
type LocationNode struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Level    Level  `json:"level"`
}

// CacheState describes a (level, parentID) entry's lifecycle.
type CacheState int

const (
	Unloaded CacheState = iota
	Pending
	Loaded
)

func (s CacheState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

type cacheKey struct {
	level    Level
	parentID string
}

// LocationCache holds fetched option lists keyed by (level, parentID) so rows
// sharing a parent share one entry. Stored slices are replaced, never mutated
// in place; callers may hold a returned slice across Puts safely.
type LocationCache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]LocationNode
	states  map[cacheKey]CacheState
}

func NewLocationCache() *LocationCache {
	return &LocationCache{
		entries: make(map[cacheKey][]LocationNode),
		states:  make(map[cacheKey]CacheState),
	}
}

func (c *LocationCache) Get(level Level, parentID string) ([]LocationNode, CacheState) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := cacheKey{level: level, parentID: parentID}
	state, ok := c.states[key]
	if !ok {
		return nil, Unloaded
	}
	return c.entries[key], state
}

// MarkPending records that a fetch is in flight. A Loaded entry stays Loaded;
// its previous list keeps serving until the replacement arrives.
func (c *LocationCache) MarkPending(level Level, parentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{level: level, parentID: parentID}
	if c.states[key] != Loaded {
		c.states[key] = Pending
	}
}

func (c *LocationCache) Put(level Level, parentID string, nodes []LocationNode) {
	replacement := make([]LocationNode, len(nodes))
	copy(replacement, nodes)

	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{level: level, parentID: parentID}
	c.entries[key] = replacement
	c.states[key] = Loaded
}

func (c *LocationCache) Invalidate(level Level, parentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{level: level, parentID: parentID}
	delete(c.entries, key)
	delete(c.states, key)
}
