package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is an in-memory LRU cache with per-entry TTL. The homepage
// result cache uses it with a zero default TTL, making entries live for the
// session unless explicitly cleared.
type MemoryCache struct {
	maxSize    int
	defaultTTL time.Duration
	items      map[string]*list.Element
	lru        *list.List
	mu         sync.Mutex
}

type memoryItem struct {
	key       string
	value     interface{}
	expiresAt time.Time // zero means no expiry
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
// defaultTTL applies when Set receives a zero TTL; zero means no expiry.
func NewMemoryCache(maxSize int, defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		items:      make(map[string]*list.Element),
		lru:        list.New(),
	}
}

// Get retrieves a live entry and marks it recently used.
func (m *MemoryCache) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	element, exists := m.items[key]
	if !exists {
		return nil, false
	}

	item := element.Value.(*memoryItem)
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		m.removeElement(element)
		return nil, false
	}

	m.lru.MoveToFront(element)
	return item.value, true
}

// Set stores value under key, evicting the least recently used entries when
// the cache is full.
func (m *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl == 0 {
		ttl = m.defaultTTL
	}

	item := &memoryItem{key: key, value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}

	if element, exists := m.items[key]; exists {
		element.Value = item
		m.lru.MoveToFront(element)
		return
	}

	m.items[key] = m.lru.PushFront(item)
	for m.maxSize > 0 && len(m.items) > m.maxSize {
		if oldest := m.lru.Back(); oldest != nil {
			m.removeElement(oldest)
		}
	}
}

// Delete removes one entry.
func (m *MemoryCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if element, exists := m.items[key]; exists {
		m.removeElement(element)
	}
}

// Clear removes every entry.
func (m *MemoryCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*list.Element)
	m.lru.Init()
}

// Size returns the number of stored entries.
func (m *MemoryCache) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryCache) removeElement(element *list.Element) {
	item := element.Value.(*memoryItem)
	delete(m.items, item.key)
	m.lru.Remove(element)
}
