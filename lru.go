package arxivhunter

import (
	"container/list"
	"sync"
)

// LRU is a fixed-capacity least-recently-used map from identifier to V.
type LRU[V any] struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List
	mu       sync.Mutex
}

type lruEntry[V any] struct {
	key   string
	value V
}

// NewLRU returns an LRU holding at most capacity entries. A capacity of
// zero or less disables caching: Put is a no-op.
func NewLRU[V any](capacity int) *LRU[V] {
	return &LRU[V]{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value for key and marks it most recently used.
func (l *LRU[V]) Get(key string) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.order.MoveToFront(elem)
		return elem.Value.(*lruEntry[V]).value, true
	}
	var zero V
	return zero, false
}

// Put stores value under key, evicting the least recently used entry when
// full.
func (l *LRU[V]) Put(key string, value V) {
	if l.capacity <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		elem.Value.(*lruEntry[V]).value = value
		l.order.MoveToFront(elem)
		return
	}

	if l.order.Len() >= l.capacity {
		if back := l.order.Back(); back != nil {
			delete(l.items, back.Value.(*lruEntry[V]).key)
			l.order.Remove(back)
		}
	}
	l.items[key] = l.order.PushFront(&lruEntry[V]{key: key, value: value})
}

// Delete removes key.
func (l *LRU[V]) Delete(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		delete(l.items, key)
		l.order.Remove(elem)
	}
}

// Len returns the number of entries.
func (l *LRU[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
