package cache

// lruNode is one key in recency order.
type lruNode[K comparable] struct {
	key        K
	prev, next *lruNode[K]
}

// lruList orders keys from most (front) to least (back) recently used.
// It is a circular list around a sentinel root, so no operation needs a
// nil check on its neighbours.
type lruList[K comparable] struct {
	root lruNode[K]
	len  int
}

func newLRUList[K comparable]() *lruList[K] {
	l := &lruList[K]{}
	l.root.prev, l.root.next = &l.root, &l.root
	return l
}

// PushFront inserts key as most recently used.
func (l *lruList[K]) PushFront(key K) *lruNode[K] {
	n := &lruNode[K]{key: key}
	l.insertFront(n)
	l.len++
	return n
}

// MoveToFront marks n most recently used.
func (l *lruList[K]) MoveToFront(n *lruNode[K]) {
	if l.root.next == n {
		return
	}
	l.unlink(n)
	l.insertFront(n)
}

// Remove unlinks n.
func (l *lruList[K]) Remove(n *lruNode[K]) {
	l.unlink(n)
	l.len--
}

// RemoveOldest unlinks and returns the least recently used key.
func (l *lruList[K]) RemoveOldest() (K, bool) {
	if l.len == 0 {
		var zero K
		return zero, false
	}
	n := l.root.prev
	l.Remove(n)
	return n.key, true
}

// Len returns the number of keys.
func (l *lruList[K]) Len() int { return l.len }

// Clear drops every key.
func (l *lruList[K]) Clear() {
	l.root.prev, l.root.next = &l.root, &l.root
	l.len = 0
}

func (l *lruList[K]) insertFront(n *lruNode[K]) {
	n.prev = &l.root
	n.next = l.root.next
	l.root.next.prev = n
	l.root.next = n
}

func (l *lruList[K]) unlink(n *lruNode[K]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}
