package planstatus

import (
	"container/list"
	"time"

	"github.com/invoiceaz/planguard/pkg/entitlement"
)

// entry is the cached state of one key. floor is the sequence number of the
// last invalidation: fetches started at or before it are discarded.
type entry struct {
	snap        *entitlement.Snapshot
	fetchedAt   time.Time
	invalidated bool

	err      error
	failedAt time.Time

	floor       uint64
	loading     bool
	loadingFrom uint64
	flight      string
}

type storeItem struct {
	key   Key
	entry *entry
}

// store is an LRU of entries. It is not safe for concurrent use; the
// provider guards it with its own mutex.
type store struct {
	capacity int
	items    map[Key]*list.Element
	order    *list.List
}

func newStore(capacity int) *store {
	if capacity <= 0 {
		panic("planstatus: store capacity must be positive")
	}
	return &store{
		capacity: capacity,
		items:    make(map[Key]*list.Element),
		order:    list.New(),
	}
}

// get returns the entry for key and marks it as recently used.
func (s *store) get(key Key) (*entry, bool) {
	elem, ok := s.items[key]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*storeItem).entry, true
}

// ensure returns the entry for key, creating an empty one when missing.
// Creating may evict the least recently used key.
func (s *store) ensure(key Key) *entry {
	if e, ok := s.get(key); ok {
		return e
	}
	e := &entry{}
	s.items[key] = s.order.PushFront(&storeItem{key: key, entry: e})
	if s.order.Len() > s.capacity {
		if oldest := s.order.Back(); oldest != nil {
			s.order.Remove(oldest)
			delete(s.items, oldest.Value.(*storeItem).key)
		}
	}
	return e
}

func (s *store) len() int {
	return s.order.Len()
}

func (s *store) clear() {
	s.items = make(map[Key]*list.Element)
	s.order.Init()
}
