package channel

import "sync"

// Store is the authoritative in-memory state for all channels.
//
// It owns per-channel status and the confirmed subscriber list. Mutation is
// synchronous: a change made by one caller is visible to the next reader
// immediately. Operations that reference an unknown channel id are no-ops,
// never errors — the protocol drops stale references at the boundary.
//
// All public methods are thread-safe. In normal operation the store is only
// mutated from the transmitter's single control-plane executor; the mutex
// additionally covers snapshot reads from other goroutines.
type Store struct {
	mu       sync.RWMutex
	channels map[int]*Channel
}

// NewStore creates a store holding the given channels.
// Runtime state is normalised: every channel starts idle with no
// confirmed subscribers, regardless of what the source carried.
func NewStore(channels []Channel) *Store {
	s := &Store{channels: make(map[int]*Channel, len(channels))}
	for i := range channels {
		c := channels[i].DeepCopy()
		c.Status = StatusIdle
		c.ConfirmedSubscribers = nil
		s.channels[c.NumericID] = c
	}
	return s
}

// SetStatus sets the status of a channel and returns the previous status.
// Unknown ids are a no-op; ok is false and previous is empty.
func (s *Store) SetStatus(id int, status Status) (previous Status, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, found := s.channels[id]
	if !found {
		return "", false
	}
	previous = c.Status
	c.Status = status
	return previous, true
}

// Status returns the current status of a channel.
func (s *Store) Status(id int) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, found := s.channels[id]
	if !found {
		return "", false
	}
	return c.Status, true
}

// AppendConfirmedSubscriber records a receiver confirmation on a channel.
// Idempotent by exact name: a duplicate confirmation leaves the list
// unchanged. Unknown ids are a no-op.
func (s *Store) AppendConfirmedSubscriber(id int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, found := s.channels[id]
	if !found {
		return
	}
	for _, existing := range c.ConfirmedSubscribers {
		if existing == name {
			return
		}
	}
	c.ConfirmedSubscribers = append(c.ConfirmedSubscribers, name)
}

// ClearConfirmedSubscribers empties the confirmation list for a channel.
// Unknown ids are a no-op.
func (s *Store) ClearConfirmedSubscribers(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, found := s.channels[id]; found {
		c.ConfirmedSubscribers = nil
	}
}

// UpdateConfig replaces the presentation fields (label, colours) of a
// channel without touching runtime state. Unknown ids are a no-op.
func (s *Store) UpdateConfig(id int, label, colorName, colorHex, textColorHex string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, found := s.channels[id]
	if !found {
		return
	}
	c.Label = label
	c.ColorName = colorName
	c.ColorHex = colorHex
	c.TextColorHex = textColorHex
}

// Snapshot returns a deep copy of one channel.
// Returns ErrChannelNotFound for unknown ids.
func (s *Store) Snapshot(id int) (*Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, found := s.channels[id]
	if !found {
		return nil, ErrChannelNotFound
	}
	return c.DeepCopy(), nil
}

// SnapshotAll returns deep copies of every channel, ordered by id.
func (s *Store) SnapshotAll() []Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels := make([]Channel, 0, len(s.channels))
	for id := MinID; id <= MaxID; id++ {
		if c, found := s.channels[id]; found {
			channels = append(channels, *c.DeepCopy())
		}
	}
	return channels
}

// IDs returns the ids of all channels in the store, ascending.
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.channels))
	for id := MinID; id <= MaxID; id++ {
		if _, found := s.channels[id]; found {
			ids = append(ids, id)
		}
	}
	return ids
}

// Count returns the number of channels in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}
