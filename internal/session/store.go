package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"dreamtown/internal/domain"
)

type Options struct {
	TTL time.Duration
	Now func() time.Time
}

type entry struct {
	data     []byte
	touched  time.Time
	inFlight bool
}

// MemoryStore keeps encoded wizard states in process memory. Sessions idle
// longer than the TTL are evicted lazily and by Sweep; an entry with a
// generation in flight is never evicted.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	codec   Codec
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(opts Options) *MemoryStore {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     now,
	}
}

// Create starts a fresh session on the start screen.
func (s *MemoryStore) Create() (*State, error) {
	state := &State{
		ID:        uuid.NewString(),
		Screen:    ScreenStart,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.put(state, true); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *MemoryStore) Get(id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.liveLocked(id)
	if err != nil {
		return nil, err
	}
	e.touched = s.now()
	return s.codec.Decode(e.data)
}

// Save replaces the stored state. The session must still exist.
func (s *MemoryStore) Save(state *State) error {
	return s.put(state, false)
}

func (s *MemoryStore) put(state *State, create bool) error {
	if state == nil || state.ID == "" {
		return fmt.Errorf("session: state without id")
	}
	state.UpdatedAt = s.now().UTC()
	data, err := s.codec.Encode(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if create {
		s.entries[state.ID] = &entry{data: data, touched: s.now()}
		return nil
	}
	e, err := s.liveLocked(state.ID)
	if err != nil {
		return err
	}
	e.data = data
	e.touched = s.now()
	return nil
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Acquire marks a generation in flight for the session. A second call
// before release fails with domain.ErrGenerationInFlight.
func (s *MemoryStore) Acquire(id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.liveLocked(id)
	if err != nil {
		return nil, err
	}
	if e.inFlight {
		return nil, domain.ErrGenerationInFlight
	}
	e.inFlight = true
	e.touched = s.now()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.entries[id]; ok && cur == e {
				cur.inFlight = false
				cur.touched = s.now()
			}
		})
	}, nil
}

// Sweep evicts idle sessions and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if s.expiredLocked(e) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on the given interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) liveLocked(id string) (*entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.expiredLocked(e) {
		delete(s.entries, id)
		return nil, domain.ErrSessionNotFound
	}
	return e, nil
}

func (s *MemoryStore) expiredLocked(e *entry) bool {
	return !e.inFlight && s.now().Sub(e.touched) > s.ttl
}
