package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"smartsales/internal/domain/cart"
	"smartsales/internal/domain/checkout"
)

// Session owns one shopper's cart and checkout flow for the lifetime of a
// browsing session. All mutations go through Do, which serializes them in
// arrival order; the delta-based totals depend on that FIFO guarantee.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu   sync.Mutex
	cart *cart.Aggregate
	flow *checkout.Flow

	// expiresAt is guarded by the owning Store's mutex, not the session's.
	expiresAt time.Time
}

// Do runs fn with exclusive access to the session's cart and flow.
func (s *Session) Do(fn func(agg *cart.Aggregate, flow *checkout.Flow)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cart, s.flow)
}

// Store is the in-memory session registry. Sessions that go untouched for the
// TTL are evicted by a janitor goroutine; touching a session bumps its TTL.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func NewStore(ttl time.Duration) *Store {
	st := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go st.janitor()
	return st
}

// Stop terminates the janitor goroutine. The store itself stays usable;
// sessions just stop being evicted in the background. Safe to call twice.
func (st *Store) Stop() {
	st.stopOnce.Do(func() { close(st.done) })
}

func (st *Store) Create() *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		cart:      cart.New(),
		flow:      checkout.NewFlow(),
		expiresAt: now.Add(st.ttl),
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

// Get returns the live session and bumps its TTL. Expired sessions read as
// absent even before the janitor collects them.
func (st *Store) Get(id string) (*Session, bool) {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok || now.After(s.expiresAt) {
		return nil, false
	}
	s.expiresAt = now.Add(st.ttl)

	return s, true
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) janitor() {
	ticker := time.NewTicker(st.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-st.done:
			return
		case <-ticker.C:
			now := time.Now()
			st.mu.Lock()
			for id, s := range st.sessions {
				if now.After(s.expiresAt) {
					delete(st.sessions, id)
				}
			}
			st.mu.Unlock()
		}
	}
}
