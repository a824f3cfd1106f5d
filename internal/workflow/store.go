package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// DefaultIdleTTL is how long an untouched session survives.
const DefaultIdleTTL = 30 * time.Minute

// Store keeps the live sessions keyed by id and tears down idle ones.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idleTTL  time.Duration
	newID    func() string
	now      func() time.Time
	logger   *zap.Logger
	sessOpts []SessionOption
	onActive func(int)
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithIdleTTL sets the idle eviction threshold.
func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

// WithSessionIDGenerator overrides session id generation.
func WithSessionIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithStoreClock sets the time source used for eviction and passed to new sessions.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionOptions applies opts to every session the store creates.
func WithSessionOptions(opts ...SessionOption) StoreOption {
	return func(s *Store) {
		s.sessOpts = append(s.sessOpts, opts...)
	}
}

// WithActiveObserver registers a callback receiving the session count after each change.
func WithActiveObserver(fn func(int)) StoreOption {
	return func(s *Store) {
		s.onActive = fn
	}
}

// NewStore returns an empty session store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		idleTTL:  DefaultIdleTTL,
		newID:    func() string { return ulid.Make().String() },
		now:      func() time.Time { return time.Now().UTC() },
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session.
func (s *Store) Create() *Session {
	opts := append([]SessionOption{WithSessionClock(s.now)}, s.sessOpts...)
	sess := NewSession(s.newID(), opts...)

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.notify(n)
	return sess
}

// Get returns the session for id.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the session for id, starting a fresh one when it is unknown or
// evicted. created reports whether a new session was made.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if sess, ok := s.Get(id); ok {
		return sess, false
	}
	return s.Create(), true
}

// Remove tears down and forgets the session.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.Close()
	s.notify(n)
	return true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many were evicted.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	if len(stale) > 0 {
		s.notify(n)
		s.logger.Info("evicted idle sessions", zap.Int("evicted", len(stale)), zap.Int("active", n))
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done, then closes every remaining session.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// CloseAll tears down every session.
func (s *Store) CloseAll() {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Close()
	}
	s.notify(0)
}

func (s *Store) notify(n int) {
	if s.onActive != nil {
		s.onActive(n)
	}
}
