package services

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/storage"
)

// CartService owns one ledger per cart session and serializes every call
// made against it.
type CartService struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*cartSession
	storage  fiber.Storage
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

type cartSession struct {
	mu       sync.Mutex
	ledger   *cart.Ledger
	restored bool
	pending  []cart.Notification
	lastSeen time.Time
}

// NewCartService keeps ledger snapshots in backend for ttl after the last change.
func NewCartService(backend fiber.Storage, ttl time.Duration, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		sessions: make(map[uuid.UUID]*cartSession),
		storage:  backend,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Do runs fn against the session's ledger and returns the notifications the
// ledger emitted while fn ran.
func (s *CartService) Do(sessionID uuid.UUID, fn func(*cart.Ledger) error) ([]cart.Notification, error) {
	sess := s.session(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.restored {
		sess.ledger.Restore()
		sess.restored = true
	}

	sess.pending = nil
	err := fn(sess.ledger)
	events := sess.pending
	sess.pending = nil
	return events, err
}

// View returns the current state of a session's cart.
func (s *CartService) View(sessionID uuid.UUID) cart.Snapshot {
	var snap cart.Snapshot
	_, _ = s.Do(sessionID, func(l *cart.Ledger) error {
		snap = l.Snapshot()
		return nil
	})
	return snap
}

// Discard clears a session's cart and forgets its ledger.
func (s *CartService) Discard(sessionID uuid.UUID) {
	_, _ = s.Do(sessionID, func(l *cart.Ledger) error {
		l.Clear()
		return nil
	})

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Evict forgets ledgers idle for longer than idle. Their snapshots stay in
// storage; only the editing pointer is lost.
func (s *CartService) Evict(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// RunEviction calls Evict every interval until ctx is done.
func (s *CartService) RunEviction(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(idle); n > 0 {
				s.logger.Debug("evicted idle carts", zap.Int("sessions", n))
			}
		}
	}
}

// Active is the number of ledgers held in memory.
func (s *CartService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *CartService) session(id uuid.UUID) *cartSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &cartSession{}
		sess.ledger = cart.NewLedger(
			cart.WithStore(storage.NewSnapshotStore(s.storage, id.String(), s.ttl)),
			cart.WithNotifier(cart.NotifierFunc(func(n cart.Notification) {
				sess.pending = append(sess.pending, n)
			})),
			cart.WithLogger(s.logger.With(zap.String("session", id.String()))),
		)
		s.sessions[id] = sess
	}
	sess.lastSeen = s.now()
	return sess
}
