package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/logging"
)

const snapshotVersion = 1

// CartKey is the storage key of a session's cart snapshot.
func CartKey(sessionID string) string {
	return "cart:" + sessionID
}

type snapshotDocument struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Items   []cart.LineItem `json:"items"`
}

// SnapshotStore persists one session's cart items. It implements cart.Store.
type SnapshotStore struct {
	backend fiber.Storage
	key     string
	ttl     time.Duration
}

var _ cart.Store = (*SnapshotStore)(nil)

// NewSnapshotStore binds a storage backend to a session's cart key.
func NewSnapshotStore(backend fiber.Storage, sessionID string, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{backend: backend, key: CartKey(sessionID), ttl: ttl}
}

// Save writes the items, or deletes the snapshot when the cart is empty.
func (s *SnapshotStore) Save(items []cart.LineItem) error {
	if len(items) == 0 {
		return s.backend.Delete(s.key)
	}
	data, err := json.Marshal(snapshotDocument{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Items:   items,
	})
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return s.backend.Set(s.key, data, s.ttl)
}

// Load returns the stored items, or none when nothing was saved.
func (s *SnapshotStore) Load() ([]cart.LineItem, error) {
	data, err := s.backend.Get(s.key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported cart snapshot version %d", doc.Version)
	}
	return doc.Items, nil
}

// Purger removes expired entries.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// RunGC purges expired entries every interval until ctx is done.
func RunGC(ctx context.Context, p Purger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Purge(ctx)
			if err != nil {
				logging.Warn("storage purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logging.Debug("storage purged", zap.Int64("entries", n))
			}
		}
	}
}
