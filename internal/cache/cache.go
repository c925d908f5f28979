// Package cache provides a Badger-backed cache for computed recommendation
// data. Entries expire on their own but library writes invalidate eagerly so
// stale suggestions never outlive a shelf change.
package cache

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tinykiri/readiculous/internal/domain"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// DefaultTTL bounds how long cached recommendations survive without a
// library write forcing a refresh.
const DefaultTTL = time.Hour

const (
	profileKeyPrefix         = "prefs:"
	recommendationsKeyPrefix = "recs:"
)

// Cache wraps a Badger database holding per-user recommendation state.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
	ttl    time.Duration
}

// Open opens (or creates) the cache database at path.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	if logger != nil {
		logger.Info("Recommendation cache opened", "path", path)
	}

	return &Cache{db: db, logger: logger, ttl: DefaultTTL}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetProfile returns the cached preference profile for a user.
func (c *Cache) GetProfile(userID string) (*domain.PreferenceProfile, error) {
	var p domain.PreferenceProfile
	if err := c.get(profileKeyPrefix+userID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetProfile caches a preference profile with the configured TTL.
func (c *Cache) SetProfile(userID string, p *domain.PreferenceProfile) error {
	return c.set(profileKeyPrefix+userID, p)
}

// GetRecommendations returns the cached recommendation list for a user.
func (c *Cache) GetRecommendations(userID string) ([]domain.RecommendationCandidate, error) {
	var recs []domain.RecommendationCandidate
	if err := c.get(recommendationsKeyPrefix+userID, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// SetRecommendations caches a recommendation list with the configured TTL.
func (c *Cache) SetRecommendations(userID string, recs []domain.RecommendationCandidate) error {
	return c.set(recommendationsKeyPrefix+userID, recs)
}

// Invalidate drops all cached recommendation state for a user. Called on
// every library write so recommendations reflect the current shelf.
func (c *Cache) Invalidate(userID string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{profileKeyPrefix + userID, recommendationsKeyPrefix + userID} {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate user %s: %w", userID, err)
	}
	return nil
}

func (c *Cache) get(key string, dest any) error {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return nil
}

func (c *Cache) set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
