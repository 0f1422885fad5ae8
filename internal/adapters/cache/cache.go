// Package cache holds previously computed game scores. Backends store opaque
// bytes; ScoreCache adds the key scheme and JSON encoding on top.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/pkg/metrics"
)

// Sentinel kinds for cache errors.
var (
	ErrCorruptEntry = errors.New("corrupt cache entry")
)

const keyPrefix = "netstats:score:"

// Backend is a byte store with expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GameKey is the cache key of a single game's score.
func GameKey(gameID string) string {
	return keyPrefix + "game:" + gameID
}

// BatchKey is the cache key of a batch of scores. It is order-independent
// and ignores duplicate ids.
func BatchKey(gameIDs []string) string {
	ids := append([]string(nil), gameIDs...)
	sort.Strings(ids)
	out := ids[:0]
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		out = append(out, id)
	}
	return keyPrefix + "batch:" + strings.Join(out, ",")
}

// ScoreCache reads and writes GameScores through a Backend.
type ScoreCache struct {
	backend Backend
}

// NewScoreCache wraps a backend.
func NewScoreCache(b Backend) *ScoreCache {
	return &ScoreCache{backend: b}
}

// Get returns the cached score of a game. A cached score keeps its original
// data but is tagged with the cache source.
func (c *ScoreCache) Get(ctx context.Context, gameID string) (*model.GameScore, error) {
	var s model.GameScore
	ok, err := c.get(ctx, GameKey(gameID), &s)
	if err != nil || !ok {
		return nil, err
	}
	s.Source = model.SourceCache
	return &s, nil
}

// Set stores the score of a game.
func (c *ScoreCache) Set(ctx context.Context, s model.GameScore) error {
	return c.set(ctx, GameKey(s.GameID), s)
}

// GetBatch returns the cached scores for exactly this set of games.
func (c *ScoreCache) GetBatch(ctx context.Context, gameIDs []string) ([]model.GameScore, bool, error) {
	var scores []model.GameScore
	ok, err := c.get(ctx, BatchKey(gameIDs), &scores)
	if err != nil || !ok {
		return nil, false, err
	}
	for i := range scores {
		scores[i].Source = model.SourceCache
	}
	return scores, true, nil
}

// SetBatch stores scores under the composite key of gameIDs.
func (c *ScoreCache) SetBatch(ctx context.Context, gameIDs []string, scores []model.GameScore) error {
	return c.set(ctx, BatchKey(gameIDs), scores)
}

// Invalidate drops a game's cached score.
func (c *ScoreCache) Invalidate(ctx context.Context, gameID string) error {
	return c.backend.Delete(ctx, GameKey(gameID))
}

// Close releases the backend.
func (c *ScoreCache) Close() error {
	return c.backend.Close()
}

func (c *ScoreCache) get(ctx context.Context, key string, into any) (bool, error) {
	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheError()
		return false, err
	}
	if !ok {
		metrics.RecordCacheMiss()
		return false, nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		metrics.RecordCacheError()
		return false, fmt.Errorf("%w: %s: %w", ErrCorruptEntry, key, err)
	}
	metrics.RecordCacheHit()
	return true, nil
}

func (c *ScoreCache) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := c.backend.Set(ctx, key, raw); err != nil {
		metrics.RecordCacheError()
		return err
	}
	return nil
}
