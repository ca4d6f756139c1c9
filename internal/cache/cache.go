package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clipzone/clipzone/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Cache provides read-through caching for dashboard summaries using Redis.
// Summaries tolerate slightly stale reads, so entries carry a short TTL
// and moderation never waits on invalidation.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks cache health
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func clipperSummaryKey(clipperID string) string {
	return fmt.Sprintf("summary:clipper:%s", clipperID)
}

func creatorSummaryKey(creatorID string) string {
	return fmt.Sprintf("summary:creator:%s", creatorID)
}

func topClippersKey(creatorID string, limit int) string {
	return fmt.Sprintf("topclippers:%s:%d", creatorID, limit)
}

// SetClipperSummary caches a clipper dashboard summary
func (c *Cache) SetClipperSummary(ctx context.Context, clipperID string, summary *models.ClipperSummary) error {
	return c.setJSON(ctx, clipperSummaryKey(clipperID), summary)
}

// GetClipperSummary retrieves a cached clipper summary; nil on miss
func (c *Cache) GetClipperSummary(ctx context.Context, clipperID string) (*models.ClipperSummary, error) {
	var summary models.ClipperSummary
	ok, err := c.getJSON(ctx, clipperSummaryKey(clipperID), &summary)
	if err != nil || !ok {
		return nil, err
	}
	return &summary, nil
}

// SetCreatorSummary caches a creator dashboard summary
func (c *Cache) SetCreatorSummary(ctx context.Context, creatorID string, summary *models.CreatorSummary) error {
	return c.setJSON(ctx, creatorSummaryKey(creatorID), summary)
}

// GetCreatorSummary retrieves a cached creator summary; nil on miss
func (c *Cache) GetCreatorSummary(ctx context.Context, creatorID string) (*models.CreatorSummary, error) {
	var summary models.CreatorSummary
	ok, err := c.getJSON(ctx, creatorSummaryKey(creatorID), &summary)
	if err != nil || !ok {
		return nil, err
	}
	return &summary, nil
}

// SetTopClippers caches a creator's leaderboard
func (c *Cache) SetTopClippers(ctx context.Context, creatorID string, limit int, rows []*models.TopClipper) error {
	return c.setJSON(ctx, topClippersKey(creatorID, limit), rows)
}

// GetTopClippers retrieves a cached leaderboard; nil on miss
func (c *Cache) GetTopClippers(ctx context.Context, creatorID string, limit int) ([]*models.TopClipper, error) {
	var rows []*models.TopClipper
	ok, err := c.getJSON(ctx, topClippersKey(creatorID, limit), &rows)
	if err != nil || !ok {
		return nil, err
	}
	return rows, nil
}

// InvalidateAccount drops every cached summary derived from an account's
// clips. Best effort; expiry covers anything missed.
func (c *Cache) InvalidateAccount(ctx context.Context, accountID string) error {
	keys := []string{clipperSummaryKey(accountID), creatorSummaryKey(accountID)}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summaries: %w", err)
	}
	return c.deletePattern(ctx, fmt.Sprintf("topclippers:%s:*", accountID))
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // Cache miss
		}
		return false, fmt.Errorf("failed to get value from cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return true, nil
}

func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}
