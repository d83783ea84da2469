package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"movienight/proj/internal/domain/models"

	"github.com/redis/go-redis/v9"
)

const trendingKey = "movies:trending"

// TrendingCache keeps the trending list in Redis so repeated home page loads skip the
// popularity sort. Catalog writes must call InvalidateTrending.
type TrendingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func NewTrendingCache(client *redis.Client, ttl time.Duration) *TrendingCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TrendingCache{client: client, ttl: ttl}
}

// GetTrending reports ok=false on a cache miss.
func (c *TrendingCache) GetTrending(ctx context.Context) ([]models.Movie, bool, error) {
	raw, err := c.client.Get(ctx, trendingKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var movies []models.Movie
	if err := json.Unmarshal(raw, &movies); err != nil {
		return nil, false, err
	}
	return movies, true, nil
}

func (c *TrendingCache) SetTrending(ctx context.Context, movies []models.Movie) error {
	raw, err := json.Marshal(movies)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, trendingKey, raw, c.ttl).Err()
}

func (c *TrendingCache) InvalidateTrending(ctx context.Context) error {
	return c.client.Del(ctx, trendingKey).Err()
}
