package market

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyOpen = "markets:open"

func keyMarket(id string) string { return "markets:" + id }

// Catalog aplica cache-aside no Redis sobre o ReadRepo.
// Falhas do Redis não bloqueiam a leitura do banco.
type Catalog struct {
	Repo *ReadRepo
	R    *redis.Client
	TTL  time.Duration
	Log  *zap.Logger
}

func NewCatalog(repo *ReadRepo, r *redis.Client, ttl time.Duration, log *zap.Logger) *Catalog {
	return &Catalog{Repo: repo, R: r, TTL: ttl, Log: log}
}

func (c *Catalog) ListOpen(ctx context.Context) ([]Market, error) {
	var cached []Market
	if ok := c.get(ctx, keyOpen, &cached); ok {
		return cached, nil
	}
	out, err := c.Repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, keyOpen, out)
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (Market, error) {
	var cached Market
	if ok := c.get(ctx, keyMarket(id), &cached); ok {
		return cached, nil
	}
	m, err := c.Repo.Get(ctx, id)
	if err != nil {
		return Market{}, err
	}
	c.set(ctx, keyMarket(id), m)
	return m, nil
}

// MarkSettled atualiza o banco e invalida as chaves afetadas
func (c *Catalog) MarkSettled(ctx context.Context, id string) error {
	if err := c.Repo.MarkSettled(ctx, id); err != nil {
		return err
	}
	if err := c.R.Del(ctx, keyOpen, keyMarket(id)).Err(); err != nil {
		c.Log.Warn("market cache invalidate failed", zap.String("marketId", id), zap.Error(err))
	}
	return nil
}

func (c *Catalog) get(ctx context.Context, key string, dst any) bool {
	b, err := c.R.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.Log.Warn("market cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (c *Catalog) set(ctx context.Context, key string, v any) {
	b, _ := json.Marshal(v)
	if err := c.R.Set(ctx, key, b, c.TTL).Err(); err != nil {
		c.Log.Warn("market cache set failed", zap.String("key", key), zap.Error(err))
	}
}
