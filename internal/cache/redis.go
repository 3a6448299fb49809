package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voltkart/storefront/internal/domain"
)

// RedisCache serves both storefront documents, carts and wishlists, under a
// shared key namespace. TTLs are jittered so a burst of carts written
// together does not expire together.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
	jitter  time.Duration
}

func NewRedisCache(client *redis.Client, baseTTL, jitter time.Duration) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
		jitter:  jitter,
	}
}

func cartKey(userID string) string {
	return "storefront:cart:" + userID
}

func wishlistKey(userID string) string {
	return "storefront:wishlist:" + userID
}

func (r RedisCache) ttl() time.Duration {
	if r.jitter <= 0 {
		return r.baseTTL
	}
	return r.baseTTL + time.Duration(rand.Int63n(int64(r.jitter)))
}

func (r RedisCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.getJSON(ctx, cartKey(userID), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r RedisCache) Set(ctx context.Context, userID string, cart *domain.Cart) error {
	return r.setJSON(ctx, cartKey(userID), cart)
}

func (r RedisCache) Delete(ctx context.Context, userID string) error {
	return r.del(ctx, cartKey(userID))
}

func (r RedisCache) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var wl domain.Wishlist
	if err := r.getJSON(ctx, wishlistKey(userID), &wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

func (r RedisCache) SetWishlist(ctx context.Context, userID string, wl *domain.Wishlist) error {
	return r.setJSON(ctx, wishlistKey(userID), wl)
}

func (r RedisCache) DeleteWishlist(ctx context.Context, userID string) error {
	return r.del(ctx, wishlistKey(userID))
}

func (r RedisCache) getJSON(ctx context.Context, key string, v any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r RedisCache) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
