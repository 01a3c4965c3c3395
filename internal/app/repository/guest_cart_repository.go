package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var ErrGuestCartNotFound = errors.New("guest cart not found or expired")

const guestCartKeyPrefix = "guest_cart:"

// RedisGuestCartStore keeps anonymous carts as JSON blobs. Every write refreshes the TTL.
type RedisGuestCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuestCartStore(client *redis.Client, ttl time.Duration) *RedisGuestCartStore {
	return &RedisGuestCartStore{client: client, ttl: ttl}
}

func guestCartKey(token string) string {
	return guestCartKeyPrefix + token
}

// Create issues a new token backed by an empty cart
func (s *RedisGuestCartStore) Create(ctx context.Context) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, guestCartKey(token), "[]", s.ttl).Err(); err != nil {
		logger.Error("Failed to create guest cart", err)
		return "", fmt.Errorf("create guest cart: %w", err)
	}
	return token, nil
}

func (s *RedisGuestCartStore) Get(ctx context.Context, token string) ([]model.GuestCartItem, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrGuestCartNotFound
	}

	raw, err := s.client.Get(ctx, guestCartKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrGuestCartNotFound
	}
	if err != nil {
		logger.Error("Failed to read guest cart", err)
		return nil, fmt.Errorf("read guest cart: %w", err)
	}

	var items []model.GuestCartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("Corrupt guest cart payload, treating as expired", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ErrGuestCartNotFound
	}
	return items, nil
}

func (s *RedisGuestCartStore) Save(ctx context.Context, token string, items []model.GuestCartItem) error {
	if items == nil {
		items = []model.GuestCartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	if err := s.client.Set(ctx, guestCartKey(token), raw, s.ttl).Err(); err != nil {
		logger.Error("Failed to save guest cart", err, map[string]interface{}{
			"items": len(items),
		})
		return fmt.Errorf("save guest cart: %w", err)
	}
	return nil
}

func (s *RedisGuestCartStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, guestCartKey(token)).Err(); err != nil {
		return fmt.Errorf("delete guest cart: %w", err)
	}
	return nil
}
