package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mochaaless/p4Backend/internal/domain"
	apperrors "github.com/mochaaless/p4Backend/pkg/errors"
)

const keyPrefix = "cart:"

// CartRepository implements repository.CartRepository using Redis. Carts are
// stored as JSON under cart:{userID} with a TTL so abandoned carts expire.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cart by user ID from Redis.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &cart, nil
}

// Save persists a cart to Redis with the configured TTL, unconditionally.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+cart.UserID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// SaveIfVersion persists the cart only if the stored version still equals
// expected. A missing key counts as version 0 (first save). On success the
// cart's version becomes expected+1. Uses WATCH/MULTI so a concurrent writer
// makes the transaction fail instead of clobbering; a lost race returns
// (false, nil).
func (r *CartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expected int64) (bool, error) {
	key := keyPrefix + cart.UserID

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if expected != 0 {
				return apperrors.ErrConflict
			}
		case err != nil:
			return fmt.Errorf("redis get cart: %w", err)
		default:
			var stored domain.Cart
			if err := json.Unmarshal(current, &stored); err != nil {
				return fmt.Errorf("unmarshal stored cart: %w", err)
			}
			if stored.Version != expected {
				return apperrors.ErrConflict
			}
		}

		cart.Version = expected + 1
		data, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	if err := r.client.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) || errors.Is(err, apperrors.ErrConflict) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Delete removes a cart from Redis by user ID.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

// All returns every live cart via an incremental SCAN over the cart keyspace.
func (r *CartRepository) All(ctx context.Context) ([]domain.Cart, error) {
	carts := make([]domain.Cart, 0)

	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			// Key expired between SCAN and GET.
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("redis get cart %s: %w", iter.Val(), err)
		}

		var cart domain.Cart
		if err := json.Unmarshal(data, &cart); err != nil {
			return nil, fmt.Errorf("unmarshal cart %s: %w", iter.Val(), err)
		}
		carts = append(carts, cart)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan carts: %w", err)
	}

	return carts, nil
}
