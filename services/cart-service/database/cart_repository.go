package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yashrajoria/shopswift/services/cart-service/models"
)

// ErrConflict is returned when concurrent writers kept invalidating the update.
var ErrConflict = errors.New("cart modified concurrently")

const maxUpdateAttempts = 3

// MutateFunc edits cart in place. exists reports whether a stored cart was found.
type MutateFunc func(cart *models.Cart, exists bool) error

type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CartRepository) getKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

// GetCart returns the stored cart or nil when none exists.
func (r *CartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.getKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(data, userID)
}

// UpdateCart runs a WATCH/MULTI read-modify-write of the cart blob, retrying
// when another writer changed the key in between. The total is recomputed and
// the TTL refreshed on every successful write.
func (r *CartRepository) UpdateCart(ctx context.Context, userID string, fn MutateFunc) (*models.Cart, error) {
	key := r.getKey(userID)
	var result *models.Cart

	txf := func(tx *redis.Tx) error {
		cart := models.NewCart(userID)
		exists := false

		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if cart, err = decode(data, userID); err != nil {
				return err
			}
			exists = true
		}

		if err := fn(cart, exists); err != nil {
			return err
		}
		cart.Recalculate()
		cart.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(cart)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err == nil {
			result = cart
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}
	return nil, ErrConflict
}

func (r *CartRepository) DeleteCart(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.getKey(userID)).Err()
}

func decode(data []byte, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	cart.UserID = userID
	return &cart, nil
}
