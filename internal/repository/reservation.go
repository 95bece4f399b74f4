package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"usdc-storefront/internal/client"
	"usdc-storefront/internal/model"

	"github.com/google/uuid"
)

const reservationKeyPrefix = "order_session:"

// ReservationRepository stores single-use purchase intents. Expiry is
// enforced by the store's TTL, so an expired reservation is simply absent.
type ReservationRepository interface {
	// Create assigns a fresh session id, stamps the expiry window, and
	// writes the reservation with a TTL matching that window.
	Create(ctx context.Context, res *model.Reservation) (string, error)
	// Get returns nil without error when the session is absent or expired;
	// callers cannot tell the two apart.
	Get(ctx context.Context, sessionID string) (*model.Reservation, error)
	Delete(ctx context.Context, sessionID string) error
}

type reservationRepoImpl struct {
	kv  client.KVStore
	ttl time.Duration
}

func NewReservationRepository(kv client.KVStore, ttl time.Duration) ReservationRepository {
	return &reservationRepoImpl{
		kv:  kv,
		ttl: ttl,
	}
}

func (r *reservationRepoImpl) Create(ctx context.Context, res *model.Reservation) (string, error) {
	sessionID := uuid.NewString()
	now := time.Now().UTC()

	res.SessionID = sessionID
	res.CreatedAt = now
	res.ExpiresAt = now.Add(r.ttl)

	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("marshal reservation: %w", err)
	}

	if err := r.kv.Set(ctx, reservationKeyPrefix+sessionID, string(payload), r.ttl); err != nil {
		return "", fmt.Errorf("%w: set reservation: %v", ErrStorageUnavailable, err)
	}

	return sessionID, nil
}

func (r *reservationRepoImpl) Get(ctx context.Context, sessionID string) (*model.Reservation, error) {
	val, err := r.kv.Get(ctx, reservationKeyPrefix+sessionID)
	if errors.Is(err, client.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get reservation: %v", ErrStorageUnavailable, err)
	}

	var res model.Reservation
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		return nil, fmt.Errorf("unmarshal reservation: %w", err)
	}
	return &res, nil
}

func (r *reservationRepoImpl) Delete(ctx context.Context, sessionID string) error {
	if err := r.kv.Del(ctx, reservationKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("%w: delete reservation: %v", ErrStorageUnavailable, err)
	}
	return nil
}
