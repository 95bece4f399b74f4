package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"usdc-storefront/internal/client"
	"usdc-storefront/internal/model"
)

const (
	txKeyPrefix    = "tx:"
	orderKeyPrefix = "order:"
)

// TxRecordRepository guards the one-transaction-one-order invariant.
// Claim is a write-if-absent (SETNX) on the transaction key, so of two
// racing finalize calls for the same hash exactly one wins the claim and
// the other sees a duplicate before any order is created.
type TxRecordRepository interface {
	// Claim writes a PENDING record under the hash if and only if no record
	// exists. Returns false when the hash has already been claimed or
	// completed. The pending claim carries a TTL so a crashed finalize
	// cannot block the hash forever.
	Claim(ctx context.Context, txHash, sessionID string) (bool, error)
	// Release drops a pending claim. Only safe before any order exists for
	// the hash.
	Release(ctx context.Context, txHash string) error
	// Complete overwrites the pending claim with the final record, with no
	// expiry. Existence of a COMPLETED record is permanent.
	Complete(ctx context.Context, txHash string, rec *model.TxRecord) error
	Get(ctx context.Context, txHash string) (*model.TxRecord, error)
	// SaveOrderMapping writes the reverse order-id → transaction lookup.
	SaveOrderMapping(ctx context.Context, orderID string, mapping *model.OrderTxMapping) error
}

type txRecordRepoImpl struct {
	kv       client.KVStore
	claimTTL time.Duration
}

func NewTxRecordRepository(kv client.KVStore, claimTTL time.Duration) TxRecordRepository {
	return &txRecordRepoImpl{
		kv:       kv,
		claimTTL: claimTTL,
	}
}

func (r *txRecordRepoImpl) Claim(ctx context.Context, txHash, sessionID string) (bool, error) {
	rec := model.TxRecord{
		Status:    model.TxStatusPending,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(&rec)
	if err != nil {
		return false, fmt.Errorf("marshal tx claim: %w", err)
	}

	ok, err := r.kv.SetNX(ctx, txKeyPrefix+txHash, string(payload), r.claimTTL)
	if err != nil {
		return false, fmt.Errorf("%w: claim transaction: %v", ErrStorageUnavailable, err)
	}
	return ok, nil
}

func (r *txRecordRepoImpl) Release(ctx context.Context, txHash string) error {
	if err := r.kv.Del(ctx, txKeyPrefix+txHash); err != nil {
		return fmt.Errorf("%w: release transaction claim: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (r *txRecordRepoImpl) Complete(ctx context.Context, txHash string, rec *model.TxRecord) error {
	rec.Status = model.TxStatusCompleted
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal tx record: %w", err)
	}

	if err := r.kv.Set(ctx, txKeyPrefix+txHash, string(payload), 0); err != nil {
		return fmt.Errorf("%w: complete tx record: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (r *txRecordRepoImpl) Get(ctx context.Context, txHash string) (*model.TxRecord, error) {
	val, err := r.kv.Get(ctx, txKeyPrefix+txHash)
	if errors.Is(err, client.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get tx record: %v", ErrStorageUnavailable, err)
	}

	var rec model.TxRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal tx record: %w", err)
	}
	return &rec, nil
}

func (r *txRecordRepoImpl) SaveOrderMapping(ctx context.Context, orderID string, mapping *model.OrderTxMapping) error {
	payload, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal order mapping: %w", err)
	}

	if err := r.kv.Set(ctx, orderKeyPrefix+orderID, string(payload), 0); err != nil {
		return fmt.Errorf("%w: save order mapping: %v", ErrStorageUnavailable, err)
	}
	return nil
}
