package repository

import (
	"context"
	"sync"
	"testing"
	"time"
	"usdc-storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "0x3a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f9"

func TestClaimIsWriteIfAbsent(t *testing.T) {
	repo := NewTxRecordRepository(newMemoryKV(), 15*time.Minute)

	ok, err := repo.Claim(context.Background(), testHash, "sess-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Claim(context.Background(), testHash, "sess-2")
	require.NoError(t, err)
	assert.False(t, ok)

	rec, err := repo.Get(context.Background(), testHash)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, model.TxStatusPending, rec.Status)
	assert.Equal(t, "sess-1", rec.SessionID)
}

func TestClaimRace(t *testing.T) {
	repo := NewTxRecordRepository(newMemoryKV(), 15*time.Minute)

	var wg sync.WaitGroup
	wins := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Claim(context.Background(), testHash, "sess")
			assert.NoError(t, err)
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won)
}

func TestReleaseReopensClaim(t *testing.T) {
	repo := NewTxRecordRepository(newMemoryKV(), 15*time.Minute)

	ok, err := repo.Claim(context.Background(), testHash, "sess-1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.Release(context.Background(), testHash))

	ok, err = repo.Claim(context.Background(), testHash, "sess-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompleteOverwritesClaim(t *testing.T) {
	repo := NewTxRecordRepository(newMemoryKV(), 15*time.Minute)

	ok, err := repo.Claim(context.Background(), testHash, "sess-1")
	require.NoError(t, err)
	require.True(t, ok)

	err = repo.Complete(context.Background(), testHash, &model.TxRecord{
		OrderID:       "gid://shopify/Order/1",
		OrderName:     "#1001",
		Amount:        "25.00",
		Timestamp:     time.Now().UTC(),
		CustomerEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	rec, err := repo.Get(context.Background(), testHash)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, model.TxStatusCompleted, rec.Status)
	assert.Equal(t, "gid://shopify/Order/1", rec.OrderID)
	assert.Equal(t, "#1001", rec.OrderName)

	// A completed record keeps blocking the hash.
	ok, err = repo.Claim(context.Background(), testHash, "sess-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPendingClaimExpires(t *testing.T) {
	repo := NewTxRecordRepository(newMemoryKV(), 10*time.Millisecond)

	ok, err := repo.Claim(context.Background(), testHash, "sess-1")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)

	// An abandoned pending claim frees up the hash.
	ok, err = repo.Claim(context.Background(), testHash, "sess-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSaveOrderMapping(t *testing.T) {
	kv := newMemoryKV()
	repo := NewTxRecordRepository(kv, 15*time.Minute)

	err := repo.SaveOrderMapping(context.Background(), "gid://shopify/Order/1", &model.OrderTxMapping{
		TransactionHash: testHash,
		Timestamp:       time.Now().UTC(),
	})
	require.NoError(t, err)

	val, err := kv.Get(context.Background(), "order:gid://shopify/Order/1")
	require.NoError(t, err)
	assert.Contains(t, val, testHash)
}

func TestTxRecordStorageFailure(t *testing.T) {
	kv := newMemoryKV()
	kv.down = true
	repo := NewTxRecordRepository(kv, 15*time.Minute)

	_, err := repo.Claim(context.Background(), testHash, "sess-1")
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = repo.Get(context.Background(), testHash)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
