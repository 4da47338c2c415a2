package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paystub/internal/platform/config"
	"paystub/internal/platform/db"
)

func idempotencyPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, config.Config{DatabaseURL: dbURL})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool, "../../../../migrations"))
	return pool
}

func TestIdempotencyReserveBlocksConcurrentDuplicate(t *testing.T) {
	store := NewIdempotencyStore(idempotencyPool(t))
	ctx := context.Background()
	key := fmt.Sprintf("key-%d", time.Now().UnixNano())
	hash := RequestHash([]byte(`{"rate":20}`))

	_, state, err := store.Reserve(ctx, "u-1", "paystubs.finalize", key, hash)
	require.NoError(t, err)
	require.Equal(t, ReserveAcquired, state)

	// A duplicate arriving before the response is stored must not acquire.
	_, state, err = store.Reserve(ctx, "u-1", "paystubs.finalize", key, hash)
	require.NoError(t, err)
	assert.Equal(t, ReserveInFlight, state)

	response := json.RawMessage(`{"success":true}`)
	require.NoError(t, store.Complete(ctx, "u-1", "paystubs.finalize", key, response))

	stored, state, err := store.Reserve(ctx, "u-1", "paystubs.finalize", key, hash)
	require.NoError(t, err)
	assert.Equal(t, ReserveReplay, state)
	assert.JSONEq(t, string(response), string(stored))
}

func TestIdempotencyReserveRejectsDifferentPayload(t *testing.T) {
	store := NewIdempotencyStore(idempotencyPool(t))
	ctx := context.Background()
	key := fmt.Sprintf("key-%d", time.Now().UnixNano())

	_, state, err := store.Reserve(ctx, "u-1", "paystubs.finalize", key, RequestHash([]byte(`{"rate":20}`)))
	require.NoError(t, err)
	require.Equal(t, ReserveAcquired, state)

	_, _, err = store.Reserve(ctx, "u-1", "paystubs.finalize", key, RequestHash([]byte(`{"rate":25}`)))
	assert.ErrorIs(t, err, ErrIdempotencyConflict)
}

func TestIdempotencyReleaseFreesFailedReservation(t *testing.T) {
	store := NewIdempotencyStore(idempotencyPool(t))
	ctx := context.Background()
	key := fmt.Sprintf("key-%d", time.Now().UnixNano())
	hash := RequestHash([]byte(`{"rate":20}`))

	_, state, err := store.Reserve(ctx, "u-1", "paystubs.finalize", key, hash)
	require.NoError(t, err)
	require.Equal(t, ReserveAcquired, state)

	require.NoError(t, store.Release(ctx, "u-1", "paystubs.finalize", key))

	// The retry after a failure owns the key again.
	_, state, err = store.Reserve(ctx, "u-1", "paystubs.finalize", key, hash)
	require.NoError(t, err)
	assert.Equal(t, ReserveAcquired, state)

	// A completed reservation survives Release.
	require.NoError(t, store.Complete(ctx, "u-1", "paystubs.finalize", key, json.RawMessage(`{"success":true}`)))
	require.NoError(t, store.Release(ctx, "u-1", "paystubs.finalize", key))
	_, state, err = store.Reserve(ctx, "u-1", "paystubs.finalize", key, hash)
	require.NoError(t, err)
	assert.Equal(t, ReserveReplay, state)
}
