package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// ReserveState reports what Reserve found for a key.
type ReserveState int

const (
	// ReserveAcquired means the key is new and the caller owns the work.
	ReserveAcquired ReserveState = iota
	// ReserveReplay means a stored response exists for the same payload.
	ReserveReplay
	// ReserveInFlight means another request holds the key and has not
	// completed yet.
	ReserveInFlight
)

// IdempotencyStore lets a finalize request be replayed safely: the same
// Idempotency-Key with the same payload returns the stored response instead
// of producing a second stub and a double YTD roll. The key row is inserted
// before any work runs, so two concurrent requests with the same key cannot
// both finalize; the loser of the insert race sees the reservation and backs
// off.
type IdempotencyStore struct {
	db *pgxpool.Pool
}

func NewIdempotencyStore(db *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Reserve claims the key for this request, or reports why it cannot: a
// replayable stored response, a still-running holder, or a payload mismatch
// (ErrIdempotencyConflict).
func (s *IdempotencyStore) Reserve(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, ReserveState, error) {
	if s == nil || s.db == nil {
		return nil, ReserveAcquired, nil
	}
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (user_id, key, endpoint, request_hash)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (user_id, key, endpoint) DO NOTHING
  `, userID, key, endpoint, requestHash)
	if err != nil {
		return nil, ReserveAcquired, err
	}
	if tag.RowsAffected() > 0 {
		return nil, ReserveAcquired, nil
	}

	var storedHash string
	var stored []byte
	err = s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
  `, userID, key, endpoint).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		// The conflicting row vanished between insert and read; the holder
		// released it. Treat it as still in flight and let the client retry.
		return nil, ReserveInFlight, nil
	}
	if err != nil {
		return nil, ReserveAcquired, err
	}
	if storedHash != requestHash {
		return nil, ReserveAcquired, ErrIdempotencyConflict
	}
	if stored == nil {
		return nil, ReserveInFlight, nil
	}
	return json.RawMessage(stored), ReserveReplay, nil
}

// Complete stores the response on the reservation so later retries replay it.
func (s *IdempotencyStore) Complete(ctx context.Context, userID, endpoint, key string, response json.RawMessage) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(ctx, `
    UPDATE idempotency_keys
    SET response_json = $4
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
  `, userID, key, endpoint, response)
	return err
}

// Release frees a reservation whose work failed so the client can retry with
// the same key. Completed reservations are never released.
func (s *IdempotencyStore) Release(ctx context.Context, userID, endpoint, key string) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(ctx, `
    DELETE FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3 AND response_json IS NULL
  `, userID, key, endpoint)
	return err
}
