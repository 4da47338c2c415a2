package paystub

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"paystub/internal/domain/paycalc"
)

// Store persists assembled records as JSONB documents and keeps the
// per-worker YTD accumulators as text-encoded decimals so no precision is
// lost through the database round trip.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) YTD(ctx context.Context, workerID string) (paycalc.YTDTotals, error) {
	var grossRaw, netRaw string
	err := s.DB.QueryRow(ctx, `
    SELECT gross_ytd, net_ytd
    FROM ytd_totals
    WHERE worker_id = $1
  `, workerID).Scan(&grossRaw, &netRaw)
	if errors.Is(err, pgx.ErrNoRows) {
		return paycalc.YTDTotals{Gross: decimal.Zero, Net: decimal.Zero}, nil
	}
	if err != nil {
		return paycalc.YTDTotals{}, err
	}

	gross, err := decimal.NewFromString(grossRaw)
	if err != nil {
		return paycalc.YTDTotals{}, err
	}
	net, err := decimal.NewFromString(netRaw)
	if err != nil {
		return paycalc.YTDTotals{}, err
	}
	return paycalc.YTDTotals{Gross: gross, Net: net}, nil
}

func (s *Store) SaveStub(ctx context.Context, id string, record paycalc.PayStubRecord) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    INSERT INTO pay_stubs (id, worker_id, period_start, period_end, record)
    VALUES ($1,$2,$3,$4,$5)
  `, id, record.Worker.ID, record.PeriodStart, record.PeriodEnd, doc); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO ytd_totals (worker_id, gross_ytd, net_ytd)
    VALUES ($1,$2,$3)
    ON CONFLICT (worker_id) DO UPDATE
      SET gross_ytd = EXCLUDED.gross_ytd, net_ytd = EXCLUDED.net_ytd, updated_at = now()
  `, record.Worker.ID, record.GrossYTD.String(), record.NetYTD.String()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetStub(ctx context.Context, id string) (paycalc.PayStubRecord, error) {
	var doc []byte
	err := s.DB.QueryRow(ctx, `
    SELECT record
    FROM pay_stubs
    WHERE id = $1
  `, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return paycalc.PayStubRecord{}, ErrStubNotFound
	}
	if err != nil {
		return paycalc.PayStubRecord{}, err
	}

	var record paycalc.PayStubRecord
	if err := json.Unmarshal(doc, &record); err != nil {
		return paycalc.PayStubRecord{}, err
	}
	return record, nil
}

func (s *Store) ListStubs(ctx context.Context, workerID string, limit, offset int) ([]Summary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, worker_id, period_start, period_end,
           record->>'grossPay', record->>'netPay', created_at
    FROM pay_stubs
    WHERE worker_id = $1 OR $1 = ''
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, workerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stubs []Summary
	for rows.Next() {
		var s Summary
		var grossRaw, netRaw string
		if err := rows.Scan(&s.ID, &s.WorkerID, &s.PeriodStart, &s.PeriodEnd, &grossRaw, &netRaw, &s.CreatedAt); err != nil {
			return nil, err
		}
		if s.GrossPay, err = decimal.NewFromString(grossRaw); err != nil {
			return nil, err
		}
		if s.NetPay, err = decimal.NewFromString(netRaw); err != nil {
			return nil, err
		}
		stubs = append(stubs, s)
	}
	return stubs, rows.Err()
}
