package company

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paystub/internal/domain/paycalc"
)

// Profile is the persisted company identity stamped onto every stub.
type Profile struct {
	Name     string `json:"name"`
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	TaxID    string `json:"taxId,omitempty"`
}

func (p Profile) Snapshot() paycalc.CompanySnapshot {
	return paycalc.CompanySnapshot{
		Name:     p.Name,
		Address1: p.Address1,
		Address2: p.Address2,
		TaxID:    p.TaxID,
	}
}

// Store persists the profile in the settings key-value table, one key per
// field. Missing keys read back as empty strings.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const keyPrefix = "company."

func (s *Store) Load(ctx context.Context) (Profile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT key, value
    FROM settings
    WHERE key LIKE $1
  `, keyPrefix+"%")
	if err != nil {
		return Profile{}, err
	}
	defer rows.Close()

	var profile Profile
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Profile{}, err
		}
		switch strings.TrimPrefix(key, keyPrefix) {
		case "name":
			profile.Name = value
		case "address1":
			profile.Address1 = value
		case "address2":
			profile.Address2 = value
		case "taxId":
			profile.TaxID = value
		}
	}
	return profile, rows.Err()
}

func (s *Store) Save(ctx context.Context, profile Profile) error {
	entries := map[string]string{
		keyPrefix + "name":     profile.Name,
		keyPrefix + "address1": profile.Address1,
		keyPrefix + "address2": profile.Address2,
		keyPrefix + "taxId":    profile.TaxID,
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for key, value := range entries {
		if _, err := tx.Exec(ctx, `
      INSERT INTO settings (key, value)
      VALUES ($1, $2)
      ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
    `, key, value); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
