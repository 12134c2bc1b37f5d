package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Columns lists pocket columns in the order ScanPocket expects.
const Columns = `id, owner_id, name, balance, initial_balance, balance_source, created_at, updated_at`

func ScanPocket(s Scanner) (*pocket.Pocket, error) {
	var (
		p      pocket.Pocket
		source string
	)

	if err := s.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Balance, &p.InitialBalance, &source, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.BalanceSource = pocket.BalanceSource(source)

	return &p, nil
}

func (s *Store) CreatePocket(ctx context.Context, p *pocket.Pocket) error {
	query := `
		INSERT INTO pockets (owner_id, name, balance, initial_balance, balance_source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.OwnerID,
		p.Name,
		p.Balance,
		p.InitialBalance,
		p.BalanceSource,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating pocket: %w", err)
	}

	return nil
}

func (s *Store) GetPocket(ctx context.Context, ownerID, id uuid.UUID) (*pocket.Pocket, error) {
	query := `SELECT ` + Columns + ` FROM pockets WHERE id = $1 AND owner_id = $2`

	p, err := ScanPocket(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pocket.ErrNotFound
		}

		return nil, fmt.Errorf("getting pocket: %w", err)
	}

	return p, nil
}

func (s *Store) ListPockets(ctx context.Context, ownerID uuid.UUID) ([]*pocket.Pocket, error) {
	query := `SELECT ` + Columns + ` FROM pockets WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing pockets: %w", err)
	}
	defer rows.Close()

	var pockets []*pocket.Pocket

	for rows.Next() {
		p, err := ScanPocket(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pocket: %w", err)
		}

		pockets = append(pockets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pockets: %w", err)
	}

	return pockets, nil
}

// UpdatePocket takes the same row lock as ledger mutations so an override never
// interleaves with an in-flight expense or income change.
func (s *Store) UpdatePocket(
	ctx context.Context,
	ownerID, id uuid.UUID,
	params pocket.UpdateParams,
) (*pocket.Pocket, *pocket.Pocket, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `SELECT ` + Columns + ` FROM pockets WHERE id = $1 AND owner_id = $2 FOR UPDATE`

	before, err := ScanPocket(dbTx.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, pocket.ErrNotFound
		}

		return nil, nil, fmt.Errorf("locking pocket: %w", err)
	}

	after := *before
	after.Apply(params)

	update := `
		UPDATE pockets
		SET name = $1, balance = $2, balance_source = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	if err := dbTx.QueryRowContext(ctx, update, after.Name, after.Balance, after.BalanceSource, id).
		Scan(&after.UpdatedAt); err != nil {
		return nil, nil, fmt.Errorf("updating pocket: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing transaction: %w", err)
	}

	return before, &after, nil
}
