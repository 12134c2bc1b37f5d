package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
	pocketStore "github.com/MrJamesThe3rd/pocketly/internal/pocket/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func table(kind ledger.Kind) (string, error) {
	switch kind {
	case ledger.KindExpense:
		return "expenses", nil
	case ledger.KindIncome:
		return "incomes", nil
	default:
		return "", fmt.Errorf("unknown entry kind %q", kind)
	}
}

const entryColumns = `id, pocket_id, owner_id, amount, description, created_at, updated_at`

func scanEntry(s pocketStore.Scanner, kind ledger.Kind) (*ledger.Entry, error) {
	e := ledger.Entry{Kind: kind}

	if err := s.Scan(&e.ID, &e.PocketID, &e.OwnerID, &e.Amount, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	return &e, nil
}

func (s *Store) GetEntry(ctx context.Context, kind ledger.Kind, ownerID, id uuid.UUID) (*ledger.Entry, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM ` + tbl + ` WHERE id = $1 AND owner_id = $2`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id, ownerID), kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting %s: %w", kind, err)
	}

	return e, nil
}

// ListEntries returns the owner's entries of the requested kinds, newest first.
func (s *Store) ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	kinds := filter.Kinds
	if len(kinds) == 0 {
		kinds = []ledger.Kind{ledger.KindExpense, ledger.KindIncome}
	}

	args := []any{filter.OwnerID}
	where := "owner_id = $1"

	if filter.PocketID != nil {
		where += " AND pocket_id = $2"

		args = append(args, *filter.PocketID)
	}

	selects := make([]string, 0, len(kinds))

	for _, kind := range kinds {
		tbl, err := table(kind)
		if err != nil {
			return nil, err
		}

		selects = append(selects, fmt.Sprintf(`SELECT '%s' AS kind, %s FROM %s WHERE %s`, kind, entryColumns, tbl, where))
	}

	query := strings.Join(selects, " UNION ALL ") + " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		var (
			e    ledger.Entry
			kind string
		)

		if err := rows.Scan(&kind, &e.ID, &e.PocketID, &e.OwnerID, &e.Amount, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		e.Kind = ledger.Kind(kind)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

type tx struct {
	tx *sql.Tx
}

func (s *Store) BeginTx(ctx context.Context) (ledger.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	return &tx{tx: dbTx}, nil
}

func (t *tx) Commit() error   { return t.tx.Commit() }
func (t *tx) Rollback() error { return t.tx.Rollback() }

func (t *tx) LockPocket(ctx context.Context, ownerID, pocketID uuid.UUID) (*pocket.Pocket, error) {
	query := `SELECT ` + pocketStore.Columns + ` FROM pockets WHERE id = $1 AND owner_id = $2 FOR UPDATE`

	p, err := pocketStore.ScanPocket(t.tx.QueryRowContext(ctx, query, pocketID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pocket.ErrNotFound
		}

		return nil, fmt.Errorf("locking pocket: %w", err)
	}

	return p, nil
}

// LockEntry locks the entry's pocket first and only then the entry itself, matching
// the order every other mutation uses. The entry is re-read after the pocket lock is
// held so a concurrent delete is observed as ErrNotFound.
func (t *tx) LockEntry(ctx context.Context, kind ledger.Kind, ownerID, id uuid.UUID) (*ledger.Entry, *pocket.Pocket, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, nil, err
	}

	var pocketID uuid.UUID

	err = t.tx.QueryRowContext(ctx, `SELECT pocket_id FROM `+tbl+` WHERE id = $1 AND owner_id = $2`, id, ownerID).
		Scan(&pocketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ledger.ErrNotFound
		}

		return nil, nil, fmt.Errorf("finding %s: %w", kind, err)
	}

	p, err := t.LockPocket(ctx, ownerID, pocketID)
	if err != nil {
		return nil, nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM ` + tbl + ` WHERE id = $1 AND owner_id = $2 FOR UPDATE`

	e, err := scanEntry(t.tx.QueryRowContext(ctx, query, id, ownerID), kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ledger.ErrNotFound
		}

		return nil, nil, fmt.Errorf("locking %s: %w", kind, err)
	}

	return e, p, nil
}

func (t *tx) InsertEntry(ctx context.Context, e *ledger.Entry) error {
	tbl, err := table(e.Kind)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + tbl + ` (pocket_id, owner_id, amount, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), NOW())
		RETURNING id, created_at, updated_at
	`

	// imported statement lines keep their own date
	createdAt := sql.NullTime{Time: e.CreatedAt, Valid: !e.CreatedAt.IsZero()}

	err = t.tx.QueryRowContext(ctx, query, e.PocketID, e.OwnerID, e.Amount, e.Description, createdAt).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating %s: %w", e.Kind, err)
	}

	return nil
}

func (t *tx) UpdateEntry(ctx context.Context, e *ledger.Entry) error {
	tbl, err := table(e.Kind)
	if err != nil {
		return err
	}

	query := `
		UPDATE ` + tbl + `
		SET amount = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	if err := t.tx.QueryRowContext(ctx, query, e.Amount, e.Description, e.ID).Scan(&e.UpdatedAt); err != nil {
		return fmt.Errorf("updating %s: %w", e.Kind, err)
	}

	return nil
}

func (t *tx) DeleteEntry(ctx context.Context, kind ledger.Kind, id uuid.UUID) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM `+tbl+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting %s: %w", kind, err)
	}

	return nil
}

func (t *tx) SetBalance(ctx context.Context, pocketID uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE pockets SET balance = $1, updated_at = NOW() WHERE id = $2`

	if _, err := t.tx.ExecContext(ctx, query, balance, pocketID); err != nil {
		return fmt.Errorf("updating pocket balance: %w", err)
	}

	return nil
}

func (t *tx) DeletePocketEntries(ctx context.Context, pocketID uuid.UUID) (int64, error) {
	var total int64

	for _, tbl := range []string{"expenses", "incomes"} {
		res, err := t.tx.ExecContext(ctx, `DELETE FROM `+tbl+` WHERE pocket_id = $1`, pocketID)
		if err != nil {
			return 0, fmt.Errorf("deleting pocket %s: %w", tbl, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting deleted %s: %w", tbl, err)
		}

		total += n
	}

	return total, nil
}

func (t *tx) DeletePocket(ctx context.Context, pocketID uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM pockets WHERE id = $1`, pocketID); err != nil {
		return fmt.Errorf("deleting pocket: %w", err)
	}

	return nil
}
