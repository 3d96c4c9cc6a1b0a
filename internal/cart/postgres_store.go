package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PostgresStore keeps one table_carts row per table. Each Update locks that
// row for the duration of its read-modify-write.
type PostgresStore struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Get(ctx context.Context, tableID string) (TableCart, error) {
	c, err := scanCart(s.db.QueryRow(ctx, selectCart, tableID))
	if errors.Is(err, pgx.ErrNoRows) {
		return newCart(tableID, s.now().UTC()), nil
	}
	if err != nil {
		return TableCart{}, fmt.Errorf("store: failed to load cart for table %s: %w", tableID, err)
	}
	return c, nil
}

func (s *PostgresStore) Update(ctx context.Context, tableID string, fn func(c *TableCart) error) (result TableCart, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return TableCart{}, fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Str("table_id", tableID).Msg("Failed to rollback cart transaction")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("store: failed to commit cart transaction: %w", commitErr)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO table_carts (table_id, lines, party_size, table_comment, updated_at)
		VALUES ($1, '[]'::jsonb, $2, NULL, $3)
		ON CONFLICT (table_id) DO NOTHING`,
		tableID, MinPartySize, s.now().UTC())
	if err != nil {
		return TableCart{}, fmt.Errorf("store: failed to create cart for table %s: %w", tableID, err)
	}

	current, err := scanCart(tx.QueryRow(ctx, selectCart+` FOR UPDATE`, tableID))
	if err != nil {
		return TableCart{}, fmt.Errorf("store: failed to lock cart for table %s: %w", tableID, err)
	}

	if err = fn(&current); err != nil {
		return TableCart{}, err
	}
	current.UpdatedAt = s.now().UTC()

	lines, err := json.Marshal(current.Lines)
	if err != nil {
		return TableCart{}, fmt.Errorf("store: failed to encode cart lines: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE table_carts
		SET lines = $2, party_size = $3, table_comment = $4, updated_at = $5
		WHERE table_id = $1`,
		tableID, lines, current.PartySize, current.TableComment, current.UpdatedAt)
	if err != nil {
		return TableCart{}, fmt.Errorf("store: failed to save cart for table %s: %w", tableID, err)
	}

	return current, nil
}

const selectCart = `SELECT table_id, lines, party_size, table_comment, updated_at FROM table_carts WHERE table_id = $1`

func scanCart(row pgx.Row) (TableCart, error) {
	var (
		c   TableCart
		raw []byte
	)
	if err := row.Scan(&c.TableID, &raw, &c.PartySize, &c.TableComment, &c.UpdatedAt); err != nil {
		return TableCart{}, err
	}
	c.Lines = []Line{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Lines); err != nil {
			return TableCart{}, fmt.Errorf("decode cart lines: %w", err)
		}
	}
	return c, nil
}
