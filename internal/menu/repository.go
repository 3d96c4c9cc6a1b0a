package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Definition, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Definition, error)
	GetByName(ctx context.Context, name string) (*Definition, error)
	Create(ctx context.Context, def *Definition) error
	Update(ctx context.Context, def *Definition) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const menuColumns = `id, name, price_cents, active, position, created_at, updated_at`

func (r *PostgresRepository) List(ctx context.Context, activeOnly bool) ([]Definition, error) {
	query := `SELECT ` + menuColumns + ` FROM menus`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY position ASC, name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menus: %w", err)
	}
	defs, err := pgx.CollectRows(rows, scanDefinition)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to scan menus: %w", err)
	}

	if len(defs) == 0 {
		return defs, nil
	}

	ids := make([]uuid.UUID, len(defs))
	index := make(map[uuid.UUID]int, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
		index[d.ID] = i
	}

	groups, err := r.groupsFor(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for menuID, gs := range groups {
		defs[index[menuID]].Groups = gs
	}
	for i := range defs {
		defs[i].Prepare()
	}
	return defs, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Definition, error) {
	return r.getOne(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Definition, error) {
	return r.getOne(ctx, `SELECT `+menuColumns+` FROM menus WHERE name = $1`, name)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*Definition, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu: %w", err)
	}
	def, err := pgx.CollectExactlyOneRow(rows, scanDefinition)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("repository: failed to scan menu: %w", err)
	}

	groups, err := r.groupsFor(ctx, r.db, []uuid.UUID{def.ID})
	if err != nil {
		return nil, err
	}
	def.Groups = groups[def.ID]
	def.Prepare()
	return &def, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PostgresRepository) groupsFor(ctx context.Context, q querier, menuIDs []uuid.UUID) (map[uuid.UUID][]SelectionGroup, error) {
	query := `
		SELECT id, menu_id, name, category_filter, min_choices, max_choices, position
		FROM menu_groups
		WHERE menu_id = ANY($1)
		ORDER BY position ASC
	`
	rows, err := q.Query(ctx, query, menuIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu groups: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]SelectionGroup, len(menuIDs))
	for rows.Next() {
		var (
			g      SelectionGroup
			menuID uuid.UUID
		)
		if err := rows.Scan(&g.ID, &menuID, &g.Name, &g.CategoryFilter, &g.MinChoices, &g.MaxChoices, &g.Position); err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu group: %w", err)
		}
		out[menuID] = append(out[menuID], g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating menu groups: %w", err)
	}
	return out, nil
}

func scanDefinition(row pgx.CollectableRow) (Definition, error) {
	var d Definition
	err := row.Scan(&d.ID, &d.Name, &d.PriceCents, &d.Active, &d.Position, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// Create stores the definition and its groups in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, def *Definition) (err error) {
	if def.ID == uuid.Nil {
		if def.ID, err = uuid.NewV4(); err != nil {
			return fmt.Errorf("repository: failed to generate menu ID: %w", err)
		}
	}
	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now

	return r.inTx(ctx, def.ID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO menus (id, name, price_cents, active, position, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			def.ID, def.Name, def.PriceCents, def.Active, def.Position, def.CreatedAt, def.UpdatedAt)
		if err != nil {
			return mapWriteError("insert menu", err)
		}
		return insertGroups(ctx, tx, def)
	})
}

// Update rewrites the definition and replaces its groups.
func (r *PostgresRepository) Update(ctx context.Context, def *Definition) error {
	def.UpdatedAt = time.Now().UTC()

	return r.inTx(ctx, def.ID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE menus SET name = $1, price_cents = $2, active = $3, position = $4, updated_at = $5
			WHERE id = $6`,
			def.Name, def.PriceCents, def.Active, def.Position, def.UpdatedAt, def.ID)
		if err != nil {
			return mapWriteError("update menu", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrMenuNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM menu_groups WHERE menu_id = $1`, def.ID); err != nil {
			return fmt.Errorf("repository: failed to delete menu groups: %w", err)
		}
		return insertGroups(ctx, tx, def)
	})
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete menu %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMenuNotFound
	}
	return nil
}

func insertGroups(ctx context.Context, tx pgx.Tx, def *Definition) error {
	batch := &pgx.Batch{}
	for i := range def.Groups {
		g := &def.Groups[i]
		if g.ID == uuid.Nil {
			id, err := uuid.NewV4()
			if err != nil {
				return fmt.Errorf("repository: failed to generate group ID: %w", err)
			}
			g.ID = id
		}
		batch.Queue(`
			INSERT INTO menu_groups (id, menu_id, name, category_filter, min_choices, max_choices, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			g.ID, def.ID, g.Name, g.CategoryFilter, g.MinChoices, g.MaxChoices, g.Position)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("repository: failed to insert menu groups: %w", err)
	}
	return nil
}

func (r *PostgresRepository) inTx(ctx context.Context, menuID uuid.UUID, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("menu_id", menuID).Msg("Failed to rollback menu transaction")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			log.Error().Err(commitErr).Stringer("menu_id", menuID).Msg("Failed to commit menu transaction")
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(tx)
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicateMenuName
	}
	return fmt.Errorf("repository: failed to %s: %w", op, err)
}
