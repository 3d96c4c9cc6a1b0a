package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("menu item not found")

type Repository interface {
	List(ctx context.Context) ([]MenuItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	FindByName(ctx context.Context, name string) (*MenuItem, error)
	Create(ctx context.Context, item *MenuItem) error
	Update(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const itemColumns = `id, name, price_cents, category, available, position, description, created_at, updated_at`

func scanItem(row pgx.Row) (*MenuItem, error) {
	var it MenuItem
	err := row.Scan(
		&it.ID,
		&it.Name,
		&it.PriceCents,
		&it.Category,
		&it.Available,
		&it.Position,
		&it.Description,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]MenuItem, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items ORDER BY position ASC, category ASC, name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]MenuItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating menu items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE id = $1`

	it, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select menu item %s: %w", id, err)
	}
	return it, nil
}

// FindByName returns the first item carrying exactly that name.
func (r *postgresRepository) FindByName(ctx context.Context, name string) (*MenuItem, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE name = $1 ORDER BY position ASC, created_at ASC LIMIT 1`

	it, err := scanItem(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select menu item by name %q: %w", name, err)
	}
	return it, nil
}

func (r *postgresRepository) Create(ctx context.Context, item *MenuItem) error {
	if item.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate menu item ID: %w", err)
		}
		item.ID = id
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `
		INSERT INTO menu_items (id, name, price_cents, category, available, position, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		item.ID,
		item.Name,
		item.PriceCents,
		item.Category,
		item.Available,
		item.Position,
		item.Description,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert menu item: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, item *MenuItem) error {
	item.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE menu_items
		SET name = $1, price_cents = $2, category = $3, available = $4, position = $5, description = $6, updated_at = $7
		WHERE id = $8
	`
	cmdTag, err := r.db.Exec(ctx, query,
		item.Name,
		item.PriceCents,
		item.Category,
		item.Available,
		item.Position,
		item.Description,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update menu item %s: %w", item.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete menu item %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
