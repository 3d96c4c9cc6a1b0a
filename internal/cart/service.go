package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrMissingTableID = errors.New("table id is required")
	ErrInvalidLine    = errors.New("invalid cart line")
)

// Service exposes the shared table-cart operations. Each call is one atomic
// Store.Update; nothing locks across calls.
type Service interface {
	Get(ctx context.Context, tableID string) (TableCart, error)
	AddItem(ctx context.Context, tableID string, in AddItemInput) (TableCart, error)
	ChangeQty(ctx context.Context, tableID string, in ChangeQtyInput) (TableCart, error)
	RemoveLine(ctx context.Context, tableID, key string) (TableCart, error)
	SetPartySize(ctx context.Context, tableID string, n float64) (TableCart, error)
	SetComment(ctx context.Context, tableID, text string) (TableCart, error)
	Clear(ctx context.Context, tableID string) (TableCart, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

func normalizeTableID(tableID string) (string, error) {
	tableID = strings.TrimSpace(tableID)
	if tableID == "" {
		return "", ErrMissingTableID
	}
	return tableID, nil
}

func (s *service) Get(ctx context.Context, tableID string) (TableCart, error) {
	tableID, err := normalizeTableID(tableID)
	if err != nil {
		return TableCart{}, err
	}
	c, err := s.store.Get(ctx, tableID)
	if err != nil {
		log.Error().Err(err).Str("table_id", tableID).Msg("service: failed to load cart")
		return TableCart{}, fmt.Errorf("service: failed to load cart: %w", err)
	}
	return c, nil
}

func (s *service) update(ctx context.Context, tableID, op string, fn func(c *TableCart) error) (TableCart, error) {
	tableID, err := normalizeTableID(tableID)
	if err != nil {
		return TableCart{}, err
	}
	c, err := s.store.Update(ctx, tableID, fn)
	if err != nil {
		log.Error().Err(err).Str("table_id", tableID).Str("op", op).Msg("service: failed to update cart")
		return TableCart{}, fmt.Errorf("service: failed to %s: %w", op, err)
	}
	return c, nil
}

func (s *service) AddItem(ctx context.Context, tableID string, in AddItemInput) (TableCart, error) {
	in.ProductKey = strings.TrimSpace(in.ProductKey)
	in.Name = strings.TrimSpace(in.Name)
	if in.ProductKey == "" || in.Name == "" {
		return TableCart{}, fmt.Errorf("%w: product key and name are required", ErrInvalidLine)
	}
	if in.UnitPriceCents < 0 {
		return TableCart{}, fmt.Errorf("%w: price cannot be negative", ErrInvalidLine)
	}

	return s.update(ctx, tableID, "add item", func(c *TableCart) error {
		c.addItem(in)
		return nil
	})
}

// ChangeQty is a no-op when no line matches.
func (s *service) ChangeQty(ctx context.Context, tableID string, in ChangeQtyInput) (TableCart, error) {
	key := in.Key()
	return s.update(ctx, tableID, "change quantity", func(c *TableCart) error {
		c.changeQty(key, in.Delta)
		return nil
	})
}

func (s *service) RemoveLine(ctx context.Context, tableID, key string) (TableCart, error) {
	key = strings.TrimSpace(key)
	return s.update(ctx, tableID, "remove line", func(c *TableCart) error {
		c.removeLine(key)
		return nil
	})
}

func (s *service) SetPartySize(ctx context.Context, tableID string, n float64) (TableCart, error) {
	size := ClampPartySize(n)
	return s.update(ctx, tableID, "set party size", func(c *TableCart) error {
		c.setPartySize(size)
		return nil
	})
}

func (s *service) SetComment(ctx context.Context, tableID, text string) (TableCart, error) {
	return s.update(ctx, tableID, "set comment", func(c *TableCart) error {
		c.setComment(text)
		return nil
	})
}

func (s *service) Clear(ctx context.Context, tableID string) (TableCart, error) {
	return s.update(ctx, tableID, "clear cart", func(c *TableCart) error {
		c.clear()
		return nil
	})
}
