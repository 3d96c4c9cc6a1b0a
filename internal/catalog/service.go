package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidItem = errors.New("invalid menu item")
)

type Service interface {
	ListItems(ctx context.Context) ([]MenuItem, error)
	ListAvailable(ctx context.Context) ([]MenuItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	FindByName(ctx context.Context, name string) (*MenuItem, error)
	CreateItem(ctx context.Context, item *MenuItem) (*MenuItem, error)
	UpdateItem(ctx context.Context, item *MenuItem) (*MenuItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListItems(ctx context.Context) ([]MenuItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list menu items")
		return nil, fmt.Errorf("service: failed to list menu items: %w", err)
	}
	return items, nil
}

func (s *service) ListAvailable(ctx context.Context) ([]MenuItem, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return Browsable(items), nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			log.Warn().Stringer("item_id", id).Msg("service: menu item not found")
			return nil, ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", id).Msg("service: failed to get menu item")
		return nil, fmt.Errorf("service: failed to get menu item: %w", err)
	}
	return item, nil
}

func (s *service) FindByName(ctx context.Context, name string) (*MenuItem, error) {
	item, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("service: failed to find menu item by name: %w", err)
	}
	return item, nil
}

func (s *service) CreateItem(ctx context.Context, item *MenuItem) (*MenuItem, error) {
	item.Normalize()
	if err := validateItem(item); err != nil {
		return nil, err
	}
	item.ID = uuid.Nil

	if err := s.repo.Create(ctx, item); err != nil {
		log.Error().Err(err).Str("name", item.Name).Msg("service: failed to create menu item")
		return nil, fmt.Errorf("service: failed to create menu item: %w", err)
	}

	log.Info().Stringer("item_id", item.ID).Str("name", item.Name).Msg("service: menu item created")
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, item *MenuItem) (*MenuItem, error) {
	item.Normalize()
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", item.ID).Msg("service: failed to update menu item")
		return nil, fmt.Errorf("service: failed to update menu item: %w", err)
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", id).Msg("service: failed to delete menu item")
		return fmt.Errorf("service: failed to delete menu item: %w", err)
	}
	log.Info().Stringer("item_id", id).Msg("service: menu item deleted")
	return nil
}

func validateItem(item *MenuItem) error {
	switch {
	case item.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	case item.Category == "":
		return fmt.Errorf("%w: category is required", ErrInvalidItem)
	case item.PriceCents < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidItem)
	}
	return nil
}
