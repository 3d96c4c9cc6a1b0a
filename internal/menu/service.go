package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	ListActive(ctx context.Context) ([]Definition, error)
	ListAll(ctx context.Context) ([]Definition, error)
	Get(ctx context.Context, id uuid.UUID) (*Definition, error)
	Create(ctx context.Context, def *Definition) (*Definition, error)
	Update(ctx context.Context, def *Definition) (*Definition, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListActive(ctx context.Context) ([]Definition, error) {
	defs, err := s.repo.List(ctx, true)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list active menus")
		return nil, fmt.Errorf("service: failed to list active menus: %w", err)
	}
	return defs, nil
}

func (s *service) ListAll(ctx context.Context) ([]Definition, error) {
	defs, err := s.repo.List(ctx, false)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list menus")
		return nil, fmt.Errorf("service: failed to list menus: %w", err)
	}
	return defs, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Definition, error) {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			log.Warn().Stringer("menu_id", id).Msg("service: menu not found")
			return nil, ErrMenuNotFound
		}
		log.Error().Err(err).Stringer("menu_id", id).Msg("service: failed to get menu")
		return nil, fmt.Errorf("service: failed to get menu: %w", err)
	}
	return def, nil
}

func (s *service) Create(ctx context.Context, def *Definition) (*Definition, error) {
	def.Prepare()
	if err := def.Validate(); err != nil {
		log.Warn().Err(err).Str("name", def.Name).Msg("service: rejected menu definition")
		return nil, err
	}
	def.ID = uuid.Nil
	for i := range def.Groups {
		def.Groups[i].ID = uuid.Nil
	}

	if err := s.repo.Create(ctx, def); err != nil {
		if errors.Is(err, ErrDuplicateMenuName) {
			return nil, ErrDuplicateMenuName
		}
		log.Error().Err(err).Str("name", def.Name).Msg("service: failed to create menu")
		return nil, fmt.Errorf("service: failed to create menu: %w", err)
	}

	log.Info().Stringer("menu_id", def.ID).Str("name", def.Name).Int("groups", len(def.Groups)).Msg("service: menu created")
	return def, nil
}

func (s *service) Update(ctx context.Context, def *Definition) (*Definition, error) {
	def.Prepare()
	if err := def.Validate(); err != nil {
		log.Warn().Err(err).Stringer("menu_id", def.ID).Msg("service: rejected menu definition")
		return nil, err
	}
	for i := range def.Groups {
		def.Groups[i].ID = uuid.Nil
	}

	if err := s.repo.Update(ctx, def); err != nil {
		switch {
		case errors.Is(err, ErrMenuNotFound):
			return nil, ErrMenuNotFound
		case errors.Is(err, ErrDuplicateMenuName):
			return nil, ErrDuplicateMenuName
		}
		log.Error().Err(err).Stringer("menu_id", def.ID).Msg("service: failed to update menu")
		return nil, fmt.Errorf("service: failed to update menu: %w", err)
	}
	return def, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			return ErrMenuNotFound
		}
		log.Error().Err(err).Stringer("menu_id", id).Msg("service: failed to delete menu")
		return fmt.Errorf("service: failed to delete menu: %w", err)
	}
	log.Info().Stringer("menu_id", id).Msg("service: menu deleted")
	return nil
}
