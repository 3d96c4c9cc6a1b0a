package compose

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/tableorder/internal/cart"
	"github.com/vasiliy-maslov/tableorder/internal/catalog"
	"github.com/vasiliy-maslov/tableorder/internal/menu"
)

var ErrMenuInactive = errors.New("menu is not active")

type MenuReader interface {
	Get(ctx context.Context, id uuid.UUID) (*menu.Definition, error)
}

type ItemLister interface {
	ListItems(ctx context.Context) ([]catalog.MenuItem, error)
}

type CartAdder interface {
	AddItem(ctx context.Context, tableID string, in cart.AddItemInput) (cart.TableCart, error)
}

// Service runs compose sessions server-side: it opens the initial snapshot of
// a menu and re-validates a client selection before adding it to a cart.
type Service interface {
	Open(ctx context.Context, menuID uuid.UUID) (*View, error)
	AddToCart(ctx context.Context, tableID string, req AddToCartRequest) (cart.TableCart, error)
}

type AddToCartRequest struct {
	MenuID     uuid.UUID
	Selections map[uuid.UUID][]uuid.UUID
	AssigneeID string
}

type service struct {
	engine *Engine
	menus  MenuReader
	items  ItemLister
	carts  CartAdder
}

func NewService(engine *Engine, menus MenuReader, items ItemLister, carts CartAdder) Service {
	return &service{engine: engine, menus: menus, items: items, carts: carts}
}

func (s *service) session(ctx context.Context, menuID uuid.UUID) (*Session, error) {
	def, err := s.menus.Get(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if !def.Active {
		return nil, ErrMenuInactive
	}
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load catalog: %w", err)
	}
	sess, err := s.engine.NewSession(def, items)
	if err != nil {
		log.Warn().Err(err).Stringer("menu_id", menuID).Msg("service: menu cannot be composed")
		return nil, err
	}
	return sess, nil
}

func (s *service) Open(ctx context.Context, menuID uuid.UUID) (*View, error) {
	sess, err := s.session(ctx, menuID)
	if err != nil {
		return nil, err
	}
	view := sess.View()
	return &view, nil
}

func (s *service) AddToCart(ctx context.Context, tableID string, req AddToCartRequest) (cart.TableCart, error) {
	sess, err := s.session(ctx, req.MenuID)
	if err != nil {
		return cart.TableCart{}, err
	}
	if err := sess.Restore(req.Selections); err != nil {
		return cart.TableCart{}, err
	}

	line, err := sess.Finalize(req.AssigneeID)
	if err != nil {
		return cart.TableCart{}, err
	}

	c, err := s.carts.AddItem(ctx, tableID, line)
	if err != nil {
		return cart.TableCart{}, err
	}
	log.Info().Str("table_id", tableID).Stringer("menu_id", req.MenuID).Str("line", line.Name).Msg("service: composed menu added to cart")
	return c, nil
}
