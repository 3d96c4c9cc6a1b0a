package compose_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/tableorder/internal/cart"
	"github.com/vasiliy-maslov/tableorder/internal/catalog"
	"github.com/vasiliy-maslov/tableorder/internal/compose"
	"github.com/vasiliy-maslov/tableorder/internal/menu"
)

type mockMenus struct{ mock.Mock }

func (m *mockMenus) Get(ctx context.Context, id uuid.UUID) (*menu.Definition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.Definition), args.Error(1)
}

type mockItems struct{ mock.Mock }

func (m *mockItems) ListItems(ctx context.Context) ([]catalog.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.MenuItem), args.Error(1)
}

func TestService_Open(t *testing.T) {
	f := newFixture()
	def := classicMenu()
	menus, items := new(mockMenus), new(mockItems)
	menus.On("Get", mock.Anything, def.ID).Return(def, nil).Once()
	items.On("ListItems", mock.Anything).Return(f.items, nil).Once()

	svc := compose.NewService(compose.NewDefaultEngine(), menus, items, cart.NewService(cart.NewMemoryStore()))

	view, err := svc.Open(context.Background(), def.ID)
	require.NoError(t, err)
	assert.Equal(t, "Classic", view.MenuName)
	assert.Len(t, view.Steps, 3)
	assert.False(t, view.Valid)
	assert.Len(t, view.Errors, 2, "starter is preselected")
	menus.AssertExpectations(t)
	items.AssertExpectations(t)
}

func TestService_OpenInactiveMenu(t *testing.T) {
	def := classicMenu()
	def.Active = false
	menus := new(mockMenus)
	menus.On("Get", mock.Anything, def.ID).Return(def, nil).Once()

	svc := compose.NewService(compose.NewDefaultEngine(), menus, new(mockItems), cart.NewService(cart.NewMemoryStore()))

	_, err := svc.Open(context.Background(), def.ID)
	assert.ErrorIs(t, err, compose.ErrMenuInactive)
}

func TestService_AddToCart(t *testing.T) {
	f := newFixture()
	def := classicMenu()
	def.Prepare()
	menus, items := new(mockMenus), new(mockItems)
	menus.On("Get", mock.Anything, def.ID).Return(def, nil)
	items.On("ListItems", mock.Anything).Return(f.items, nil)
	carts := cart.NewService(cart.NewMemoryStore())

	svc := compose.NewService(compose.NewDefaultEngine(), menus, items, carts)

	incomplete := compose.AddToCartRequest{
		MenuID:     def.ID,
		Selections: map[uuid.UUID][]uuid.UUID{def.Groups[0].ID: {f.gyoza.ID}},
		AssigneeID: "P1",
	}
	_, err := svc.AddToCart(context.Background(), "7", incomplete)
	var selErr *compose.SelectionError
	require.ErrorAs(t, err, &selErr)
	assert.Len(t, selErr.Errors, 2)

	complete := compose.AddToCartRequest{
		MenuID: def.ID,
		Selections: map[uuid.UUID][]uuid.UUID{
			def.Groups[0].ID: {f.gyoza.ID},
			def.Groups[1].ID: {f.yakiPoul.ID},
			def.Groups[2].ID: {f.ramen.ID},
		},
		AssigneeID: "P1",
	}
	_, err = svc.AddToCart(context.Background(), "7", complete)
	require.NoError(t, err)
	c, err := svc.AddToCart(context.Background(), "7", complete)
	require.NoError(t, err)

	require.Len(t, c.Lines, 1, "identical compositions merge")
	assert.Equal(t, 2, c.Lines[0].Qty)
	assert.Equal(t, int64(1690), c.Lines[0].UnitPriceCents)
	assert.Equal(t, int64(3380), c.TotalCents())
}
