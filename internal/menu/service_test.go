package menu_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/tableorder/internal/menu"
)

type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) List(ctx context.Context, activeOnly bool) ([]menu.Definition, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.Definition), args.Error(1)
}

func (m *MockMenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*menu.Definition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.Definition), args.Error(1)
}

func (m *MockMenuRepository) GetByName(ctx context.Context, name string) (*menu.Definition, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.Definition), args.Error(1)
}

func (m *MockMenuRepository) Create(ctx context.Context, def *menu.Definition) error {
	return m.Called(ctx, def).Error(0)
}

func (m *MockMenuRepository) Update(ctx context.Context, def *menu.Definition) error {
	return m.Called(ctx, def).Error(0)
}

func (m *MockMenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func classicInput() *menu.Definition {
	return &menu.Definition{
		Name:       "Classic",
		PriceCents: 1690,
		Active:     true,
		Groups: []menu.SelectionGroup{
			{Name: "Starter", CategoryFilter: "Starter", MinChoices: 1, MaxChoices: 1, Position: 2},
			{Name: "Entrée", CategoryFilter: "Entrée", MinChoices: 1, MaxChoices: 1, Position: 0},
		},
	}
}

func TestService_Create_Success(t *testing.T) {
	mockRepo := new(MockMenuRepository)
	svc := menu.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*menu.Definition")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*menu.Definition).ID = uuid.Must(uuid.NewV4())
		}).
		Return(nil).Once()

	def, err := svc.Create(context.Background(), classicInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, def.ID)
	assert.Equal(t, "Entrée", def.Groups[0].Name, "groups are ordered by position")
	assert.Equal(t, []string{"Starter"}, def.Groups[1].CategoryFilters)
	mockRepo.AssertExpectations(t)
}

func TestService_Create_Invalid(t *testing.T) {
	mockRepo := new(MockMenuRepository)
	svc := menu.NewService(mockRepo)

	input := classicInput()
	input.Groups[0].MaxChoices = 0

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, menu.ErrInvalidDefinition)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_DuplicateName(t *testing.T) {
	mockRepo := new(MockMenuRepository)
	svc := menu.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*menu.Definition")).Return(menu.ErrDuplicateMenuName).Once()

	_, err := svc.Create(context.Background(), classicInput())
	require.ErrorIs(t, err, menu.ErrDuplicateMenuName)
	mockRepo.AssertExpectations(t)
}

func TestService_Get(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	tests := []struct {
		name    string
		repoDef *menu.Definition
		repoErr error
		wantErr error
	}{
		{name: "found", repoDef: &menu.Definition{ID: id, Name: "Royal"}},
		{name: "not found", repoErr: menu.ErrMenuNotFound, wantErr: menu.ErrMenuNotFound},
		{name: "db failure", repoErr: errors.New("connection reset"), wantErr: errors.New("any")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockMenuRepository)
			svc := menu.NewService(mockRepo)

			if tt.repoDef != nil {
				mockRepo.On("GetByID", mock.Anything, id).Return(tt.repoDef, nil).Once()
			} else {
				mockRepo.On("GetByID", mock.Anything, id).Return(nil, tt.repoErr).Once()
			}

			def, err := svc.Get(context.Background(), id)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, def)
				if errors.Is(tt.repoErr, menu.ErrMenuNotFound) {
					assert.ErrorIs(t, err, menu.ErrMenuNotFound)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Royal", def.Name)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_ListActive(t *testing.T) {
	mockRepo := new(MockMenuRepository)
	svc := menu.NewService(mockRepo)

	mockRepo.On("List", mock.Anything, true).Return([]menu.Definition{{Name: "Classic"}}, nil).Once()

	defs, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, defs, 1)
	mockRepo.AssertExpectations(t)
}
