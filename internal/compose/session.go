package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/tableorder/internal/cart"
	"github.com/vasiliy-maslov/tableorder/internal/catalog"
	"github.com/vasiliy-maslov/tableorder/internal/menu"
)

var (
	ErrNoGroups          = errors.New("menu has no selection groups")
	ErrNoOptions         = errors.New("no catalog item matches a required step")
	ErrUnknownGroup      = errors.New("unknown selection group")
	ErrUnknownOption     = errors.New("option is not offered by this step")
	ErrMaxChoicesReached = errors.New("maximum number of choices reached")
)

// SelectionError carries the per-group messages of an incomplete selection.
type SelectionError struct {
	Errors map[uuid.UUID]string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("menu selection is incomplete: %d step(s) need attention", len(e.Errors))
}

// Policy switches optional engine behaviors.
type Policy struct {
	// PreselectSingleOption selects the only option of a non-XOR step that
	// requires at least one choice.
	PreselectSingleOption bool
}

var DefaultPolicy = Policy{PreselectSingleOption: true}

// Step is a selection group resolved against the live catalog.
type Step struct {
	Group           menu.SelectionGroup `json:"group"`
	Options         []catalog.MenuItem  `json:"options"`
	IncludeCategory bool                `json:"includeCategory"`
	MinChoices      int                 `json:"minChoices"`
	MaxChoices      int                 `json:"maxChoices"`
	Multi           bool                `json:"multi"`
	XORTag          string              `json:"xorTag,omitempty"`
	DisplayCategory string              `json:"displayCategory"`
}

// OptionLabel is the name shown for an option, suffixed with its category
// when the step mixes categories.
func (s Step) OptionLabel(item catalog.MenuItem) string {
	if s.IncludeCategory {
		return item.Name + " — " + item.Category
	}
	return item.Name
}

func (s Step) option(id uuid.UUID) (catalog.MenuItem, bool) {
	for _, opt := range s.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return catalog.MenuItem{}, false
}

// Engine builds compose sessions from menu definitions.
type Engine struct {
	resolver *Resolver
	rules    []OptionRule
	policy   Policy
}

func NewEngine(resolver *Resolver, rules []OptionRule, policy Policy) *Engine {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return &Engine{resolver: resolver, rules: rules, policy: policy}
}

// NewDefaultEngine uses the restaurant's alias table and kids-menu rules.
func NewDefaultEngine() *Engine {
	return NewEngine(NewResolver(DefaultAliases), DefaultRules, DefaultPolicy)
}

// Session is one customer composing one menu.
type Session struct {
	Menu       *menu.Definition
	Steps      []Step
	Selections map[uuid.UUID][]uuid.UUID
}

// NewSession resolves every group of def against items, in position order.
func (e *Engine) NewSession(def *menu.Definition, items []catalog.MenuItem) (*Session, error) {
	if def == nil || len(def.Groups) == 0 {
		return nil, ErrNoGroups
	}
	def.Prepare()

	steps := make([]Step, 0, len(def.Groups))
	for _, g := range def.Groups {
		options := e.resolver.Options(items, g.CategoryFilters)
		for _, rule := range e.rules {
			options = rule(def, g, options)
		}

		categories := make(map[string]struct{})
		for _, opt := range options {
			categories[opt.Category] = struct{}{}
		}

		step := Step{
			Group:           g,
			Options:         options,
			IncludeCategory: len(categories) > 1,
			MinChoices:      g.MinChoices,
			MaxChoices:      g.MaxChoices,
			Multi:           g.MaxChoices > 1,
			XORTag:          g.MutualExclusionTag,
			DisplayCategory: strings.Join(g.CategoryFilters, " | "),
		}
		if step.XORTag == "" && step.MinChoices > 0 && len(options) == 0 {
			return nil, fmt.Errorf("%w: %q (%s)", ErrNoOptions, g.Name, step.DisplayCategory)
		}
		steps = append(steps, step)
	}

	s := &Session{
		Menu:       def,
		Steps:      steps,
		Selections: make(map[uuid.UUID][]uuid.UUID, len(steps)),
	}
	for _, step := range steps {
		s.Selections[step.Group.ID] = []uuid.UUID{}
		if e.policy.PreselectSingleOption && step.XORTag == "" && len(step.Options) == 1 && step.MinChoices >= 1 {
			s.Selections[step.Group.ID] = []uuid.UUID{step.Options[0].ID}
		}
	}
	return s, nil
}

func (s *Session) step(groupID uuid.UUID) (*Step, error) {
	for i := range s.Steps {
		if s.Steps[i].Group.ID == groupID {
			return &s.Steps[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, groupID)
}

func (s *Session) checkOptions(step *Step, ids []uuid.UUID) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := step.option(id); !ok {
			return nil, fmt.Errorf("%w: %s in %q", ErrUnknownOption, id, step.Group.Name)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// SetSelection replaces the selection of a group. A non-empty selection on an
// XOR step clears every sibling step sharing its tag.
func (s *Session) SetSelection(groupID uuid.UUID, ids []uuid.UUID) error {
	step, err := s.step(groupID)
	if err != nil {
		return err
	}
	values, err := s.checkOptions(step, ids)
	if err != nil {
		return err
	}

	s.Selections[groupID] = values
	if step.XORTag != "" && len(values) > 0 {
		for _, other := range s.Steps {
			if other.Group.ID != groupID && other.XORTag == step.XORTag {
				s.Selections[other.Group.ID] = []uuid.UUID{}
			}
		}
	}
	return nil
}

// Select is the single-select interaction; uuid.Nil clears the group.
func (s *Session) Select(groupID, itemID uuid.UUID) error {
	if itemID == uuid.Nil {
		return s.SetSelection(groupID, nil)
	}
	return s.SetSelection(groupID, []uuid.UUID{itemID})
}

// Toggle adds or removes one option of a multi-select step. Additions past
// the step maximum are rejected.
func (s *Session) Toggle(groupID, itemID uuid.UUID) error {
	step, err := s.step(groupID)
	if err != nil {
		return err
	}
	if _, ok := step.option(itemID); !ok {
		return fmt.Errorf("%w: %s in %q", ErrUnknownOption, itemID, step.Group.Name)
	}

	current := s.Selections[groupID]
	next := make([]uuid.UUID, 0, len(current)+1)
	removed := false
	for _, id := range current {
		if id == itemID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		if len(current)+1 > step.MaxChoices {
			return fmt.Errorf("%w: at most %d option(s) in %q", ErrMaxChoicesReached, step.MaxChoices, step.Group.Name)
		}
		next = append(next, itemID)
	}
	return s.SetSelection(groupID, next)
}

// Restore loads a complete selection map as submitted by a client. XOR
// siblings are not cleared so that validation sees the selection as sent.
// Groups absent from selections end up empty.
func (s *Session) Restore(selections map[uuid.UUID][]uuid.UUID) error {
	for groupID := range selections {
		if _, err := s.step(groupID); err != nil {
			return err
		}
	}

	restored := make(map[uuid.UUID][]uuid.UUID, len(s.Steps))
	for i := range s.Steps {
		step := &s.Steps[i]
		values, err := s.checkOptions(step, selections[step.Group.ID])
		if err != nil {
			return err
		}
		restored[step.Group.ID] = values
	}
	s.Selections = restored
	return nil
}

func (s *Session) Errors() map[uuid.UUID]string {
	return CollectErrors(s.Steps, s.Selections)
}

func (s *Session) Valid() bool {
	return len(s.Errors()) == 0
}

// Label describes the composition: the menu name followed by each non-empty
// step as "<group>: <items>".
func (s *Session) Label() string {
	var parts []string
	for _, step := range s.Steps {
		ids := s.Selections[step.Group.ID]
		if len(ids) == 0 {
			continue
		}
		names := make([]string, 0, len(ids))
		for _, id := range ids {
			if item, ok := step.option(id); ok {
				names = append(names, step.OptionLabel(item))
			}
		}
		if len(names) == 0 {
			continue
		}
		sep := ", "
		if step.Multi {
			sep = " + "
		}
		parts = append(parts, step.Group.Name+": "+strings.Join(names, sep))
	}
	if len(parts) == 0 {
		return s.Menu.Name
	}
	return s.Menu.Name + " — " + strings.Join(parts, " • ")
}

// Finalize turns a valid session into one cart line priced at the menu's
// fixed price. Identical compositions share a product key and merge.
func (s *Session) Finalize(assigneeID string) (cart.AddItemInput, error) {
	if errs := s.Errors(); len(errs) > 0 {
		return cart.AddItemInput{}, &SelectionError{Errors: errs}
	}
	label := s.Label()
	return cart.AddItemInput{
		ProductKey:     "menu:" + s.Menu.ID.String() + ":" + label,
		Name:           label,
		UnitPriceCents: s.Menu.PriceCents,
		AssigneeID:     assigneeID,
	}, nil
}

// View is the JSON snapshot of a session.
type View struct {
	MenuID     uuid.UUID                 `json:"menuId"`
	MenuName   string                    `json:"menuName"`
	PriceCents int64                     `json:"priceCents"`
	Steps      []Step                    `json:"steps"`
	Selections map[uuid.UUID][]uuid.UUID `json:"selections"`
	Errors     map[uuid.UUID]string      `json:"errors"`
	Valid      bool                      `json:"valid"`
	Label      string                    `json:"label"`
}

func (s *Session) View() View {
	errs := s.Errors()
	return View{
		MenuID:     s.Menu.ID,
		MenuName:   s.Menu.Name,
		PriceCents: s.Menu.PriceCents,
		Steps:      s.Steps,
		Selections: s.Selections,
		Errors:     errs,
		Valid:      len(errs) == 0,
		Label:      s.Label(),
	}
}
