// Package seed installs the restaurant's hot menus and the catalog items
// they depend on. Every run converges to the same state.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/tableorder/internal/catalog"
	"github.com/vasiliy-maslov/tableorder/internal/menu"
)

const coldMenuCategory = "Menus Froids"

type GroupDef struct {
	Name           string
	CategoryFilter string
	MinChoices     int
	MaxChoices     int
}

type MenuDef struct {
	Name       string
	PriceCents int64
	Position   int
	Groups     []GroupDef
}

type ItemDef struct {
	Name       string
	Category   string
	PriceCents int64
	Position   int
}

func one(name, filter string) GroupDef {
	return GroupDef{Name: name, CategoryFilter: filter, MinChoices: 1, MaxChoices: 1}
}

var HotMenus = []MenuDef{
	{Name: "Asian Classic", PriceCents: 1690, Position: 10, Groups: []GroupDef{
		one("Entrée", "Entrées"),
		one("Yakitori (paire)", "Yakitoris (2 pièces)"),
		one("Plat Starter", "Plats Starter"),
	}},
	{Name: "Asian Classic +", PriceCents: 1890, Position: 20, Groups: []GroupDef{
		one("Entrée", "Entrées"),
		one("Yakitori (paire)", "Yakitoris (2 pièces)"),
		one("Plat Silver", "Plats Silver"),
	}},
	{Name: "Asian Royal", PriceCents: 1890, Position: 30, Groups: []GroupDef{
		one("Entrée", "Entrées::xor=royal-main"),
		one("Yakitori (paire)", "Yakitoris (2 pièces)::xor=royal-main"),
		one("Plat Gold", "Plats Gold"),
		one("Boisson", "Boissons"),
	}},
	{Name: "Asian Classe B", PriceCents: 1590, Position: 40, Groups: []GroupDef{
		one("Entrée", "Entrées::xor=classeb-main"),
		one("Yakitori (paire)", "Yakitoris (2 pièces)::xor=classeb-main"),
		one("Plat Silver", "Plats Silver"),
		one("Boisson", "Boissons"),
	}},
	{Name: "Asian Express", PriceCents: 1390, Position: 50, Groups: []GroupDef{
		one("Entrée", "Entrées"),
		one("Plat Silver", "Plats Silver"),
		one("Boisson", "Boissons"),
	}},
	{Name: "Asian Kid’s", PriceCents: 890, Position: 60, Groups: []GroupDef{
		one("Entrée (2 pièces)", "Entrées"),
		one("Yakitori (paire)", "Yakitoris (2 pièces)"),
		one("Accompagnement Kid’s", "Accompagnements|Plats Starter"),
		one("Dessert enfant", "Desserts Kid"),
		one("Boisson enfant", "Boissons Kid"),
	}},
}

var RequiredItems = []ItemDef{
	{Name: "Compote", Category: "Desserts Kid", PriceCents: 0, Position: 1},
	{Name: "Capri Sun", Category: "Boissons Kid", PriceCents: 0, Position: 1},
}

// ColdMenuDescriptions are applied to existing "Menus Froids" items only.
var ColdMenuDescriptions = map[string]string{
	"Asian First":     "6 Californias saumon avocat + 3 Sushis Saumon + 1 Boisson",
	"Asian Combo":     "6 Crunch thon cuit avocat + 6 Avocat roll’s burrata + 6 Frits avocat cheese miel + 1 Boisson",
	"Asian Meli Melo": "6 Saumon roll’s cheese + 6 California saumon avocat + 6 Printemps thon cuit avocat + 1 Boisson",
	"Asian Avocado":   "6 Crunch thon cuit avocat + 6 Avocat roll’s burrata + 6 Frits avocat cheese miel + 1 Boisson",
	"Asian Mix":       "6 California saumon avocat + 6 Saumon roll’s cheese + 2 Yakitoris bœuf fromage + 1 Yakitori boulettes de bœuf + 1 Yakitori poulet + 1 Boisson",
	"Asian Frits":     "6 Frits avocat cheese miel + 6 Frits saumon avocat boursin + 6 Frits poulet avocat cheddar sauce curry + 1 Boisson",
}

// LegacyMenus are deactivated when present.
var LegacyMenus = []string{"Asian Duo", "Asian Mix", "Asian Gourmand"}

type Summary struct {
	MenusCreated  int
	MenusUpdated  int
	ItemsCreated  int
	ItemsUpdated  int
	Descriptions  int
	LegacyRetired int
}

type Seeder struct {
	menus menu.Repository
	items catalog.Repository
}

func NewSeeder(menus menu.Repository, items catalog.Repository) *Seeder {
	return &Seeder{menus: menus, items: items}
}

func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	for _, def := range RequiredItems {
		created, updated, err := s.ensureItem(ctx, def)
		if err != nil {
			return sum, err
		}
		if created {
			sum.ItemsCreated++
		} else if updated {
			sum.ItemsUpdated++
		}
	}

	n, err := s.applyDescriptions(ctx)
	if err != nil {
		return sum, err
	}
	sum.Descriptions = n

	for _, def := range HotMenus {
		created, err := s.upsertMenu(ctx, def)
		if err != nil {
			return sum, err
		}
		if created {
			sum.MenusCreated++
		} else {
			sum.MenusUpdated++
		}
	}

	for _, name := range LegacyMenus {
		retired, err := s.deactivate(ctx, name)
		if err != nil {
			return sum, err
		}
		if retired {
			sum.LegacyRetired++
		}
	}

	log.Info().
		Int("menus_created", sum.MenusCreated).
		Int("menus_updated", sum.MenusUpdated).
		Int("items_created", sum.ItemsCreated).
		Int("items_updated", sum.ItemsUpdated).
		Int("descriptions", sum.Descriptions).
		Int("legacy_retired", sum.LegacyRetired).
		Msg("seed: hot menus synchronized")
	return sum, nil
}

func (s *Seeder) ensureItem(ctx context.Context, def ItemDef) (created, updated bool, err error) {
	existing, err := s.items.FindByName(ctx, def.Name)
	if errors.Is(err, catalog.ErrItemNotFound) {
		item := &catalog.MenuItem{
			Name:       def.Name,
			Category:   def.Category,
			PriceCents: def.PriceCents,
			Position:   def.Position,
			Available:  true,
		}
		if err := s.items.Create(ctx, item); err != nil {
			return false, false, fmt.Errorf("seed: failed to create item %q: %w", def.Name, err)
		}
		return true, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("seed: failed to look up item %q: %w", def.Name, err)
	}

	if existing.Category == def.Category && existing.PriceCents == def.PriceCents &&
		existing.Position == def.Position && existing.Available {
		return false, false, nil
	}
	existing.Category = def.Category
	existing.PriceCents = def.PriceCents
	existing.Position = def.Position
	existing.Available = true
	if err := s.items.Update(ctx, existing); err != nil {
		return false, false, fmt.Errorf("seed: failed to update item %q: %w", def.Name, err)
	}
	return false, true, nil
}

func (s *Seeder) applyDescriptions(ctx context.Context) (int, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: failed to list catalog: %w", err)
	}
	changed := 0
	for i := range items {
		item := &items[i]
		desc, ok := ColdMenuDescriptions[item.Name]
		if !ok || item.Category != coldMenuCategory {
			continue
		}
		if item.Description != nil && *item.Description == desc {
			continue
		}
		item.Description = &desc
		if err := s.items.Update(ctx, item); err != nil {
			return changed, fmt.Errorf("seed: failed to describe %q: %w", item.Name, err)
		}
		changed++
	}
	return changed, nil
}

func (s *Seeder) upsertMenu(ctx context.Context, def MenuDef) (bool, error) {
	existing, err := s.menus.GetByName(ctx, def.Name)
	if err != nil && !errors.Is(err, menu.ErrMenuNotFound) {
		return false, fmt.Errorf("seed: failed to look up menu %q: %w", def.Name, err)
	}

	target := &menu.Definition{
		Name:       def.Name,
		PriceCents: def.PriceCents,
		Active:     true,
		Position:   def.Position,
		Groups:     make([]menu.SelectionGroup, len(def.Groups)),
	}
	for i, g := range def.Groups {
		target.Groups[i] = menu.SelectionGroup{
			Name:           g.Name,
			CategoryFilter: g.CategoryFilter,
			MinChoices:     g.MinChoices,
			MaxChoices:     g.MaxChoices,
			Position:       i + 1,
		}
	}

	if existing == nil {
		target.Prepare()
		if err := target.Validate(); err != nil {
			return false, fmt.Errorf("seed: menu %q: %w", def.Name, err)
		}
		if err := s.menus.Create(ctx, target); err != nil {
			return false, fmt.Errorf("seed: failed to create menu %q: %w", def.Name, err)
		}
		return true, nil
	}

	target.ID = existing.ID
	reuseGroupIDs(target.Groups, existing.Groups)
	target.Prepare()
	if err := target.Validate(); err != nil {
		return false, fmt.Errorf("seed: menu %q: %w", def.Name, err)
	}
	if err := s.menus.Update(ctx, target); err != nil {
		return false, fmt.Errorf("seed: failed to update menu %q: %w", def.Name, err)
	}
	return false, nil
}

// reuseGroupIDs keeps the identity of existing groups matched by name, or
// failing that by filter and first word of the name, so that selections held
// by open clients stay valid.
func reuseGroupIDs(desired, current []menu.SelectionGroup) {
	used := make(map[int]bool, len(current))
	match := func(ok func(menu.SelectionGroup) bool) int {
		for i, g := range current {
			if !used[i] && ok(g) {
				return i
			}
		}
		return -1
	}
	for i := range desired {
		d := &desired[i]
		firstWord, _, _ := strings.Cut(d.Name, " ")
		idx := match(func(g menu.SelectionGroup) bool { return g.Name == d.Name })
		if idx < 0 {
			idx = match(func(g menu.SelectionGroup) bool {
				return g.CategoryFilter == d.CategoryFilter && strings.HasPrefix(g.Name, firstWord)
			})
		}
		if idx >= 0 {
			used[idx] = true
			d.ID = current[idx].ID
		}
	}
}

func (s *Seeder) deactivate(ctx context.Context, name string) (bool, error) {
	def, err := s.menus.GetByName(ctx, name)
	if errors.Is(err, menu.ErrMenuNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed: failed to look up legacy menu %q: %w", name, err)
	}
	if !def.Active {
		return false, nil
	}
	def.Active = false
	if err := s.menus.Update(ctx, def); err != nil {
		return false, fmt.Errorf("seed: failed to deactivate menu %q: %w", name, err)
	}
	return true, nil
}
