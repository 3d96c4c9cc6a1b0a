package compose

import (
	"sort"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/tableorder/internal/catalog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultAliases maps the labels used in menu definitions onto the catalog
// categories of the restaurant.
var DefaultAliases = map[string][]string{
	"Starter":             {"Plats Starter"},
	"Silver":              {"Plats Silver"},
	"Gold":                {"Plats Gold"},
	"starter":             {"Plats Starter"},
	"silver":              {"Plats Silver"},
	"gold":                {"Plats Gold"},
	"Entrée / Yakitoris":  {"Entrées", "Yakitoris (2 pièces)"},
	"Entrée/Yakitoris":    {"Entrées", "Yakitoris (2 pièces)"},
	"Entrée ou Yakitoris": {"Entrées", "Yakitoris (2 pièces)"},
	"Entrée":              {"Entrées"},
	"entrée":              {"Entrées"},
	"Yakitoris":           {"Yakitoris (2 pièces)"},
	"Entrée (2 pièces)":   {"Entrées"},
	"Accompagnement":      {"Accompagnements"},
	"Goûter":              {"Desserts"},
}

// Resolver expands category filter tokens through an alias table and
// collects the matching catalog items.
type Resolver struct {
	aliases map[string][]string
}

func NewResolver(aliases map[string][]string) *Resolver {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Resolver{aliases: aliases}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (r *Resolver) lookup(token string) ([]string, bool) {
	collapsed := collapseSpaces(token)
	for _, candidate := range []string{token, strings.ToLower(token), collapsed, strings.ToLower(collapsed)} {
		if target, ok := r.aliases[candidate]; ok {
			return target, true
		}
	}
	return nil, false
}

// Resolve expands filters into concrete catalog categories. Aliases expand
// recursively; a token already visited (case-insensitively) is skipped, which
// guards against cycles and duplicate categories.
func (r *Resolver) Resolve(filters []string) []string {
	seen := make(map[string]struct{})
	var out []string

	var push func(token string)
	push = func(token string) {
		token = strings.TrimSpace(token)
		if token == "" {
			return
		}
		key := strings.ToLower(token)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		if targets, ok := r.lookup(token); ok {
			for _, t := range targets {
				push(t)
			}
			return
		}
		out = append(out, token)
	}

	for _, f := range filters {
		push(f)
	}
	return out
}

// Options returns the available catalog items whose category resolves from
// filters, without duplicates, ordered by the first appearance of their
// category in items, then by position, then by French collation of names.
func (r *Resolver) Options(items []catalog.MenuItem, filters []string) []catalog.MenuItem {
	categories := r.Resolve(filters)
	if len(categories) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		wanted[c] = struct{}{}
	}

	categoryOrder := make(map[string]int)
	for _, it := range items {
		c := strings.TrimSpace(it.Category)
		if _, ok := categoryOrder[c]; !ok && c != "" {
			categoryOrder[c] = len(categoryOrder)
		}
	}

	seenIDs := make(map[uuid.UUID]struct{})
	var out []catalog.MenuItem
	for _, it := range items {
		if !it.Available {
			continue
		}
		if _, ok := wanted[strings.TrimSpace(it.Category)]; !ok {
			continue
		}
		if _, dup := seenIDs[it.ID]; dup {
			continue
		}
		seenIDs[it.ID] = struct{}{}
		out = append(out, it)
	}

	col := collate.New(language.French)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		oa, ob := categoryOrder[strings.TrimSpace(a.Category)], categoryOrder[strings.TrimSpace(b.Category)]
		if oa != ob {
			return oa < ob
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
	return out
}
