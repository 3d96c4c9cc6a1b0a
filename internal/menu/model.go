package menu

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

var (
	ErrMenuNotFound      = errors.New("menu not found")
	ErrDuplicateMenuName = errors.New("menu name already exists")
	ErrInvalidDefinition = errors.New("invalid menu definition")
)

// Definition is a fixed-price formula made of ordered selection groups.
type Definition struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	PriceCents int64            `json:"priceCents"`
	Active     bool             `json:"active"`
	Position   int              `json:"position"`
	Groups     []SelectionGroup `json:"groups"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// SelectionGroup is one step of a formula. CategoryFilter holds the raw
// stored form; CategoryFilters and MutualExclusionTag are its decoded parts.
type SelectionGroup struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	CategoryFilter     string    `json:"categoryFilter"`
	CategoryFilters    []string  `json:"categoryFilters"`
	MutualExclusionTag string    `json:"mutualExclusionTag,omitempty"`
	MinChoices         int       `json:"minChoices"`
	MaxChoices         int       `json:"maxChoices"`
	Position           int       `json:"position"`

	// mismatch is set by Prepare when the raw and typed filter forms disagree.
	mismatch string
}

func (g SelectionGroup) Multi() bool {
	return g.MaxChoices > 1
}

const (
	filterSeparator = "|"
	metaSeparator   = "::"
	xorKey          = "xor"
)

// DecodeFilter splits a raw category filter into category tokens and the
// mutual-exclusion tag carried by any "::xor=<tag>" suffix. Other metadata
// keys are ignored.
func DecodeFilter(raw string) (filters []string, xorTag string) {
	for _, part := range strings.Split(raw, filterSeparator) {
		segments := strings.Split(part, metaSeparator)
		token := strings.TrimSpace(segments[0])
		for _, meta := range segments[1:] {
			key, value, ok := strings.Cut(meta, "=")
			if !ok {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(key), xorKey) && xorTag == "" {
				xorTag = strings.TrimSpace(value)
			}
		}
		if token != "" {
			filters = append(filters, token)
		}
	}
	return filters, xorTag
}

// EncodeFilter is the inverse of DecodeFilter; the tag is attached to the
// first token.
func EncodeFilter(filters []string, xorTag string) string {
	tokens := make([]string, 0, len(filters))
	for _, f := range filters {
		if f = strings.TrimSpace(f); f != "" {
			tokens = append(tokens, f)
		}
	}
	if xorTag != "" && len(tokens) > 0 {
		tokens[0] = tokens[0] + metaSeparator + xorKey + "=" + xorTag
	}
	return strings.Join(tokens, filterSeparator)
}

// Decode fills the typed filter fields from the raw CategoryFilter.
func (g *SelectionGroup) Decode() {
	g.CategoryFilters, g.MutualExclusionTag = DecodeFilter(g.CategoryFilter)
}

// reconcile merges the typed filter fields into the raw form. A typed tag
// missing from the raw form is added to it; typed values that contradict the
// raw form are recorded for Validate.
func (g *SelectionGroup) reconcile() {
	g.mismatch = ""
	typedFilters, _ := DecodeFilter(strings.Join(g.CategoryFilters, filterSeparator))
	typedTag := strings.TrimSpace(g.MutualExclusionTag)

	if strings.TrimSpace(g.CategoryFilter) == "" {
		g.CategoryFilter = EncodeFilter(typedFilters, typedTag)
		g.Decode()
		return
	}

	g.Decode()
	if len(typedFilters) > 0 && !slices.Equal(typedFilters, g.CategoryFilters) {
		g.mismatch = "categoryFilters disagree with categoryFilter"
		return
	}
	switch {
	case typedTag == "" || typedTag == g.MutualExclusionTag:
	case g.MutualExclusionTag == "":
		g.MutualExclusionTag = typedTag
		g.CategoryFilter = EncodeFilter(g.CategoryFilters, typedTag)
	default:
		g.mismatch = "mutualExclusionTag disagrees with categoryFilter"
	}
}

// Prepare trims names, decodes every group filter and orders the groups by
// position. It is applied whenever a definition is loaded or submitted.
func (d *Definition) Prepare() {
	d.Name = strings.TrimSpace(d.Name)
	for i := range d.Groups {
		g := &d.Groups[i]
		g.Name = strings.TrimSpace(g.Name)
		g.reconcile()
	}
	sort.SliceStable(d.Groups, func(i, j int) bool {
		return d.Groups[i].Position < d.Groups[j].Position
	})
}

// Validate reports the first structural problem of a definition.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if d.PriceCents < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidDefinition)
	}
	if len(d.Groups) == 0 {
		return fmt.Errorf("%w: at least one group is required", ErrInvalidDefinition)
	}
	for _, g := range d.Groups {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (g SelectionGroup) Validate() error {
	switch {
	case g.Name == "":
		return fmt.Errorf("%w: group name is required", ErrInvalidDefinition)
	case g.mismatch != "":
		return fmt.Errorf("%w: group %q %s", ErrInvalidDefinition, g.Name, g.mismatch)
	case len(g.CategoryFilters) == 0:
		return fmt.Errorf("%w: group %q has no category filter", ErrInvalidDefinition, g.Name)
	case g.MinChoices < 0:
		return fmt.Errorf("%w: group %q has negative minChoices", ErrInvalidDefinition, g.Name)
	case g.MaxChoices < g.MinChoices:
		return fmt.Errorf("%w: group %q has maxChoices below minChoices", ErrInvalidDefinition, g.Name)
	case g.MaxChoices < 1:
		return fmt.Errorf("%w: group %q must allow at least one choice", ErrInvalidDefinition, g.Name)
	}
	return nil
}
