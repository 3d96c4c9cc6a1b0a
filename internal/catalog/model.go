package catalog

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// MenuItem is an orderable dish or drink of the restaurant's card.
type MenuItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	PriceCents  int64     `json:"priceCents" db:"price_cents"`
	Category    string    `json:"category" db:"category"`
	Available   bool      `json:"available" db:"available"`
	Position    int       `json:"position" db:"position"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Normalize trims free-text fields in place.
func (m *MenuItem) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Category = strings.TrimSpace(m.Category)
	if m.Description != nil {
		d := strings.TrimSpace(*m.Description)
		if d == "" {
			m.Description = nil
		} else {
			m.Description = &d
		}
	}
}

// Browsable drops the items customers never pick from the card directly:
// unavailable items, kid-menu-only categories and the 1L bottles.
func Browsable(items []MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, it := range items {
		if !it.Available {
			continue
		}
		if _, hidden := hiddenCategories[it.Category]; hidden {
			continue
		}
		if it.Category == "Boissons" && strings.Contains(strings.ToLower(it.Name), "1l") {
			continue
		}
		out = append(out, it)
	}
	return out
}

var hiddenCategories = map[string]struct{}{
	"Boissons Kid": {},
	"Desserts Kid": {},
}
