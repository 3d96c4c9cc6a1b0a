package compose

import (
	"strings"

	"github.com/vasiliy-maslov/tableorder/internal/catalog"
	"github.com/vasiliy-maslov/tableorder/internal/menu"
)

// OptionRule narrows the options resolved for one group. Rules run in order
// and each receives the output of the previous one.
type OptionRule func(def *menu.Definition, group menu.SelectionGroup, options []catalog.MenuItem) []catalog.MenuItem

// DefaultRules holds the restaurant's kids-menu restrictions.
var DefaultRules = []OptionRule{
	KidsSideRule("Asian Kid’s", "accompagnement", "riz nature", "nouilles sautées légumes", "riz cantonnais"),
	CategoryKeywordRule("Desserts Kid", "compote"),
	CategoryKeywordRule("Boissons Kid", "capri"),
}

// KidsSideRule restricts groups of menuName whose name contains groupMarker
// to items whose name contains one of keywords.
func KidsSideRule(menuName, groupMarker string, keywords ...string) OptionRule {
	return func(def *menu.Definition, group menu.SelectionGroup, options []catalog.MenuItem) []catalog.MenuItem {
		if def.Name != menuName || !strings.Contains(strings.ToLower(group.Name), groupMarker) {
			return options
		}
		return filterByKeywords(options, keywords...)
	}
}

// CategoryKeywordRule restricts groups filtering exactly on category to items
// whose name contains keyword.
func CategoryKeywordRule(category, keyword string) OptionRule {
	return func(_ *menu.Definition, group menu.SelectionGroup, options []catalog.MenuItem) []catalog.MenuItem {
		if len(group.CategoryFilters) != 1 || group.CategoryFilters[0] != category {
			return options
		}
		return filterByKeywords(options, keyword)
	}
}

func filterByKeywords(options []catalog.MenuItem, keywords ...string) []catalog.MenuItem {
	out := make([]catalog.MenuItem, 0, len(options))
	for _, opt := range options {
		label := strings.ToLower(opt.Name)
		for _, kw := range keywords {
			if strings.Contains(label, kw) {
				out = append(out, opt)
				break
			}
		}
	}
	return out
}
