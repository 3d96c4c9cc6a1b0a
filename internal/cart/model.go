package cart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinPartySize     = 1
	MaxPartySize     = 12
	MaxCommentLength = 300

	noAssignee = "-"
)

// Line is one merged cart entry. Lines sharing product, price, assignee and
// note are a single line with an accumulated quantity.
type Line struct {
	Key            string `json:"key"`
	ProductKey     string `json:"productKey"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Qty            int    `json:"qty"`
	AssigneeID     string `json:"assigneeId,omitempty"`
	Note           string `json:"note,omitempty"`
}

type TableCart struct {
	TableID      string    `json:"tableId"`
	Lines        []Line    `json:"lines"`
	PartySize    int       `json:"partySize"`
	TableComment *string   `json:"tableComment"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AddItemInput describes one unit to add to a table cart.
type AddItemInput struct {
	ProductKey     string `json:"productKey"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	AssigneeID     string `json:"assigneeId,omitempty"`
	Note           string `json:"note,omitempty"`
}

func (in AddItemInput) Key() string {
	return LineKey(in.ProductKey, in.UnitPriceCents, in.AssigneeID, in.Note)
}

// ChangeQtyInput locates a line by its identity and applies Delta to it.
type ChangeQtyInput struct {
	ProductKey     string `json:"productKey"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	AssigneeID     string `json:"assigneeId,omitempty"`
	Note           string `json:"note,omitempty"`
	Delta          int    `json:"delta"`
}

func (in ChangeQtyInput) Key() string {
	return LineKey(in.ProductKey, in.UnitPriceCents, in.AssigneeID, in.Note)
}

func LineKey(productKey string, unitPriceCents int64, assigneeID, note string) string {
	assignee := strings.TrimSpace(assigneeID)
	if assignee == "" {
		assignee = noAssignee
	}
	return strings.TrimSpace(productKey) + "|" + strconv.FormatInt(unitPriceCents, 10) + "|" + assignee + "|" + strings.TrimSpace(note)
}

func newCart(tableID string, now time.Time) TableCart {
	return TableCart{
		TableID:   tableID,
		Lines:     []Line{},
		PartySize: MinPartySize,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy safe to hand out of a store.
func (c TableCart) Clone() TableCart {
	out := c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	if c.TableComment != nil {
		comment := *c.TableComment
		out.TableComment = &comment
	}
	return out
}

func (c TableCart) TotalCents() int64 {
	return TotalCents(c.Lines)
}

func TotalCents(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.UnitPriceCents * int64(l.Qty)
	}
	return total
}

func (c *TableCart) indexOf(key string) int {
	for i := range c.Lines {
		if c.Lines[i].Key == key {
			return i
		}
	}
	return -1
}

func (c *TableCart) addItem(in AddItemInput) {
	key := in.Key()
	if i := c.indexOf(key); i >= 0 {
		c.Lines[i].Qty++
		return
	}
	c.Lines = append(c.Lines, Line{
		Key:            key,
		ProductKey:     in.ProductKey,
		Name:           in.Name,
		UnitPriceCents: in.UnitPriceCents,
		Qty:            1,
		AssigneeID:     strings.TrimSpace(in.AssigneeID),
		Note:           strings.TrimSpace(in.Note),
	})
}

func (c *TableCart) changeQty(key string, delta int) {
	i := c.indexOf(key)
	if i < 0 {
		return
	}
	c.Lines[i].Qty += delta
	if c.Lines[i].Qty <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

func (c *TableCart) removeLine(key string) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// setPartySize moves lines of assignees beyond the new size onto the last
// valid assignee, merging lines whose keys then collide.
func (c *TableCart) setPartySize(n int) {
	c.PartySize = n

	merged := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		if idx, ok := AssigneeIndex(l.AssigneeID); ok && idx > n {
			l.AssigneeID = AssigneeTag(n)
			l.Key = LineKey(l.ProductKey, l.UnitPriceCents, l.AssigneeID, l.Note)
		}
		found := false
		for i := range merged {
			if merged[i].Key == l.Key {
				merged[i].Qty += l.Qty
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, l)
		}
	}
	c.Lines = merged
}

func (c *TableCart) setComment(text string) {
	c.TableComment = NormalizeComment(text, MaxCommentLength)
}

func (c *TableCart) clear() {
	c.Lines = []Line{}
	c.TableComment = nil
}

// ClampPartySize rounds n and bounds it to [MinPartySize, MaxPartySize].
func ClampPartySize(n float64) int {
	if math.IsNaN(n) {
		return MinPartySize
	}
	r := math.Round(n)
	if r < MinPartySize {
		return MinPartySize
	}
	if r > MaxPartySize {
		return MaxPartySize
	}
	return int(r)
}

// NormalizeComment trims text, truncates it to limit runes and maps an empty
// result to nil.
func NormalizeComment(text string, limit int) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}
	return &text
}

// AssigneeTag returns the participant tag for a 1-based seat index.
func AssigneeTag(i int) string {
	return fmt.Sprintf("P%d", i)
}

// AssigneeIndex parses tags of the form "P<n>".
func AssigneeIndex(tag string) (int, bool) {
	if len(tag) < 2 || (tag[0] != 'P' && tag[0] != 'p') {
		return 0, false
	}
	n, err := strconv.Atoi(tag[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
