package order

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
	StatusServed     Status = "SERVED"
	StatusCanceled   Status = "CANCELED"
)

// AllStatuses lists the kitchen board columns in display order.
var AllStatuses = []Status{StatusNew, StatusInProgress, StatusReady, StatusServed, StatusCanceled}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts any enum value, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range AllStatuses {
		if s == candidate {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

type Item struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrderID        uuid.UUID `json:"orderId" db:"order_id"`
	Name           string    `json:"name" db:"name"`
	UnitPriceCents *int64    `json:"unitPriceCents" db:"unit_price_cents"`
	Qty            int       `json:"qty" db:"qty"`
	AssigneeID     *string   `json:"assigneeId,omitempty" db:"assignee_id"`
}

// Order is immutable once stored except for its status.
type Order struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TableID    string    `json:"tableId" db:"table_id"`
	Status     Status    `json:"status" db:"status"`
	TotalCents int64     `json:"totalCents" db:"total_cents"`
	Comment    *string   `json:"comment" db:"comment"`
	PartySize  *int      `json:"partySize" db:"party_size"`
	Items      []Item    `json:"items" db:"-"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// SubmitItem is one requested line; a nil price is resolved from the catalog.
type SubmitItem struct {
	Name           string  `json:"name"`
	Qty            int     `json:"qty"`
	UnitPriceCents *int64  `json:"unitPriceCents,omitempty"`
	AssigneeID     *string `json:"assigneeId,omitempty"`
}

type SubmitRequest struct {
	TableID   string       `json:"tableId"`
	Items     []SubmitItem `json:"items"`
	Comment   *string      `json:"comment,omitempty"`
	PartySize *int         `json:"partySize,omitempty"`
	Total     *int64       `json:"total,omitempty"`
}

// Overrides are the optional body fields of a table-cart submission.
// Overrides are submission values that replace the cart's own. CommentSet
// marks an explicit comment, so a nil Comment with CommentSet clears it.
type Overrides struct {
	Items      []SubmitItem
	Comment    *string
	CommentSet bool
	PartySize  *int
	Total      *int64
}

type ListFilter struct {
	Status  *Status
	TableID string
}
