package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/tableorder/internal/cart"
	"github.com/vasiliy-maslov/tableorder/internal/catalog"
	"github.com/vasiliy-maslov/tableorder/internal/events"
)

// MaxCommentLength bounds the stored order comment, in characters.
const MaxCommentLength = 2000

var (
	ErrMalformedRequest = errors.New("malformed order request")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrOrderNotFound    = errors.New("order not found")
)

type CatalogReader interface {
	FindByName(ctx context.Context, name string) (*catalog.MenuItem, error)
}

type CartStore interface {
	Get(ctx context.Context, tableID string) (cart.TableCart, error)
	Clear(ctx context.Context, tableID string) (cart.TableCart, error)
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Order, error)
	SubmitTableCart(ctx context.Context, tableID string, overrides Overrides) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
}

type service struct {
	repo      Repository
	catalog   CatalogReader
	carts     CartStore
	publisher events.Publisher
}

func NewService(repo Repository, catalog CatalogReader, carts CartStore, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{repo: repo, catalog: catalog, carts: carts, publisher: publisher}
}

// Submit validates req, prices unpriced items from the catalog and stores the
// order as NEW. The table cart is cleared afterwards on a best-effort basis.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Order, error) {
	tableID := strings.TrimSpace(req.TableID)
	if tableID == "" {
		log.Warn().Msg("service: order submitted without table id")
		return nil, fmt.Errorf("%w: tableId is required", ErrMalformedRequest)
	}

	items := sanitizeItems(req.Items)
	if len(items) == 0 {
		log.Warn().Str("table_id", tableID).Msg("service: order submitted with empty cart")
		return nil, ErrEmptyCart
	}

	var computed int64
	for i := range items {
		if items[i].UnitPriceCents == nil {
			price, err := s.resolvePrice(ctx, items[i].Name)
			if err != nil {
				log.Error().Err(err).Str("table_id", tableID).Str("item", items[i].Name).Msg("service: failed to resolve item price")
				return nil, fmt.Errorf("service: failed to resolve price of %q: %w", items[i].Name, err)
			}
			items[i].UnitPriceCents = &price
		}
		line, ok := lineTotal(*items[i].UnitPriceCents, items[i].Qty)
		if !ok || computed > math.MaxInt64-line {
			log.Warn().Str("table_id", tableID).Str("item", items[i].Name).Msg("service: order total overflows")
			return nil, fmt.Errorf("%w: total of %q is out of range", ErrMalformedRequest, items[i].Name)
		}
		computed += line
	}

	total := computed
	if req.Total != nil && *req.Total > computed {
		total = *req.Total
	}

	o := &Order{
		TableID:    tableID,
		Status:     StatusNew,
		TotalCents: total,
		Comment:    cart.NormalizeComment(derefString(req.Comment), MaxCommentLength),
		Items:      items,
	}
	if req.PartySize != nil {
		n := cart.ClampPartySize(float64(*req.PartySize))
		o.PartySize = &n
	}

	if _, err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Str("table_id", tableID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}
	log.Info().Stringer("order_id", o.ID).Str("table_id", tableID).Int64("total_cents", total).Int("items", len(items)).Msg("service: order created successfully")

	if _, err := s.carts.Clear(ctx, tableID); err != nil {
		log.Warn().Err(err).Str("table_id", tableID).Stringer("order_id", o.ID).Msg("service: failed to clear cart after order, ignoring")
	}
	s.publish(ctx, events.SubjectOrderCreated, o)

	return o, nil
}

// SubmitTableCart submits the table's current cart. Items, comment and
// party size from overrides win over the cart's own values when present.
func (s *service) SubmitTableCart(ctx context.Context, tableID string, overrides Overrides) (*Order, error) {
	tableID = strings.TrimSpace(tableID)
	if tableID == "" {
		return nil, fmt.Errorf("%w: tableId is required", ErrMalformedRequest)
	}

	snapshot, err := s.carts.Get(ctx, tableID)
	if err != nil {
		log.Error().Err(err).Str("table_id", tableID).Msg("service: failed to read cart for submission")
		return nil, fmt.Errorf("service: failed to read cart: %w", err)
	}

	req := SubmitRequest{
		TableID: tableID,
		Items:   overrides.Items,
		Comment: snapshot.TableComment,
		Total:   overrides.Total,
	}
	if len(sanitizeItems(req.Items)) == 0 {
		req.Items = make([]SubmitItem, 0, len(snapshot.Lines))
		for _, line := range snapshot.Lines {
			price := line.UnitPriceCents
			item := SubmitItem{Name: line.Name, Qty: line.Qty, UnitPriceCents: &price}
			if line.AssigneeID != "" {
				assignee := line.AssigneeID
				item.AssigneeID = &assignee
			}
			req.Items = append(req.Items, item)
		}
	}
	if overrides.CommentSet || overrides.Comment != nil {
		req.Comment = overrides.Comment
	}
	partySize := snapshot.PartySize
	if overrides.PartySize != nil {
		partySize = *overrides.PartySize
	}
	req.PartySize = &partySize

	return s.Submit(ctx, req)
}

// lineTotal multiplies a non-negative price by a positive quantity and
// reports false on overflow.
func lineTotal(price int64, qty int) (int64, bool) {
	if price != 0 && int64(qty) > math.MaxInt64/price {
		return 0, false
	}
	return price * int64(qty), true
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*Order, error) {
	status, err := ParseStatus(raw)
	if err != nil {
		log.Warn().Stringer("order_id", id).Str("status", raw).Msg("service: rejected unknown order status")
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}

	o, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Stringer("new_status", status).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", status).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", id).Stringer("new_status", status).Msg("service: order status updated successfully")
	s.publish(ctx, events.SubjectOrderStatusChanged, o)
	return o, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

// resolvePrice returns the catalog price of the first item named name, or 0.
func (s *service) resolvePrice(ctx context.Context, name string) (int64, error) {
	item, err := s.catalog.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return max(item.PriceCents, 0), nil
}

func (s *service) publish(ctx context.Context, subject string, o *Order) {
	evt := events.OrderEvent{
		OrderID:    o.ID,
		TableID:    o.TableID,
		Status:     o.Status.String(),
		TotalCents: o.TotalCents,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, subject, evt); err != nil {
		log.Warn().Err(err).Stringer("order_id", o.ID).Str("subject", subject).Msg("service: failed to publish order event")
	}
}

// sanitizeItems trims names and assignees and drops lines without a name or
// with a non-positive quantity. Negative prices clamp to 0.
func sanitizeItems(in []SubmitItem) []Item {
	out := make([]Item, 0, len(in))
	for _, it := range in {
		name := strings.TrimSpace(it.Name)
		if name == "" || it.Qty <= 0 {
			continue
		}
		item := Item{Name: name, Qty: it.Qty}
		if it.UnitPriceCents != nil {
			price := max(*it.UnitPriceCents, 0)
			item.UnitPriceCents = &price
		}
		if it.AssigneeID != nil {
			if assignee := strings.TrimSpace(*it.AssigneeID); assignee != "" {
				item.AssigneeID = &assignee
			}
		}
		out = append(out, item)
	}
	return out
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
