package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"github.com/jossiefancies/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrOrderNotFound is returned when no order matches an id or order_id
var ErrOrderNotFound = shared.NewDomainError("NOT_FOUND", "Order not found")

// OrderLinkBuilder builds WhatsApp deep links for orders
type OrderLinkBuilder interface {
	// OrderURL is the link the shopper opens to confirm the order
	OrderURL(order *trade.Order) string
	// AdminURL is the link that alerts the shop about the order
	AdminURL(order *trade.Order) string
	// Number is the shop's WhatsApp number as displayed
	Number() string
}

// OrderRecorder is told about every committed checkout
type OrderRecorder interface {
	RecordOrderPlaced(ctx context.Context, total decimal.Decimal, items int)
}

// OrderService handles checkout and admin order management
type OrderService struct {
	orderRepo      trade.OrderRepository
	placer         trade.OrderPlacer
	carts          *CartService
	links          OrderLinkBuilder
	shippingFee    decimal.Decimal
	eventPublisher shared.EventPublisher
	recorder       OrderRecorder
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	placer trade.OrderPlacer,
	carts *CartService,
	links OrderLinkBuilder,
	shippingFee decimal.Decimal,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		placer:      placer,
		carts:       carts,
		links:       links,
		shippingFee: shippingFee,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetOrderRecorder sets where placed orders are reported, e.g. metrics
func (s *OrderService) SetOrderRecorder(recorder OrderRecorder) {
	s.recorder = recorder
}

// PlaceOrder turns the owner's cart into an order. Stock is decremented,
// history recorded and the cart cleared in one transaction; OrderPlaced is
// published only after that commits.
func (s *OrderService) PlaceOrder(ctx context.Context, owner CartOwner, req PlaceOrderRequest) (resp *PlacedOrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OrderService", "PlaceOrder",
		attribute.Bool(telemetry.SpanAttrAuthenticated, owner.UserID != nil))
	defer func() {
		if resp != nil {
			span.SetAttributes(
				attribute.String(telemetry.SpanAttrOrderID, resp.OrderID.String()),
				attribute.Int(telemetry.SpanAttrItemCount, resp.TotalItems),
			)
		}
		telemetry.EndSpan(span, err)
	}()
	return s.placeOrder(ctx, owner, req)
}

func (s *OrderService) placeOrder(ctx context.Context, owner CartOwner, req PlaceOrderRequest) (*PlacedOrderResponse, error) {
	cart, err := s.carts.Find(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil || cart.IsEmpty() {
		return nil, shared.ErrCartEmpty
	}

	lines := make([]trade.PlacementLine, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Product == nil || !item.Product.HasStock(item.Quantity) {
			name := ""
			if item.Product != nil {
				name = item.Product.Name
			}
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf("Insufficient stock for %s", name))
		}
		lines = append(lines, trade.PlacementLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := trade.NewOrder(trade.CustomerContact{
		Email:         req.Email,
		Phone:         req.Phone,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		DeliveryNotes: req.DeliveryNotes,
		Notes:         req.Notes,
	}, s.shippingFee, owner.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.placer.PlaceOrder(ctx, order, cart.ID, lines); err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.OrderID.String()),
		zap.Int("items", order.TotalItems()),
		zap.String("total", order.TotalAmount.StringFixed(2)))

	order.MarkPlaced()
	s.publish(ctx, order)
	if s.recorder != nil {
		s.recorder.RecordOrderPlaced(ctx, order.TotalAmount, order.TotalItems())
	}

	resp := &PlacedOrderResponse{OrderResponse: ToOrderResponse(order)}
	if s.links != nil {
		resp.WhatsAppURL = s.links.OrderURL(order)
		resp.WhatsAppNumber = s.links.Number()
	}
	return resp, nil
}

// List returns a page of orders, newest first
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	status := trade.OrderStatus(filter.Status)
	if status != "" && !status.IsValid() {
		return nil, shared.ErrInvalidStatus
	}
	orders, total, err := s.orderRepo.List(ctx, trade.OrderQuery{
		Status:   status,
		Search:   filter.Search,
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToOrderResponses(orders), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Recent returns the newest orders
func (s *OrderService) Recent(ctx context.Context, limit int) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// Get returns an order by primary id or public order_id
func (s *OrderService) Get(ctx context.Context, id string) (*OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Update edits an order's contact fields, notes and status
func (s *OrderService) Update(ctx context.Context, id string, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	contact := order.Contact()
	changed := false
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{req.Email, &contact.Email},
		{req.Phone, &contact.Phone},
		{req.FirstName, &contact.FirstName},
		{req.LastName, &contact.LastName},
		{req.DeliveryNotes, &contact.DeliveryNotes},
		{req.Notes, &contact.Notes},
	} {
		if f.src != nil {
			*f.dst = *f.src
			changed = true
		}
	}
	if changed {
		if err := order.UpdateContact(contact); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := s.applyStatus(order, trade.OrderStatus(*req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateStatus sets an order's status. Any valid status is accepted; moves
// against the forward lifecycle are logged.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status string) (*OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyStatus(order, trade.OrderStatus(status)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// Delete deletes an order and its lines
func (s *OrderService) Delete(ctx context.Context, id string) error {
	order, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
		return err
	}
	s.logger.Info("order deleted", zap.String("order_id", order.OrderID.String()))
	return nil
}

// WhatsAppLinks returns the customer and admin WhatsApp links for an order
func (s *OrderService) WhatsAppLinks(ctx context.Context, id string) (*WhatsAppLinksResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.links == nil {
		return &WhatsAppLinksResponse{}, nil
	}
	return &WhatsAppLinksResponse{
		WhatsAppURL:      s.links.OrderURL(order),
		AdminWhatsAppURL: s.links.AdminURL(order),
		WhatsAppNumber:   s.links.Number(),
	}, nil
}

func (s *OrderService) applyStatus(order *trade.Order, status trade.OrderStatus) error {
	previous := order.Status
	lifecycle, err := order.UpdateStatus(status)
	if err != nil {
		return err
	}
	if !lifecycle {
		s.logger.Warn("order status changed outside the normal lifecycle",
			zap.String("order_id", order.OrderID.String()),
			zap.String("from", previous.String()),
			zap.String("to", status.String()))
	}
	return nil
}

func (s *OrderService) find(ctx context.Context, id string) (*trade.Order, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.FindByID(ctx, parsed)
	if errors.Is(err, shared.ErrNotFound) {
		order, err = s.orderRepo.FindByOrderID(ctx, parsed)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) {
	events := order.PullDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish order event",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", order.OrderID.String()),
				zap.Error(err))
		}
	}
}
