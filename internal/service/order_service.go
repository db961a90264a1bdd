package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/internal/shiprocket"
	"github.com/fitkart/storefront-api/pkg/errors"
)

// ChangeNotifier receives a notification after every persisted order
// mutation. The live update hub implements it.
type ChangeNotifier interface {
	OrderChanged(orderID, orderNumber string, status string, updatedAt time.Time)
}

// NopNotifier discards change notifications
type NopNotifier struct{}

func (NopNotifier) OrderChanged(string, string, string, time.Time) {}

// OrderService owns the order aggregate: status transitions, pre-shipment
// edits, cancellation and deletion, plus the audit trail around admin edits.
type OrderService struct {
	repos     *repository.Repositories
	inventory *InventoryService
	gateway   *shiprocket.Gateway
	notifier  ChangeNotifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	repos *repository.Repositories,
	inventory *InventoryService,
	gateway *shiprocket.Gateway,
	notifier ChangeNotifier,
	logger *zap.Logger,
) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderService{
		repos:     repos,
		inventory: inventory,
		gateway:   gateway,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve fetches an order by internal id or human order number
func (s *OrderService) Resolve(ctx context.Context, idOrNumber string) (*domain.Order, error) {
	if id, err := uuid.Parse(idOrNumber); err == nil {
		return s.repos.Order.GetByID(ctx, id)
	}
	return s.repos.Order.GetByNumber(ctx, idOrNumber)
}

// Get fetches an order, enforcing owner-or-admin access
func (s *OrderService) Get(ctx context.Context, idOrNumber string, actor *domain.User) (*domain.Order, error) {
	order, err := s.Resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && order.UserID != actor.ID {
		return nil, &errors.ErrForbidden{Message: "access denied"}
	}
	return order, nil
}

// List returns orders visible to the actor: all orders for admins, own
// orders for customers
func (s *OrderService) List(ctx context.Context, actor *domain.User, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	if actor.Role != domain.RoleAdmin {
		filter.UserID = &actor.ID
	}
	return s.repos.Order.List(ctx, filter)
}

// UpdateStatus applies the status/payment/tracking branch of an admin PATCH
func (s *OrderService) UpdateStatus(ctx context.Context, idOrNumber string, actor *domain.User, req StatusUpdateRequest) (*domain.Order, error) {
	order, err := s.Resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status != order.Status {
		if !req.Status.IsValid() {
			return nil, &errors.ErrValidation{Message: "unknown order status"}
		}
		if *req.Status == domain.OrderStatusCancelled {
			return s.cancel(ctx, order, actor, nil)
		}
		if !order.Status.CanTransitionTo(*req.Status) {
			return nil, &errors.ErrInvalidStateTransition{
				From: string(order.Status),
				To:   string(*req.Status),
			}
		}
		s.applyStatus(ctx, order, *req.Status)
	}

	if req.PaymentStatus != nil {
		if !req.PaymentStatus.IsValid() {
			return nil, &errors.ErrValidation{Message: "unknown payment status"}
		}
		order.PaymentStatus = *req.PaymentStatus
	}
	if req.TrackingNumber != nil {
		order.TrackingNumber = req.TrackingNumber
	}
	if req.Carrier != nil {
		order.Carrier = req.Carrier
	}
	if req.CreateShipment && !order.HasShipment() {
		s.createShipment(ctx, order)
	}

	if err := s.repos.Order.Update(ctx, order); err != nil {
		return nil, err
	}
	s.notifyChanged(order)
	return order, nil
}

func (s *OrderService) applyStatus(ctx context.Context, order *domain.Order, status domain.OrderStatus) {
	now := s.now()
	order.Status = status

	switch status {
	case domain.OrderStatusConfirmed:
		if order.ConfirmedAt == nil {
			order.ConfirmedAt = &now
		}
		// One-time confirmation notification; repeated PATCHes never resend.
		if !order.ConfirmationSent {
			order.ConfirmationSent = true
			order.ConfirmationSentAt = &now
			s.logger.Info("Order confirmation notification queued",
				zap.String("orderNumber", order.OrderNumber),
			)
		}
	case domain.OrderStatusShipped:
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
		if !order.HasShipment() {
			s.createShipment(ctx, order)
		}
	case domain.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			order.DeliveredAt = &now
		}
	}
}

// createShipment registers the order with the carrier gateway and stores the
// resulting shipment metadata. The gateway never fails; an unreachable
// carrier yields mock data tagged as such.
func (s *OrderService) createShipment(ctx context.Context, order *domain.Order) {
	items := make([]shiprocket.ParcelItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = shiprocket.ParcelItem{
			Name:     item.Name,
			SKU:      item.ProductID.String(),
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	result := s.gateway.CreateShipment(ctx, shiprocket.ShipmentRequest{
		OrderNumber:    order.OrderNumber,
		CustomerName:   order.Address.Name,
		CustomerPhone:  order.Address.Phone,
		Street:         order.Address.Street,
		City:           order.Address.City,
		State:          order.Address.State,
		DestinationPin: order.Address.Pincode,
		Country:        order.Address.Country,
		Items:          items,
		DeclaredValue:  order.Total,
		CashOnDelivery: order.PaymentStatus == domain.PaymentStatusPending,
		WeightKg:       parcelWeight(order.Items),
	})

	order.ShipmentID = &result.ShipmentID
	order.TrackingNumber = &result.AWB
	order.Carrier = &result.CourierName
	order.ExpectedAt = &result.EstimatedDelivery

	if result.Origin == shiprocket.OriginMock {
		s.logger.Warn("Shipment created from mock carrier data",
			zap.String("orderNumber", order.OrderNumber),
			zap.String("awb", result.AWB),
		)
	}
}

// Edit applies a pre-shipment admin edit: items, address and price fields.
// Forbidden once the order is shipped, delivered, or has a shipment. Stock
// deltas are validated in full before any write, and the whole edit aborts on
// insufficiency.
func (s *OrderService) Edit(ctx context.Context, idOrNumber string, actor *domain.User, req EditOrderRequest) (*domain.Order, error) {
	order, err := s.Resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	if !order.Editable() {
		return nil, &errors.ErrInvalidStateTransition{
			From:   string(order.Status),
			Reason: "order can no longer be edited: shipment exists or order is past shipping",
		}
	}

	var changed []string

	if len(req.Items) > 0 {
		newItems, issues, err := s.buildItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		if len(issues) > 0 {
			return nil, &errors.ErrValidation{Message: "invalid order items", Items: issues}
		}
		if err := s.inventory.Reconcile(ctx, order.Items, newItems); err != nil {
			return nil, err
		}
		order.Items = newItems
		order.Subtotal = subtotalOf(newItems)
		changed = append(changed, "items", "subtotal")
	}
	if req.ShippingAddress != nil {
		order.Address = addressFromPayload(*req.ShippingAddress)
		changed = append(changed, "shippingAddress")
	}
	if req.Shipping != nil {
		order.Shipping = *req.Shipping
		changed = append(changed, "shipping")
	}
	if req.Discount != nil {
		order.Discount = *req.Discount
		changed = append(changed, "discount")
	}

	if len(changed) == 0 {
		return order, nil
	}
	order.RecomputeTotal()

	entry := &domain.AuditEntry{
		OrderID:    order.ID,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		Reason:     req.Reason,
		Fields:     changed,
	}
	if err := s.repos.Order.AppendAudit(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.repos.Order.Update(ctx, order); err != nil {
		return nil, err
	}
	s.notifyChanged(order)
	return order, nil
}

// buildItems validates requested items against the current catalog and prices
// them from it, collecting every issue instead of stopping at the first.
func (s *OrderService) buildItems(ctx context.Context, requested []CheckoutItem) ([]domain.OrderItem, []errors.ItemIssue, error) {
	ids := make([]uuid.UUID, 0, len(requested))
	for _, item := range requested {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, []errors.ItemIssue{{ProductID: item.ProductID, Reason: "invalid product id"}}, nil
		}
		ids = append(ids, id)
	}

	products, err := s.repos.Product.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	var issues []errors.ItemIssue
	items := make([]domain.OrderItem, 0, len(requested))
	for i, req := range requested {
		product, ok := products[ids[i]]
		if !ok {
			issues = append(issues, errors.ItemIssue{ProductID: req.ProductID, Reason: "product not found"})
			continue
		}
		if !product.IsActive {
			issues = append(issues, errors.ItemIssue{ProductID: req.ProductID, Name: product.Name, Reason: "product is unavailable"})
			continue
		}
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  req.Quantity,
			Image:     product.Image,
			Variant:   req.Variant,
		})
	}
	return items, issues, nil
}

// Cancel voids an order from pending or confirmed and restores every line
// item's full quantity to stock
func (s *OrderService) Cancel(ctx context.Context, idOrNumber string, actor *domain.User, reason *string) (*domain.Order, error) {
	order, err := s.Resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && order.UserID != actor.ID {
		return nil, &errors.ErrForbidden{Message: "access denied"}
	}
	return s.cancel(ctx, order, actor, reason)
}

func (s *OrderService) cancel(ctx context.Context, order *domain.Order, actor *domain.User, reason *string) (*domain.Order, error) {
	if !order.Cancellable() {
		return nil, &errors.ErrInvalidStateTransition{
			From:   string(order.Status),
			To:     string(domain.OrderStatusCancelled),
			Reason: "only pending or confirmed orders can be cancelled",
		}
	}

	order.Status = domain.OrderStatusCancelled
	order.CancelReason = reason

	// Full restock: the order is voided, not edited.
	if err := s.inventory.RestockAll(ctx, order.Items); err != nil {
		return nil, err
	}
	if err := s.repos.Order.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled",
		zap.String("orderNumber", order.OrderNumber),
		zap.String("actor", actor.ID.String()),
	)
	s.notifyChanged(order)
	return order, nil
}

// Delete removes an order entirely. Admin data cleanup, not a lifecycle
// transition.
func (s *OrderService) Delete(ctx context.Context, idOrNumber string) error {
	order, err := s.Resolve(ctx, idOrNumber)
	if err != nil {
		return err
	}
	return s.repos.Order.Delete(ctx, order.ID)
}

// Audit returns the order's append-only audit trail
func (s *OrderService) Audit(ctx context.Context, orderID uuid.UUID) ([]*domain.AuditEntry, error) {
	return s.repos.Order.ListAudit(ctx, orderID)
}

func (s *OrderService) notifyChanged(order *domain.Order) {
	s.notifier.OrderChanged(order.ID.String(), order.OrderNumber, string(order.Status), order.UpdatedAt)
}

func subtotalOf(items []domain.OrderItem) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	return subtotal
}

func addressFromPayload(payload AddressPayload) domain.Address {
	country := payload.Country
	if country == "" {
		country = "India"
	}
	return domain.Address{
		Name:    payload.Name,
		Phone:   payload.Phone,
		Street:  payload.Street,
		City:    payload.City,
		State:   payload.State,
		Pincode: payload.Pincode,
		Country: country,
	}
}

// parcelWeight estimates shipment weight at a flat half kilogram per unit.
// The catalog does not carry physical weights.
func parcelWeight(items []domain.OrderItem) float64 {
	units := 0
	for _, item := range items {
		units += item.Quantity
	}
	return 0.5 * float64(units)
}
