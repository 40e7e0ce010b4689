package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/logging"
	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/repo"
)

// OrderStatusService owns the order status machine and the reaction paths
// from payment and delivery state into order state.
type OrderStatusService struct {
	DB *gorm.DB
}

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusCompleted, models.OrderStatusCancelled},
	models.OrderStatusCompleted:  {},
	models.OrderStatusCancelled:  {},
}

// ValidTransition reports whether from -> to is allowed. Self-transitions
// are always accepted as idempotent no-ops.
func ValidTransition(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateOrderStatus applies newStatus if the transition table allows it.
// An invalid transition returns (false, nil); callers that need a hard
// failure must check the boolean.
func (s *OrderStatusService) UpdateOrderStatus(ctx context.Context, orderID uint, newStatus models.OrderStatus) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "status.update_order_status", "order_id", orderID)

	orders := repo.Orders{DB: s.DB}
	order, err := orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return false, err
	}

	if !ValidTransition(order.Status, newStatus) {
		l.Warn("invalid_status_transition", "from", order.Status, "to", newStatus)
		return false, nil
	}

	if err := orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return false, err
	}
	l.Info("order_status_updated", "from", order.Status, "to", newStatus)
	return true, nil
}

// UpdateOrderStatusFromDelivery completes the order when its delivery
// reaches DELIVERED or COLLECTED. Delivery completion is the authoritative
// completion signal, so the SHIPPED precondition is deliberately bypassed.
func (s *OrderStatusService) UpdateOrderStatusFromDelivery(ctx context.Context, orderID uint, deliveryStatus models.DeliveryStatus) error {
	if !deliveryStatus.Completed() {
		return nil
	}

	l := logging.FromContext(ctx).With("svc", "status.from_delivery", "order_id", orderID)

	orders := repo.Orders{DB: s.DB}
	order, err := orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return err
	}

	if order.Status.Terminal() {
		l.Debug("order_status_unchanged", "current", order.Status, "delivery_status", deliveryStatus)
		return nil
	}

	if err := orders.UpdateStatus(ctx, orderID, models.OrderStatusCompleted); err != nil {
		return err
	}
	l.Info("order_completed_by_delivery", "from", order.Status, "delivery_status", deliveryStatus)
	return nil
}

// UpdateOrderStatusFromPayment confirms a PENDING order once its payment is
// confirmed or completed.
func (s *OrderStatusService) UpdateOrderStatusFromPayment(ctx context.Context, orderID uint, paymentStatus models.PaymentStatus) error {
	confirmed := paymentStatus == models.PaymentStatusConfirmed || paymentStatus == models.PaymentStatusCompleted
	if !confirmed {
		return nil
	}

	l := logging.FromContext(ctx).With("svc", "status.from_payment", "order_id", orderID)

	orders := repo.Orders{DB: s.DB}
	order, err := orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return err
	}

	if order.Status != models.OrderStatusPending {
		l.Debug("order_status_unchanged", "current", order.Status, "payment_status", paymentStatus)
		return nil
	}

	if err := orders.UpdateStatus(ctx, orderID, models.OrderStatusConfirmed); err != nil {
		return err
	}
	l.Info("order_confirmed_by_payment", "payment_status", paymentStatus)
	return nil
}

func (s *OrderStatusService) GetOrderStatus(ctx context.Context, orderID uint) (models.OrderStatus, error) {
	order, err := (repo.Orders{DB: s.DB}).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return "", err
	}
	return order.Status, nil
}

// CanOrderBeReviewed is true only for COMPLETED orders.
func (s *OrderStatusService) CanOrderBeReviewed(ctx context.Context, orderID uint) bool {
	status, err := s.GetOrderStatus(ctx, orderID)
	if err != nil {
		return false
	}
	return status == models.OrderStatusCompleted
}
