package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/logging"
	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/repo"
)

// OrderService orchestrates order creation, status mutation, cancellation
// and the composite checkout flow that ties payments and deliveries in.
type OrderService struct {
	DB *gorm.DB
}

type OrderItemInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateOrderInput struct {
	UserID      uint             `json:"user_id"`
	Items       []OrderItemInput `json:"items"`
	Status      string           `json:"status,omitempty"`
	TotalAmount decimal.Decimal  `json:"total_amount,omitempty"`
}

// CreateOrder validates the request against the catalog, persists the order
// with its items and decrements stock, all in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", in.UserID)

	if in.UserID == 0 {
		return nil, fmt.Errorf("%w: user id required", ErrValidation)
	}
	if _, err := (repo.Users{DB: s.DB}).FindByID(ctx, in.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d not found", ErrValidation, in.UserID)
		}
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}

	products := repo.Products{DB: s.DB}
	items := make([]models.OrderItem, 0, len(in.Items))
	calculatedTotal := decimal.Zero
	for i, it := range in.Items {
		if it.ProductID == 0 {
			return nil, fmt.Errorf("%w: item %d is missing product id", ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d must have a positive quantity", ErrValidation, i)
		}
		if it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: item %d must have a valid positive price", ErrValidation, i)
		}

		product, err := products.FindByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
			}
			return nil, err
		}
		if product.StockQuantity < it.Quantity {
			return nil, fmt.Errorf("%w: insufficient stock for product %q: available %d, requested %d",
				ErrValidation, product.Name, product.StockQuantity, it.Quantity)
		}

		subtotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  subtotal,
		})
		calculatedTotal = calculatedTotal.Add(subtotal)
	}

	// The computed total is authoritative. A caller-supplied total may only
	// confirm it, never override it.
	if in.TotalAmount.IsPositive() && !in.TotalAmount.Equal(calculatedTotal) {
		return nil, fmt.Errorf("%w: supplied total %s does not match calculated total %s",
			ErrValidation, in.TotalAmount, calculatedTotal)
	}

	status := models.OrderStatusPending
	if in.Status != "" {
		parsed, err := models.ParseOrderStatus(in.Status)
		if err != nil {
			l.Warn("invalid_order_status_defaulted", "requested", in.Status)
		} else {
			status = parsed
		}
	}

	order := models.Order{
		UserID:      in.UserID,
		Items:       items,
		OrderDate:   time.Now().UTC(),
		Status:      status,
		TotalAmount: calculatedTotal,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := (repo.Orders{DB: tx}).Create(ctx, &order); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := decrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order for user %d: %w", in.UserID, err)
	}

	l.Info("order_created", "order_id", order.ID, "total", order.TotalAmount, "items", len(order.Items))
	return &order, nil
}

type UpdateOrderInput struct {
	Status      *models.OrderStatus
	TotalAmount *decimal.Decimal
}

// UpdateOrder applies a partial update. A transition into CANCELLED restores
// stock first. No transition-table validation happens here; callers that
// need the state machine go through OrderStatusService.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uint, patch UpdateOrderInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update", "order_id", orderID)

	order, err := (repo.Orders{DB: s.DB}).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if patch.Status != nil &&
			*patch.Status == models.OrderStatusCancelled &&
			order.Status != models.OrderStatusCancelled {
			if err := s.restoreStockQuantities(ctx, tx, order); err != nil {
				return err
			}
			l.Info("order_cancelled_stock_restored")
		}

		if patch.Status != nil {
			order.Status = *patch.Status
		}
		if patch.TotalAmount != nil {
			order.TotalAmount = *patch.TotalAmount
		}
		return (repo.Orders{DB: tx}).UpdateFields(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder restores stock and removes the order with everything it owns.
// An already cancelled order restored its stock at cancellation time, so
// deletion must not restore again.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uint) error {
	l := logging.FromContext(ctx).With("svc", "order.delete", "order_id", orderID)

	order, err := (repo.Orders{DB: s.DB}).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.Status != models.OrderStatusCancelled {
			if err := s.restoreStockQuantities(ctx, tx, order); err != nil {
				return err
			}
		}
		return (repo.Orders{DB: tx}).DeleteByID(ctx, orderID)
	})
	if err != nil {
		return err
	}
	l.Info("order_deleted")
	return nil
}

func (s *OrderService) restoreStockQuantities(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	for _, item := range order.Items {
		if err := restoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// CreateOrderWithPaymentAndDelivery is the composite checkout flow: order,
// payment and delivery are created inside one transaction, so a failure in
// any sub-creation rolls everything back.
func (s *OrderService) CreateOrderWithPaymentAndDelivery(ctx context.Context, in CreateOrderInput, paymentMethod models.PaymentMethod, deliveryMethod models.DeliveryMethod, addressID *uint) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", in.UserID)

	if err := s.ValidateOrderCreationRequest(ctx, in, paymentMethod, deliveryMethod, addressID); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = (&OrderService{DB: tx}).CreateOrder(ctx, in)
		if err != nil {
			return err
		}

		payments := &PaymentService{DB: tx}
		deliveries := &DeliveryService{DB: tx}

		// Idempotency guard: a re-entrant call, or orphaned records from a
		// prior partial failure, must not produce duplicates.
		if order.Payment == nil {
			if existing, err := (repo.Payments{DB: tx}).FindByOrderID(ctx, order.ID); err == nil {
				order.Payment = existing
				l.Warn("checkout_reusing_existing_payment", "order_id", order.ID, "payment_id", existing.ID)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if order.Payment == nil {
			var payment *models.Payment
			var err error
			if deliveryMethod == models.DeliveryMethodCollection {
				payment, err = payments.CreateCashOnCollectionPayment(ctx, order.ID, order.UserID)
			} else {
				payment, err = payments.CreateCashOnDeliveryPayment(ctx, order.ID, order.UserID)
			}
			if err != nil {
				return fmt.Errorf("create payment for order %d: %w", order.ID, err)
			}
			order.Payment = payment
		}

		if order.Delivery == nil {
			if existing, err := (repo.Deliveries{DB: tx}).FindByOrderID(ctx, order.ID); err == nil {
				order.Delivery = existing
				l.Warn("checkout_reusing_existing_delivery", "order_id", order.ID, "delivery_id", existing.ID)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if order.Delivery == nil {
			delivery, err := deliveries.CreateDeliveryForOrder(ctx, order.ID, order.UserID, deliveryMethod, addressID)
			if err != nil {
				return fmt.Errorf("create delivery for order %d: %w", order.ID, err)
			}
			order.Delivery = delivery
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info("order_checkout_complete", "order_id", order.ID,
		"payment_id", order.Payment.ID, "delivery_id", order.Delivery.ID)
	return order, nil
}

// ValidateOrderCreationRequest checks the checkout-specific preconditions
// before any writes happen.
func (s *OrderService) ValidateOrderCreationRequest(ctx context.Context, in CreateOrderInput, paymentMethod models.PaymentMethod, deliveryMethod models.DeliveryMethod, addressID *uint) error {
	if paymentMethod == "" {
		return fmt.Errorf("%w: payment method is required", ErrValidation)
	}
	if deliveryMethod == "" {
		return fmt.Errorf("%w: delivery method is required", ErrValidation)
	}

	if deliveryMethod == models.DeliveryMethodDelivery {
		if addressID == nil {
			return fmt.Errorf("%w: address is required for delivery method", ErrValidation)
		}
		address, err := (repo.Addresses{DB: s.DB}).FindByID(ctx, *addressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: address %d not found", ErrValidation, *addressID)
			}
			return err
		}
		if address.UserID != in.UserID {
			return fmt.Errorf("%w: address %d does not belong to user %d", ErrValidation, *addressID, in.UserID)
		}
	}
	return nil
}

// VerifyAddressOwnership is a pure lookup used for authorization checks;
// a missing address yields false rather than an error.
func (s *OrderService) VerifyAddressOwnership(ctx context.Context, addressID, userID uint) (bool, error) {
	address, err := (repo.Addresses{DB: s.DB}).FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return address.UserID == userID, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := (repo.Orders{DB: s.DB}).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return repo.Orders{DB: s.DB}.FindByUser(ctx, userID)
}

func (s *OrderService) GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return repo.Orders{DB: s.DB}.FindByStatus(ctx, status)
}

func (s *OrderService) GetAllOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return repo.Orders{DB: s.DB}.FindAll(ctx, limit, offset)
}
