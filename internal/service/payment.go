package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/logging"
	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/repo"
)

// PaymentService manages the cash payment record attached 1:1 to an order.
type PaymentService struct {
	DB *gorm.DB
}

func (s *PaymentService) CreateCashOnDeliveryPayment(ctx context.Context, orderID, userID uint) (*models.Payment, error) {
	return s.createPayment(ctx, orderID, userID, models.PaymentCashOnDelivery)
}

func (s *PaymentService) CreateCashOnCollectionPayment(ctx context.Context, orderID, userID uint) (*models.Payment, error) {
	return s.createPayment(ctx, orderID, userID, models.PaymentCashOnCollection)
}

func (s *PaymentService) createPayment(ctx context.Context, orderID, userID uint, method models.PaymentMethod) (*models.Payment, error) {
	l := logging.FromContext(ctx).With("svc", "payment.create", "order_id", orderID, "method", method)

	order, err := (repo.Orders{DB: s.DB}).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %d does not belong to user %d", ErrValidation, orderID, userID)
	}

	payments := repo.Payments{DB: s.DB}
	exists, err := payments.ExistsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: payment already exists for order %d", ErrValidation, orderID)
	}

	payment := models.Payment{
		OrderID:     orderID,
		UserID:      order.UserID,
		Method:      method,
		Status:      models.PaymentStatusPending,
		Amount:      order.TotalAmount,
		PaymentDate: time.Now().UTC(),
	}
	if err := payments.Create(ctx, &payment); err != nil {
		// The unique index on order_id is the backstop for the
		// check-then-act race above.
		return nil, fmt.Errorf("%w: payment for order %d: %v", ErrConflict, orderID, err)
	}

	l.Info("payment_created", "payment_id", payment.ID, "amount", payment.Amount)
	return &payment, nil
}

// UpdatePaymentStatus replaces the payment status and forwards the change to
// the order status machine.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, paymentID uint, newStatus models.PaymentStatus) (*models.Payment, error) {
	l := logging.FromContext(ctx).With("svc", "payment.update_status", "payment_id", paymentID)

	payments := repo.Payments{DB: s.DB}
	payment, err := payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment %d", ErrNotFound, paymentID)
		}
		return nil, err
	}

	payment.Status = newStatus
	if err := payments.Save(ctx, payment); err != nil {
		return nil, err
	}
	l.Info("payment_status_updated", "order_id", payment.OrderID, "status", newStatus)

	status := &OrderStatusService{DB: s.DB}
	if err := status.UpdateOrderStatusFromPayment(ctx, payment.OrderID, newStatus); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) FindPaymentByOrderID(ctx context.Context, orderID uint) (*models.Payment, error) {
	payment, err := (repo.Payments{DB: s.DB}).FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment for order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) FindPaymentsByUser(ctx context.Context, userID uint) ([]models.Payment, error) {
	return repo.Payments{DB: s.DB}.FindByUser(ctx, userID)
}

func (s *PaymentService) FindPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return repo.Payments{DB: s.DB}.FindByStatus(ctx, status)
}
