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

// SelfCollectionCourier marks collection orders, which no courier handles.
const SelfCollectionCourier = "Self Collection"

const (
	deliveryLeadWorkingDays   = 3
	collectionLeadWorkingDays = 2
)

var courierRoster = []string{
	"FastTrack Express",
	"TyreDirect Courier",
	"SpeedyWheels Delivery",
	"RoadRunner Express",
	"Swift Logistics",
	"TurboTyre Delivery",
	"QuickShip Couriers",
}

// DeliveryService manages the delivery record attached 1:1 to an order.
type DeliveryService struct {
	DB *gorm.DB
}

func (s *DeliveryService) CreateDeliveryForOrder(ctx context.Context, orderID, userID uint, method models.DeliveryMethod, addressID *uint) (*models.Delivery, error) {
	l := logging.FromContext(ctx).With("svc", "delivery.create", "order_id", orderID, "method", method)

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

	deliveries := repo.Deliveries{DB: s.DB}
	exists, err := deliveries.ExistsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: delivery already exists for order %d", ErrValidation, orderID)
	}

	delivery := models.Delivery{
		OrderID: orderID,
		Method:  method,
		Status:  models.DeliveryStatusPending,
	}

	switch method {
	case models.DeliveryMethodDelivery:
		if addressID == nil {
			return nil, fmt.Errorf("%w: address is required for delivery method", ErrValidation)
		}
		address, err := (repo.Addresses{DB: s.DB}).FindByID(ctx, *addressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: address %d", ErrNotFound, *addressID)
			}
			return nil, err
		}
		if address.UserID != userID {
			return nil, fmt.Errorf("%w: address %d does not belong to user %d", ErrValidation, *addressID, userID)
		}
		delivery.AddressID = addressID
		delivery.EstimatedDate = AddWorkingDays(order.OrderDate, deliveryLeadWorkingDays)
		delivery.CourierName = assignCourier()
	case models.DeliveryMethodCollection:
		delivery.EstimatedDate = AddWorkingDays(order.OrderDate, collectionLeadWorkingDays)
		delivery.CourierName = SelfCollectionCourier
	default:
		return nil, fmt.Errorf("%w: delivery method is required", ErrValidation)
	}

	if err := deliveries.Create(ctx, &delivery); err != nil {
		return nil, fmt.Errorf("%w: delivery for order %d: %v", ErrConflict, orderID, err)
	}

	l.Info("delivery_created", "delivery_id", delivery.ID, "courier", delivery.CourierName,
		"estimated_date", delivery.EstimatedDate)
	return &delivery, nil
}

// UpdateDeliveryStatus persists the new status and, on DELIVERED/COLLECTED,
// stamps the actual date and completes the owning order. This is the sole
// trigger path from delivery state into order state.
func (s *DeliveryService) UpdateDeliveryStatus(ctx context.Context, deliveryID uint, newStatus models.DeliveryStatus) (*models.Delivery, error) {
	l := logging.FromContext(ctx).With("svc", "delivery.update_status", "delivery_id", deliveryID)

	deliveries := repo.Deliveries{DB: s.DB}
	delivery, err := deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: delivery %d", ErrNotFound, deliveryID)
		}
		return nil, err
	}

	delivery.Status = newStatus
	if newStatus.Completed() {
		now := time.Now().UTC()
		delivery.ActualDate = &now
	}
	if err := deliveries.Save(ctx, delivery); err != nil {
		return nil, err
	}
	l.Info("delivery_status_updated", "order_id", delivery.OrderID, "status", newStatus)

	status := &OrderStatusService{DB: s.DB}
	if err := status.UpdateOrderStatusFromDelivery(ctx, delivery.OrderID, newStatus); err != nil {
		return nil, err
	}
	return delivery, nil
}

func (s *DeliveryService) UpdateCourierInfo(ctx context.Context, deliveryID uint, courierName string) (*models.Delivery, error) {
	deliveries := repo.Deliveries{DB: s.DB}
	delivery, err := deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: delivery %d", ErrNotFound, deliveryID)
		}
		return nil, err
	}

	delivery.CourierName = courierName
	if err := deliveries.Save(ctx, delivery); err != nil {
		return nil, err
	}
	return delivery, nil
}

func (s *DeliveryService) FindByOrderID(ctx context.Context, orderID uint) (*models.Delivery, error) {
	delivery, err := (repo.Deliveries{DB: s.DB}).FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: delivery for order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return delivery, nil
}

func (s *DeliveryService) FindDeliveriesByStatus(ctx context.Context, status models.DeliveryStatus) ([]models.Delivery, error) {
	return (repo.Deliveries{DB: s.DB}).FindByStatus(ctx, status)
}

func (s *DeliveryService) IsDeliveryCompleted(ctx context.Context, deliveryID uint) bool {
	delivery, err := (repo.Deliveries{DB: s.DB}).FindByID(ctx, deliveryID)
	if err != nil {
		return false
	}
	return delivery.Status.Completed()
}

func (s *DeliveryService) IsReadyForCollection(ctx context.Context, deliveryID uint) bool {
	delivery, err := (repo.Deliveries{DB: s.DB}).FindByID(ctx, deliveryID)
	if err != nil {
		return false
	}
	return delivery.Method == models.DeliveryMethodCollection &&
		delivery.Status == models.DeliveryStatusReadyForCollection
}

// assignCourier spreads load across the roster; the selection does not need
// to be random beyond "not always the same name".
func assignCourier() string {
	return courierRoster[time.Now().UnixMilli()%int64(len(courierRoster))]
}

// AddWorkingDays walks forward one calendar day at a time, counting only
// Monday through Friday, until workingDays have been counted.
func AddWorkingDays(start time.Time, workingDays int) time.Time {
	current := start
	counted := 0
	for counted < workingDays {
		current = current.AddDate(0, 0, 1)
		if wd := current.Weekday(); wd != time.Saturday && wd != time.Sunday {
			counted++
		}
	}
	return current
}
