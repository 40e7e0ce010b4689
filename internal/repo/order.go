package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
)

type Orders struct {
	DB *gorm.DB
}

// FindByID loads the order together with its items, payment and delivery.
func (r Orders) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Preload("Delivery").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r Orders) FindByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

func (r Orders) FindByUserAndStatus(ctx context.Context, userID uint, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status = ?", userID, status).
		Find(&orders).Error
	return orders, err
}

func (r Orders) FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("status = ?", status).
		Find(&orders).Error
	return orders, err
}

func (r Orders) FindAll(ctx context.Context, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Order("order_date DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	return orders, err
}

func (r Orders) Create(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

// UpdateFields writes status and total only, leaving owned associations
// untouched.
func (r Orders) UpdateFields(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":       order.Status,
			"total_amount": order.TotalAmount,
		}).Error
}

func (r Orders) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// DeleteByID removes the order and everything it owns. The cascade is done
// explicitly so behavior is identical on postgres and the sqlite test driver.
func (r Orders) DeleteByID(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.Delivery{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
}
