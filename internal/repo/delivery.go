package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
)

type Deliveries struct {
	DB *gorm.DB
}

func (r Deliveries) FindByID(ctx context.Context, id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.DB.WithContext(ctx).First(&delivery, id).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r Deliveries) FindByOrderID(ctx context.Context, orderID uint) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&delivery).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r Deliveries) FindByStatus(ctx context.Context, status models.DeliveryStatus) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.DB.WithContext(ctx).Where("status = ?", status).Find(&deliveries).Error
	return deliveries, err
}

func (r Deliveries) ExistsByOrderID(ctx context.Context, orderID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Delivery{}).Where("order_id = ?", orderID).Count(&n).Error
	return n > 0, err
}

func (r Deliveries) Create(ctx context.Context, delivery *models.Delivery) error {
	return r.DB.WithContext(ctx).Create(delivery).Error
}

func (r Deliveries) Save(ctx context.Context, delivery *models.Delivery) error {
	return r.DB.WithContext(ctx).Save(delivery).Error
}
