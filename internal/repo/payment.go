package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
)

type Payments struct {
	DB *gorm.DB
}

func (r Payments) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.DB.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r Payments) FindByOrderID(ctx context.Context, orderID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r Payments) FindByUser(ctx context.Context, userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&payments).Error
	return payments, err
}

func (r Payments) FindByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.DB.WithContext(ctx).Where("status = ?", status).Find(&payments).Error
	return payments, err
}

func (r Payments) ExistsByOrderID(ctx context.Context, orderID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Payment{}).Where("order_id = ?", orderID).Count(&n).Error
	return n > 0, err
}

func (r Payments) Create(ctx context.Context, payment *models.Payment) error {
	return r.DB.WithContext(ctx).Create(payment).Error
}

func (r Payments) Save(ctx context.Context, payment *models.Payment) error {
	return r.DB.WithContext(ctx).Save(payment).Error
}
