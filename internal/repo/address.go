package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
)

type Addresses struct {
	DB *gorm.DB
}

func (r Addresses) FindByID(ctx context.Context, id uint) (*models.Address, error) {
	var address models.Address
	if err := r.DB.WithContext(ctx).First(&address, id).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r Addresses) FindByUser(ctx context.Context, userID uint) ([]models.Address, error) {
	var addresses []models.Address
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&addresses).Error
	return addresses, err
}

func (r Addresses) ExistsForUser(ctx context.Context, userID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Address{}).Where("user_id = ?", userID).Count(&n).Error
	return n > 0, err
}

func (r Addresses) Create(ctx context.Context, address *models.Address) error {
	return r.DB.WithContext(ctx).Create(address).Error
}

func (r Addresses) Save(ctx context.Context, address *models.Address) error {
	return r.DB.WithContext(ctx).Save(address).Error
}

func (r Addresses) DeleteByID(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Address{}, id).Error
}
