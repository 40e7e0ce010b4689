package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
)

type Reviews struct {
	DB *gorm.DB
}

func (r Reviews) FindByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.DB.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r Reviews) FindByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Find(&reviews).Error
	return reviews, err
}

func (r Reviews) FindByUser(ctx context.Context, userID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&reviews).Error
	return reviews, err
}

func (r Reviews) ExistsByOrderAndProduct(ctx context.Context, orderID, productID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&n).Error
	return n > 0, err
}

func (r Reviews) ExistsByUserAndProduct(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	return n > 0, err
}

func (r Reviews) Create(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).Create(review).Error
}

func (r Reviews) DeleteByID(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Review{}, id).Error
}
