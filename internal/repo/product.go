package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
)

type Products struct {
	DB *gorm.DB
}

func (r Products) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r Products) List(ctx context.Context, limit, offset int) ([]models.Product, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&items).Error
	return items, total, err
}

func (r Products) Create(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

func (r Products) Save(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Save(product).Error
}

func (r Products) DeleteByID(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Product{}, id).Error
}

func (r Products) SetStock(ctx context.Context, id uint, quantity int) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", quantity).Error
}

// DecrementStock is a conditional write: it only succeeds when enough stock
// remains, so two concurrent orders cannot both take the last units.
// Returns the number of rows touched (0 means the guard rejected the write).
func (r Products) DecrementStock(ctx context.Context, id uint, quantity int) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	return res.RowsAffected, res.Error
}

func (r Products) IncrementStock(ctx context.Context, id uint, quantity int) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	return res.RowsAffected, res.Error
}
