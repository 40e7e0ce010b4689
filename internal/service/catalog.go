package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/logging"
	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/repo"
)

// ProductService is the catalog collaborator: lookups plus the stock
// mutations the order workflow performs as side effects.
type ProductService struct {
	DB *gorm.DB
}

type ProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := repo.Products{DB: s.DB}.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, limit, offset int) ([]models.Product, int64, error) {
	return repo.Products{DB: s.DB}.List(ctx, limit, offset)
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if in.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity must be >= 0", ErrValidation)
	}

	product := models.Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
	}
	if err := (repo.Products{DB: s.DB}).Create(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

type ProductPatch struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
}

func (s *ProductService) PatchProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
		}
		product.Price = *patch.Price
	}
	if patch.StockQuantity != nil {
		if *patch.StockQuantity < 0 {
			return nil, fmt.Errorf("%w: stock quantity must be >= 0", ErrValidation)
		}
		product.StockQuantity = *patch.StockQuantity
	}

	if err := (repo.Products{DB: s.DB}).Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	r := repo.Products{DB: s.DB}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return r.DeleteByID(ctx, id)
}

func (s *ProductService) SetStockQuantity(ctx context.Context, id uint, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity must be >= 0", ErrValidation)
	}
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := (repo.Products{DB: s.DB}).SetStock(ctx, id, quantity); err != nil {
		return nil, err
	}
	product.StockQuantity = quantity
	return product, nil
}

// decrementStock reserves quantity units or fails without changing anything.
// A rejected write against an existing product means a concurrent order won
// the race between the stock check and this write.
func decrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	r := repo.Products{DB: tx}
	rows, err := r.DecrementStock(ctx, productID, quantity)
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.FindByID(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d vanished during stock reduction", ErrIntegrity, productID)
			}
			return err
		}
		return fmt.Errorf("%w: stock changed for product %d, retry the order", ErrConflict, productID)
	}
	return nil
}

// restoreStock is best-effort: a product deleted out-of-band is logged and
// skipped rather than aborting the whole cancellation.
func restoreStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	rows, err := (repo.Products{DB: tx}).IncrementStock(ctx, productID, quantity)
	if err != nil {
		return err
	}
	if rows == 0 {
		logging.FromContext(ctx).Warn("restore_stock_skipped",
			"reason", "product no longer exists", "product_id", productID, "quantity", quantity)
	}
	return nil
}
