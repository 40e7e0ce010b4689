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

// ReviewService gates product reviews on completed purchases. It reads order
// state, never mutates it.
type ReviewService struct {
	DB *gorm.DB
}

type ReviewInput struct {
	OrderID   uint   `json:"order_id"`
	ProductID uint   `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (s *ReviewService) CreateReview(ctx context.Context, userID uint, in ReviewInput) (*models.Review, error) {
	l := logging.FromContext(ctx).With("svc", "review.create", "user_id", userID, "order_id", in.OrderID)

	order, err := (repo.Orders{DB: s.DB}).FindByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, in.OrderID)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: you can only review your own orders", ErrValidation)
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: you can only review products from completed orders", ErrValidation)
	}

	inOrder := false
	for _, item := range order.Items {
		if item.ProductID == in.ProductID {
			inOrder = true
			break
		}
	}
	if !inOrder {
		return nil, fmt.Errorf("%w: product %d is not in order %d", ErrValidation, in.ProductID, in.OrderID)
	}

	reviews := repo.Reviews{DB: s.DB}
	reviewed, err := reviews.ExistsByOrderAndProduct(ctx, in.OrderID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, fmt.Errorf("%w: product %d from order %d is already reviewed", ErrValidation, in.ProductID, in.OrderID)
	}

	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	if _, err := (repo.Products{DB: s.DB}).FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, in.ProductID)
		}
		return nil, err
	}

	user, err := (repo.Users{DB: s.DB}).FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	review := models.Review{
		ProductID:    in.ProductID,
		UserID:       userID,
		OrderID:      in.OrderID,
		ReviewerName: user.Username,
		Comment:      in.Comment,
		Rating:       in.Rating,
		ReviewDate:   time.Now().UTC(),
	}
	if err := reviews.Create(ctx, &review); err != nil {
		return nil, fmt.Errorf("%w: review for order %d product %d: %v", ErrConflict, in.OrderID, in.ProductID, err)
	}

	l.Info("review_created", "review_id", review.ID, "product_id", in.ProductID, "rating", in.Rating)
	return &review, nil
}

// CanUserReviewProduct is true when the product appears in a COMPLETED order
// of the user that has not been reviewed yet for that specific order.
func (s *ReviewService) CanUserReviewProduct(ctx context.Context, userID, productID uint) (bool, error) {
	completed, err := (repo.Orders{DB: s.DB}).FindByUserAndStatus(ctx, userID, models.OrderStatusCompleted)
	if err != nil {
		return false, err
	}

	// A user with no review of the product at all is eligible as soon as one
	// completed order contains it. The per-order lookup only matters after
	// a first review exists.
	reviews := repo.Reviews{DB: s.DB}
	reviewedAny, err := reviews.ExistsByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return false, err
	}

	for _, order := range completed {
		for _, item := range order.Items {
			if item.ProductID != productID {
				continue
			}
			if !reviewedAny {
				return true, nil
			}
			reviewed, err := reviews.ExistsByOrderAndProduct(ctx, order.ID, productID)
			if err != nil {
				return false, err
			}
			if !reviewed {
				return true, nil
			}
		}
	}
	return false, nil
}

// ReviewableProductsForOrder lists products from the order that still lack
// a review, skipping products deleted from the catalog.
func (s *ReviewService) ReviewableProductsForOrder(ctx context.Context, orderID uint) ([]models.Product, error) {
	order, err := (repo.Orders{DB: s.DB}).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	products := repo.Products{DB: s.DB}
	reviews := repo.Reviews{DB: s.DB}

	var out []models.Product
	seen := map[uint]bool{}
	for _, item := range order.Items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true

		reviewed, err := reviews.ExistsByOrderAndProduct(ctx, orderID, item.ProductID)
		if err != nil {
			return nil, err
		}
		if reviewed {
			continue
		}

		product, err := products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logging.FromContext(ctx).Warn("reviewable_product_missing",
					"order_id", orderID, "product_id", item.ProductID)
				continue
			}
			return nil, err
		}
		out = append(out, *product)
	}
	return out, nil
}

func (s *ReviewService) GetReviewsByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	return repo.Reviews{DB: s.DB}.FindByProduct(ctx, productID)
}

func (s *ReviewService) GetReviewsByUser(ctx context.Context, userID uint) ([]models.Review, error) {
	return repo.Reviews{DB: s.DB}.FindByUser(ctx, userID)
}

func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, userID uint, isAdmin bool) error {
	reviews := repo.Reviews{DB: s.DB}
	review, err := reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		return err
	}
	if !isAdmin && review.UserID != userID {
		return fmt.Errorf("%w: you can only delete your own reviews", ErrValidation)
	}
	return reviews.DeleteByID(ctx, reviewID)
}
