package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
)

type Users struct {
	DB *gorm.DB
}

func (r Users) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r Users) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

func (r Users) ExistsByRole(ctx context.Context, role string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error
	return n > 0, err
}

func (r Users) Create(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r Users) SaveRefreshToken(ctx context.Context, token string, userID uint, expiresAt time.Time) error {
	rt := models.RefreshToken{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return r.DB.WithContext(ctx).Create(&rt).Error
}

func (r Users) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ? AND revoked = ?", token, false).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r Users) RevokeRefreshToken(ctx context.Context, token string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true).Error
}
