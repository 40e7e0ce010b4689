package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/hash"
	"github.com/ttshop/tyrestore/internal/logging"
	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/repo"
)

// EnsureAdmin creates the administrator account once. It is called
// explicitly from the process entry point and is safe to run on every boot.
func EnsureAdmin(ctx context.Context, db *gorm.DB, username, password string) error {
	l := logging.FromContext(ctx).With("svc", "admin.bootstrap")

	users := repo.Users{DB: db}
	exists, err := users.ExistsByRole(ctx, "admin")
	if err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}
	if exists {
		l.Debug("admin_already_present")
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin bootstrap: ADMIN_PASSWORD is empty and no admin account exists")
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}

	admin := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         "admin",
	}
	if err := users.Create(ctx, &admin); err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}

	l.Info("admin_created", "username", username)
	return nil
}
