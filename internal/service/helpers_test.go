package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Product{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Delivery{},
		&models.Review{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "irrelevant", Role: "user"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	product := models.Product{
		Name:          name,
		Description:   name + " description",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func seedAddress(t *testing.T, db *gorm.DB, userID uint) *models.Address {
	t.Helper()
	address := models.Address{
		UserID:     userID,
		Street:     "12 Main Road",
		City:       "Cape Town",
		PostalCode: "8001",
		Country:    "South Africa",
		Type:       models.AddressTypeHome,
	}
	require.NoError(t, db.Create(&address).Error)
	return &address
}

// seedOrder inserts an order directly, bypassing stock bookkeeping. Tests
// that care about stock effects must go through OrderService.CreateOrder.
func seedOrder(t *testing.T, db *gorm.DB, userID uint, status models.OrderStatus, items ...models.OrderItem) *models.Order {
	t.Helper()
	total := decimal.Zero
	for i := range items {
		items[i].Subtotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		total = total.Add(items[i].Subtotal)
	}
	order := models.Order{
		UserID:      userID,
		Items:       items,
		OrderDate:   time.Now().UTC(),
		Status:      status,
		TotalAmount: total,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, productID).Error)
	return product.StockQuantity
}

func orderStatusOf(t *testing.T, db *gorm.DB, orderID uint) models.OrderStatus {
	t.Helper()
	var order models.Order
	require.NoError(t, db.First(&order, orderID).Error)
	return order.Status
}

func testCtx() context.Context {
	return context.Background()
}
