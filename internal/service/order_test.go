package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ttshop/tyrestore/internal/models"
)

func TestCreateOrderComputesTotalAndDecrementsStock(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "All-Season 205/55R16", "20.00", 10)
	rim := seedProduct(t, db, "Alloy Rim 16", "150.00", 4)

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID: user.ID,
		Items: []OrderItemInput{
			{ProductID: tyre.ID, Quantity: 3, UnitPrice: tyre.Price},
			{ProductID: rim.ID, Quantity: 2, UnitPrice: rim.Price},
		},
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("360.00")),
		"got total %s", order.TotalAmount)
	require.Len(t, order.Items, 2)
	require.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("60.00")))

	require.Equal(t, 7, stockOf(t, db, tyre.ID))
	require.Equal(t, 2, stockOf(t, db, rim.ID))
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "Winter 195/65R15", "80.00", 2)

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 5, UnitPrice: tyre.Price}},
	})
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "available 2, requested 5")

	require.Equal(t, 2, stockOf(t, db, tyre.ID))
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateOrderValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "Budget 175/70R13", "35.00", 10)

	cases := []struct {
		name string
		in   CreateOrderInput
	}{
		{"missing user", CreateOrderInput{
			Items: []OrderItemInput{{ProductID: tyre.ID, Quantity: 1, UnitPrice: tyre.Price}},
		}},
		{"unknown user", CreateOrderInput{
			UserID: 999,
			Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 1, UnitPrice: tyre.Price}},
		}},
		{"no items", CreateOrderInput{UserID: user.ID}},
		{"zero quantity", CreateOrderInput{
			UserID: user.ID,
			Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 0, UnitPrice: tyre.Price}},
		}},
		{"negative price", CreateOrderInput{
			UserID: user.ID,
			Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("-1")}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, tc.in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.CreateOrder(ctx, CreateOrderInput{
			UserID: user.ID,
			Items:  []OrderItemInput{{ProductID: 999, Quantity: 1, UnitPrice: tyre.Price}},
		})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateOrderRejectsMismatchedTotal(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "Sport 225/45R17", "100.00", 10)

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:      user.ID,
		Items:       []OrderItemInput{{ProductID: tyre.ID, Quantity: 2, UnitPrice: tyre.Price}},
		TotalAmount: decimal.RequireFromString("150.00"),
	})
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "does not match")

	// A matching supplied total is accepted.
	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:      user.ID,
		Items:       []OrderItemInput{{ProductID: tyre.ID, Quantity: 2, UnitPrice: tyre.Price}},
		TotalAmount: decimal.RequireFromString("200.00"),
	})
	require.NoError(t, err)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("200.00")))
}

func TestCreateOrderUnknownStatusDefaultsToPending(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "Mud Terrain 265/75R16", "180.00", 6)

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 1, UnitPrice: tyre.Price}},
		Status: "SOMETHING_ELSE",
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)
}

func TestCancelOrderRestoresStockExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "Touring 215/60R16", "90.00", 10)

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 4, UnitPrice: tyre.Price}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, stockOf(t, db, tyre.ID))

	cancelled := models.OrderStatusCancelled
	_, err = svc.UpdateOrder(ctx, order.ID, UpdateOrderInput{Status: &cancelled})
	require.NoError(t, err)
	require.Equal(t, 10, stockOf(t, db, tyre.ID))

	// Cancelling again must not restore a second time.
	_, err = svc.UpdateOrder(ctx, order.ID, UpdateOrderInput{Status: &cancelled})
	require.NoError(t, err)
	require.Equal(t, 10, stockOf(t, db, tyre.ID))

	// Neither must deleting the already cancelled order.
	require.NoError(t, svc.DeleteOrder(ctx, order.ID))
	require.Equal(t, 10, stockOf(t, db, tyre.ID))
}

func TestCreateOrderWriteTimeStockConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "Mud 265/75R16", "90.00", 10)

	// Each line passes the per-item precheck against stock 10 on its own.
	// The first conditional decrement takes 10 down to 4, so the second one
	// matches no rows and the whole transaction must come back.
	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID: user.ID,
		Items: []OrderItemInput{
			{ProductID: tyre.ID, Quantity: 6, UnitPrice: tyre.Price},
			{ProductID: tyre.ID, Quantity: 6, UnitPrice: tyre.Price},
		},
	})
	require.ErrorIs(t, err, ErrConflict)

	require.Equal(t, 10, stockOf(t, db, tyre.ID))

	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	require.Zero(t, orders)
	require.Zero(t, items)
}

func TestCheckoutStockConflictRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "Mud 265/75R16", "90.00", 10)

	_, err := svc.CreateOrderWithPaymentAndDelivery(ctx, CreateOrderInput{
		UserID: user.ID,
		Items: []OrderItemInput{
			{ProductID: tyre.ID, Quantity: 6, UnitPrice: tyre.Price},
			{ProductID: tyre.ID, Quantity: 6, UnitPrice: tyre.Price},
		},
	}, models.PaymentCashOnCollection, models.DeliveryMethodCollection, nil)
	require.ErrorIs(t, err, ErrConflict)

	require.Equal(t, 10, stockOf(t, db, tyre.ID))

	var orders, items, payments, deliveries int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	require.NoError(t, db.Model(&models.Payment{}).Count(&payments).Error)
	require.NoError(t, db.Model(&models.Delivery{}).Count(&deliveries).Error)
	require.Zero(t, orders)
	require.Zero(t, items)
	require.Zero(t, payments)
	require.Zero(t, deliveries)
}

func TestDeleteOrderRestoresStockAndCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "Highway 235/65R17", "120.00", 8)

	order, err := svc.CreateOrderWithPaymentAndDelivery(ctx, CreateOrderInput{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 3, UnitPrice: tyre.Price}},
	}, models.PaymentCashOnCollection, models.DeliveryMethodCollection, nil)
	require.NoError(t, err)
	require.Equal(t, 5, stockOf(t, db, tyre.ID))

	require.NoError(t, svc.DeleteOrder(ctx, order.ID))
	require.Equal(t, 8, stockOf(t, db, tyre.ID))

	var items, payments, deliveries int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items).Error)
	require.NoError(t, db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&payments).Error)
	require.NoError(t, db.Model(&models.Delivery{}).Where("order_id = ?", order.ID).Count(&deliveries).Error)
	require.Zero(t, items)
	require.Zero(t, payments)
	require.Zero(t, deliveries)

	_, err = svc.GetOrderByID(ctx, order.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutCollectionFlow(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	tyre := seedProduct(t, db, "Eco 185/65R15", "20.00", 10)

	order, err := svc.CreateOrderWithPaymentAndDelivery(ctx, CreateOrderInput{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 3, UnitPrice: tyre.Price}},
	}, models.PaymentCashOnDelivery, models.DeliveryMethodCollection, nil)
	require.NoError(t, err)

	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("60.00")))
	require.Equal(t, 7, stockOf(t, db, tyre.ID))

	// Collection orders always pay cash on collection, whatever the caller
	// asked for.
	require.NotNil(t, order.Payment)
	require.Equal(t, models.PaymentCashOnCollection, order.Payment.Method)
	require.Equal(t, models.PaymentStatusPending, order.Payment.Status)
	require.True(t, order.Payment.Amount.Equal(order.TotalAmount))

	require.NotNil(t, order.Delivery)
	require.Equal(t, models.DeliveryMethodCollection, order.Delivery.Method)
	require.Equal(t, models.DeliveryStatusPending, order.Delivery.Status)
	require.Equal(t, SelfCollectionCourier, order.Delivery.CourierName)
	require.Nil(t, order.Delivery.AddressID)

	deliveries := &DeliveryService{DB: db}
	_, err = deliveries.UpdateDeliveryStatus(ctx, order.Delivery.ID, models.DeliveryStatusCollected)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCompleted, orderStatusOf(t, db, order.ID))
}

func TestCheckoutDeliveryFlow(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	address := seedAddress(t, db, user.ID)
	tyre := seedProduct(t, db, "Runflat 225/50R17", "140.00", 5)

	order, err := svc.CreateOrderWithPaymentAndDelivery(ctx, CreateOrderInput{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 2, UnitPrice: tyre.Price}},
	}, models.PaymentCashOnDelivery, models.DeliveryMethodDelivery, &address.ID)
	require.NoError(t, err)

	require.Equal(t, models.PaymentCashOnDelivery, order.Payment.Method)
	require.Equal(t, models.DeliveryMethodDelivery, order.Delivery.Method)
	require.NotNil(t, order.Delivery.AddressID)
	require.Equal(t, address.ID, *order.Delivery.AddressID)
	require.NotEqual(t, SelfCollectionCourier, order.Delivery.CourierName)
	require.NotEmpty(t, order.Delivery.CourierName)
}

func TestCheckoutDeliveryRequiresOwnedAddress(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	other := seedUser(t, db, "somebody_else")
	foreign := seedAddress(t, db, other.ID)
	tyre := seedProduct(t, db, "Trailer 155/70R12", "45.00", 5)

	in := CreateOrderInput{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: tyre.ID, Quantity: 1, UnitPrice: tyre.Price}},
	}

	_, err := svc.CreateOrderWithPaymentAndDelivery(ctx, in,
		models.PaymentCashOnDelivery, models.DeliveryMethodDelivery, nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateOrderWithPaymentAndDelivery(ctx, in,
		models.PaymentCashOnDelivery, models.DeliveryMethodDelivery, &foreign.ID)
	require.ErrorIs(t, err, ErrValidation)

	// Validation happens before any writes.
	require.Equal(t, 5, stockOf(t, db, tyre.ID))
	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}

func TestVerifyAddressOwnership(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &OrderService{DB: db}

	user := seedUser(t, db, "buyer")
	other := seedUser(t, db, "somebody_else")
	address := seedAddress(t, db, user.ID)

	owned, err := svc.VerifyAddressOwnership(ctx, address.ID, user.ID)
	require.NoError(t, err)
	require.True(t, owned)

	owned, err = svc.VerifyAddressOwnership(ctx, address.ID, other.ID)
	require.NoError(t, err)
	require.False(t, owned)

	owned, err = svc.VerifyAddressOwnership(ctx, 999, user.ID)
	require.NoError(t, err)
	require.False(t, owned)
}
