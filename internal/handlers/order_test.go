package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/service"
)

func TestCreateOrderHandler(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("buyer", "user")
	tyre := env.createProduct("All-Season 205/55R16", "20.00", 10)

	body := map[string]any{
		"items": []map[string]any{
			{"product_id": tyre.ID, "quantity": 3, "unit_price": "20.00"},
		},
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body)
	env.asUser(c, user)

	require.NoError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	order := decodeBody[models.Order](t, rec)
	require.Equal(t, user.ID, order.UserID)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("60.00")))
	require.Equal(t, models.OrderStatusPending, order.Status)
}

func TestCreateOrderHandlerInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("buyer", "user")
	tyre := env.createProduct("Winter 195/65R15", "80.00", 1)

	body := map[string]any{
		"items": []map[string]any{
			{"product_id": tyre.ID, "quantity": 2, "unit_price": "80.00"},
		},
	}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body)
	env.asUser(c, user)

	err := env.Orders.CreateOrder(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpStatusOf(err))
}

func TestCheckoutHandlerCollection(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("buyer", "user")
	tyre := env.createProduct("Eco 185/65R15", "20.00", 10)

	body := map[string]any{
		"items": []map[string]any{
			{"product_id": tyre.ID, "quantity": 3, "unit_price": "20.00"},
		},
		"payment_method":  "cash_on_collection",
		"delivery_method": "collection",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders/checkout", body)
	env.asUser(c, user)

	require.NoError(t, env.Orders.Checkout(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	order := decodeBody[models.Order](t, rec)
	require.NotNil(t, order.Payment)
	require.Equal(t, models.PaymentCashOnCollection, order.Payment.Method)
	require.NotNil(t, order.Delivery)
	require.Equal(t, service.SelfCollectionCourier, order.Delivery.CourierName)

	var product models.Product
	require.NoError(t, env.DB.First(&product, tyre.ID).Error)
	require.Equal(t, 7, product.StockQuantity)
}

func TestCheckoutHandlerRejectsUnknownMethods(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("buyer", "user")
	tyre := env.createProduct("Budget 175/70R13", "35.00", 5)

	body := map[string]any{
		"items": []map[string]any{
			{"product_id": tyre.ID, "quantity": 1, "unit_price": "35.00"},
		},
		"payment_method":  "credit_card",
		"delivery_method": "collection",
	}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders/checkout", body)
	env.asUser(c, user)

	err := env.Orders.Checkout(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpStatusOf(err))
}

func TestGetOrderHandlerOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("owner", "user")
	stranger := env.createUser("stranger", "user")
	admin := env.createUser("boss", "admin")
	tyre := env.createProduct("Touring 215/60R16", "90.00", 10)

	body := map[string]any{
		"items": []map[string]any{
			{"product_id": tyre.ID, "quantity": 1, "unit_price": "90.00"},
		},
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body)
	env.asUser(c, owner)
	require.NoError(t, env.Orders.CreateOrder(c))
	order := decodeBody[models.Order](t, rec)

	get := func(u *models.User) error {
		_, c := env.doJSONRequest(http.MethodGet, "/api/v1/orders/"+fmt.Sprint(order.ID), nil)
		env.asUser(c, u)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(order.ID))
		return env.Orders.GetOrder(c)
	}

	require.NoError(t, get(owner))
	require.NoError(t, get(admin))

	err := get(stranger)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, httpStatusOf(err))
}

func TestUpdateOrderStatusHandlerConflict(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("buyer", "user")
	tyre := env.createProduct("Sport 225/45R17", "100.00", 10)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{
			{"product_id": tyre.ID, "quantity": 1, "unit_price": "100.00"},
		},
	})
	env.asUser(c, user)
	require.NoError(t, env.Orders.CreateOrder(c))
	order := decodeBody[models.Order](t, rec)

	update := func(status string) (int, error) {
		rec, c := env.doJSONRequest(http.MethodPut,
			"/api/v1/admin/orders/"+fmt.Sprint(order.ID)+"/status",
			map[string]string{"status": status})
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(order.ID))
		err := env.Orders.UpdateOrderStatus(c)
		return rec.Code, err
	}

	// PENDING cannot jump straight to SHIPPED.
	_, err := update("SHIPPED")
	require.Error(t, err)
	require.Equal(t, http.StatusConflict, httpStatusOf(err))

	code, err := update("CONFIRMED")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	_, err = update("NONSENSE")
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpStatusOf(err))
}
