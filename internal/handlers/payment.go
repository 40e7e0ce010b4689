package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ttshop/tyrestore/internal/events"
	"github.com/ttshop/tyrestore/internal/logging"
	authmw "github.com/ttshop/tyrestore/internal/middleware/auth"
	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/service"
)

type PaymentHandler struct {
	Payments *service.PaymentService
	Orders   *service.OrderService
	Producer *events.Producer
}

type createPaymentRequest struct {
	Method string `json:"method"`
}

// CreatePayment records a cash payment against an existing order. Only one
// payment per order is allowed.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	method, err := models.ParsePaymentMethod(req.Method)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var payment *models.Payment
	switch method {
	case models.PaymentCashOnCollection:
		payment, err = h.Payments.CreateCashOnCollectionPayment(ctx, orderID, userID)
	default:
		payment, err = h.Payments.CreateCashOnDeliveryPayment(ctx, orderID, userID)
	}
	if err != nil {
		l.Warn("create_payment_error", "order_id", orderID, "error", err)
		return respondError(err)
	}

	publish(c, h.Producer, events.TopicPayments, fmt.Sprint(orderID), map[string]any{
		"type":       "payment_created",
		"payment_id": payment.ID,
		"order_id":   orderID,
		"method":     method,
	})
	return c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) GetOrderPayment(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return respondError(err)
	}
	if order.UserID != userID && !authmw.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "not your order")
	}

	payment, err := h.Payments.FindPaymentByOrderID(ctx, orderID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) ListMyPayments(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	payments, err := h.Payments.FindPaymentsByUser(ctx, userID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, payments)
}

// ListPayments filters payments by status. Admin only.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := models.ParsePaymentStatus(c.QueryParam("status"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payments, err := h.Payments.FindPaymentsByStatus(ctx, status)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) UpdatePaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.update_status")

	paymentID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	status, err := models.ParsePaymentStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payment, err := h.Payments.UpdatePaymentStatus(ctx, paymentID, status)
	if err != nil {
		l.Warn("update_payment_status_error", "payment_id", paymentID, "error", err)
		return respondError(err)
	}

	publish(c, h.Producer, events.TopicPayments, fmt.Sprint(payment.OrderID), map[string]any{
		"type":       "payment_status_changed",
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"status":     status,
	})
	return c.JSON(http.StatusOK, payment)
}
