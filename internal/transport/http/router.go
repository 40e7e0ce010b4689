package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ttshop/tyrestore/internal/handlers"
	authmw "github.com/ttshop/tyrestore/internal/middleware/auth"
)

type Deps struct {
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	SearchHandler   *handlers.SearchHandler
	OrderHandler    *handlers.OrderHandler
	PaymentHandler  *handlers.PaymentHandler
	DeliveryHandler *handlers.DeliveryHandler
	ReviewHandler   *handlers.ReviewHandler
	AddressHandler  *handlers.AddressHandler
	JWTSecret       []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/refresh", d.AuthHandler.Refresh)
	v1.POST("/logout", d.AuthHandler.Logout)

	v1.GET("/search", d.SearchHandler.SearchProducts)
	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)
	v1.GET("/products/:id/reviews", d.ReviewHandler.ListProductReviews)

	private := v1.Group("", authmw.RequireLogin(d.JWTSecret))

	private.POST("/orders", d.OrderHandler.CreateOrder)
	private.POST("/orders/checkout", d.OrderHandler.Checkout)
	private.GET("/orders", d.OrderHandler.ListMyOrders)
	private.GET("/orders/:id", d.OrderHandler.GetOrder)
	private.DELETE("/orders/:id", d.OrderHandler.DeleteOrder)

	private.POST("/orders/:id/payment", d.PaymentHandler.CreatePayment)
	private.GET("/orders/:id/payment", d.PaymentHandler.GetOrderPayment)
	private.POST("/orders/:id/delivery", d.DeliveryHandler.CreateDelivery)
	private.GET("/orders/:id/delivery", d.DeliveryHandler.GetOrderDelivery)
	private.GET("/orders/:id/reviewable", d.ReviewHandler.ReviewableProducts)
	private.GET("/payments", d.PaymentHandler.ListMyPayments)

	private.POST("/reviews", d.ReviewHandler.CreateReview)
	private.GET("/reviews/eligibility", d.ReviewHandler.ReviewEligibility)
	private.DELETE("/reviews/:id", d.ReviewHandler.DeleteReview)

	private.POST("/addresses", d.AddressHandler.CreateAddress)
	private.GET("/addresses", d.AddressHandler.ListMyAddresses)
	private.PATCH("/addresses/:id", d.AddressHandler.UpdateAddress)
	private.DELETE("/addresses/:id", d.AddressHandler.DeleteAddress)

	admin := v1.Group("/admin", authmw.AdminOnly(d.JWTSecret))

	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.PUT("/products/:id/stock", d.ProductHandler.SetStock)

	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.PATCH("/orders/:id", d.OrderHandler.UpdateOrder)
	admin.PUT("/orders/:id/status", d.OrderHandler.UpdateOrderStatus)

	admin.GET("/payments", d.PaymentHandler.ListPayments)
	admin.PUT("/payments/:id/status", d.PaymentHandler.UpdatePaymentStatus)

	admin.GET("/deliveries", d.DeliveryHandler.ListDeliveries)
	admin.PUT("/deliveries/:id/status", d.DeliveryHandler.UpdateDeliveryStatus)
	admin.PUT("/deliveries/:id/courier", d.DeliveryHandler.UpdateCourierInfo)
}
