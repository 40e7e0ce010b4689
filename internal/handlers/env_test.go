package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/service"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Orders     *OrderHandler
	Payments   *PaymentHandler
	Deliveries *DeliveryHandler
	Reviews    *ReviewHandler
	Addresses  *AddressHandler
	Products   *ProductHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{}, &models.Product{}, &models.Address{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{}, &models.Delivery{},
		&models.Review{},
	))

	return &testEnv{
		T:  t,
		E:  echo.New(),
		DB: db,
		Orders: &OrderHandler{
			Orders: &service.OrderService{DB: db},
			Status: &service.OrderStatusService{DB: db},
		},
		Payments: &PaymentHandler{
			Payments: &service.PaymentService{DB: db},
			Orders:   &service.OrderService{DB: db},
		},
		Deliveries: &DeliveryHandler{
			Deliveries: &service.DeliveryService{DB: db},
			Orders:     &service.OrderService{DB: db},
		},
		Reviews:   &ReviewHandler{Reviews: &service.ReviewService{DB: db}},
		Addresses: &AddressHandler{Addresses: &service.AddressService{DB: db}},
		Products:  &ProductHandler{Products: &service.ProductService{DB: db}},
	}
}

// doJSONRequest builds a request context the way the routed middleware
// would, with the authenticated user already injected.
func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) asUser(c echo.Context, user *models.User) {
	c.Set("userID", user.ID)
	c.Set("role", user.Role)
}

func (env *testEnv) createUser(username, role string) *models.User {
	user := models.User{Username: username, PasswordHash: "irrelevant", Role: role}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return &user
}

func (env *testEnv) createProduct(name, price string, stock int) *models.Product {
	product := models.Product{
		Name:          name,
		Description:   name + " description",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(env.T, env.DB.Create(&product).Error)
	return &product
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func httpStatusOf(err error) int {
	if err == nil {
		return 0
	}
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}
