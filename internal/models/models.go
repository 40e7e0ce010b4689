package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"unique;not null"     json:"token"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"            json:"expires_at"`
	Revoked   bool      `gorm:"default:false"       json:"revoked"`
}

type Product struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name          string          `gorm:"not null"                    json:"name"`
	Description   string          `gorm:"not null"                    json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0"          json:"stock_quantity"`
}

type Address struct {
	ID         uint        `gorm:"primaryKey"     json:"id"`
	UserID     uint        `gorm:"index;not null" json:"user_id"`
	Street     string      `gorm:"not null"       json:"street"`
	City       string      `gorm:"not null"       json:"city"`
	State      string      `json:"state"`
	PostalCode string      `json:"postal_code"`
	Country    string      `gorm:"not null"       json:"country"`
	Type       AddressType `gorm:"not null"       json:"type"`
}

// Order owns its items, payment and delivery exclusively. Children carry
// only the parent id, never a live back-reference.
type Order struct {
	ID          uint            `gorm:"primaryKey"                  json:"id"`
	UserID      uint            `gorm:"index;not null"              json:"user_id"`
	Items       []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Payment     *Payment        `gorm:"constraint:OnDelete:CASCADE" json:"payment,omitempty"`
	Delivery    *Delivery       `gorm:"constraint:OnDelete:CASCADE" json:"delivery,omitempty"`
	OrderDate   time.Time       `gorm:"not null"                    json:"order_date"`
	Status      OrderStatus     `gorm:"not null"                    json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"not null"                    json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity>0"   json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
}

type Payment struct {
	ID          uint            `gorm:"primaryKey"                  json:"id"`
	OrderID     uint            `gorm:"uniqueIndex;not null"        json:"order_id"`
	UserID      uint            `gorm:"index;not null"              json:"user_id"`
	Method      PaymentMethod   `gorm:"not null"                    json:"method"`
	Status      PaymentStatus   `gorm:"not null"                    json:"status"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"not null"                    json:"payment_date"`
}

type Delivery struct {
	ID            uint           `gorm:"primaryKey"           json:"id"`
	OrderID       uint           `gorm:"uniqueIndex;not null" json:"order_id"`
	AddressID     *uint          `json:"address_id,omitempty"`
	Method        DeliveryMethod `gorm:"not null"             json:"method"`
	Status        DeliveryStatus `gorm:"not null"             json:"status"`
	CourierName   string         `json:"courier_name"`
	EstimatedDate time.Time      `gorm:"not null"             json:"estimated_date"`
	ActualDate    *time.Time     `json:"actual_date,omitempty"`
}

type Review struct {
	ID           uint      `gorm:"primaryKey"                                    json:"id"`
	ProductID    uint      `gorm:"not null;uniqueIndex:idx_review_order_product" json:"product_id"`
	UserID       uint      `gorm:"index;not null"                                json:"user_id"`
	OrderID      uint      `gorm:"not null;uniqueIndex:idx_review_order_product" json:"order_id"`
	ReviewerName string    `json:"reviewer_name"`
	Comment      string    `json:"comment"`
	Rating       int       `gorm:"not null"                                      json:"rating"`
	ReviewDate   time.Time `gorm:"not null"                                      json:"review_date"`
}
