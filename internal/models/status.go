package models

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToUpper(s)) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(strings.ToUpper(s)), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type PaymentMethod string

const (
	PaymentCashOnDelivery   PaymentMethod = "CASH_ON_DELIVERY"
	PaymentCashOnCollection PaymentMethod = "CASH_ON_COLLECTION"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToUpper(s)) {
	case PaymentCashOnDelivery, PaymentCashOnCollection:
		return PaymentMethod(strings.ToUpper(s)), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToUpper(s)) {
	case PaymentStatusPending, PaymentStatusConfirmed, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusCancelled:
		return PaymentStatus(strings.ToUpper(s)), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

type DeliveryMethod string

const (
	DeliveryMethodCollection DeliveryMethod = "COLLECTION"
	DeliveryMethodDelivery   DeliveryMethod = "DELIVERY"
)

func ParseDeliveryMethod(s string) (DeliveryMethod, error) {
	switch DeliveryMethod(strings.ToUpper(s)) {
	case DeliveryMethodCollection, DeliveryMethodDelivery:
		return DeliveryMethod(strings.ToUpper(s)), nil
	}
	return "", fmt.Errorf("unknown delivery method %q", s)
}

type DeliveryStatus string

const (
	DeliveryStatusPending            DeliveryStatus = "PENDING"
	DeliveryStatusConfirmed          DeliveryStatus = "CONFIRMED"
	DeliveryStatusInTransit          DeliveryStatus = "IN_TRANSIT"
	DeliveryStatusOutForDelivery     DeliveryStatus = "OUT_FOR_DELIVERY"
	DeliveryStatusReadyForCollection DeliveryStatus = "READY_FOR_COLLECTION"
	DeliveryStatusDelivered          DeliveryStatus = "DELIVERED"
	DeliveryStatusCollected          DeliveryStatus = "COLLECTED"
	DeliveryStatusFailedDelivery     DeliveryStatus = "FAILED_DELIVERY"
	DeliveryStatusReturned           DeliveryStatus = "RETURNED"
)

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch DeliveryStatus(strings.ToUpper(s)) {
	case DeliveryStatusPending, DeliveryStatusConfirmed, DeliveryStatusInTransit,
		DeliveryStatusOutForDelivery, DeliveryStatusReadyForCollection,
		DeliveryStatusDelivered, DeliveryStatusCollected,
		DeliveryStatusFailedDelivery, DeliveryStatusReturned:
		return DeliveryStatus(strings.ToUpper(s)), nil
	}
	return "", fmt.Errorf("unknown delivery status %q", s)
}

// Completed reports whether the goods reached the customer.
func (s DeliveryStatus) Completed() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusCollected
}

type AddressType string

const (
	AddressTypeHome     AddressType = "HOME"
	AddressTypeWork     AddressType = "WORK"
	AddressTypeBilling  AddressType = "BILLING"
	AddressTypeShipping AddressType = "SHIPPING"
	AddressTypeOther    AddressType = "OTHER"
)

func ParseAddressType(s string) (AddressType, error) {
	switch AddressType(strings.ToUpper(s)) {
	case AddressTypeHome, AddressTypeWork, AddressTypeBilling,
		AddressTypeShipping, AddressTypeOther:
		return AddressType(strings.ToUpper(s)), nil
	}
	return "", fmt.Errorf("unknown address type %q", s)
}
