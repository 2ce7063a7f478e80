package models

import (
	"errors"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // Order placed, awaiting confirmation
	OrderStatusProcessing OrderStatus = "processing" // Being prepared for dispatch
	OrderStatusShipped    OrderStatus = "shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the item
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled before shipping
)

type PriceOption string

const (
	PriceOptionRegular    PriceOption = "regular"
	PriceOptionDecorative PriceOption = "decorative"
)

type Order struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`

	// Snapshot of the representative line; the full breakdown lives in Items.
	ProductID   uint        `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	PriceOption PriceOption `gorm:"type:VARCHAR(20);default:'regular'" json:"price_option"`
	TotalAmount float64     `json:"total_amount"`

	PaymentMethod   string `gorm:"not null" json:"payment_method"`
	UPIID           string `json:"upi_id,omitempty"`
	ShippingAddress string `gorm:"not null" json:"shipping_address"`
	PhoneNumber     string `gorm:"not null" json:"phone_number"`
	Pincode         string `json:"pincode"`
	TrackingID      string `json:"tracking_id,omitempty"`

	Status OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	Items  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type OrderItem struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      uint    `gorm:"index" json:"order_id"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	IsDecorative bool    `json:"is_decorative"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
}

// ErrInvalidOrderStatus reports a status string outside the order enum.
var ErrInvalidOrderStatus = errors.New("invalid order status")

// ParseOrderStatus maps a client string onto the status enum.
func ParseOrderStatus(status string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(status)) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusProcessing:
		return OrderStatusProcessing, nil
	case OrderStatusShipped:
		return OrderStatusShipped, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

// orderTransitions is the set of legal status moves. delivered and
// cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to
// another. Setting the same status again is a no-op and always allowed.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
