package models

import "time"

// CartItem is one line of a user's cart, keyed by (user, product, variant).
// Adding the same key again merges quantities instead of creating a second
// row.
type CartItem struct {
	ID           uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint `gorm:"uniqueIndex:idx_cart_line" json:"user_id"`
	ProductID    uint `gorm:"uniqueIndex:idx_cart_line" json:"product_id"`
	IsDecorative bool `gorm:"uniqueIndex:idx_cart_line" json:"is_decorative"`
	Quantity     int  `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
