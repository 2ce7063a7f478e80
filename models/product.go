package models

import "time"

// Product is a catalog murti with two sellable price points: the plain
// (base) finish and the decorated finish. is_decorative on a cart or order
// line selects between them; it is not a separate inventory unit.
type Product struct {
	ID               uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string  `gorm:"not null" json:"name"`
	Description      string  `json:"description"`
	BasePrice        float64 `gorm:"not null" json:"base_price"`
	DecorativePrice  float64 `json:"decorative_price"`
	StockQuantity    int     `json:"stock_quantity"`
	SizeCategory     string  `json:"size_category"`
	MaterialCategory string  `json:"material_category"`
	TypeCategory     string  `json:"type_category"`
	ImageURL         string  `json:"image_url"`
	IsActive         bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Price returns the sellable unit price for the chosen variant.
func (p Product) Price(isDecorative bool) float64 {
	if isDecorative {
		return p.DecorativePrice
	}
	return p.BasePrice
}
