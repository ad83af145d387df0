package models

import "github.com/shopspring/decimal"

// CartItem is one line of the shopping cart. The optional price fields
// are nil when unset; a zero price is a real price, not "absent".
type CartItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	PromoPrice  *decimal.Decimal `json:"promotional_price,omitempty"`
	Image       string           `json:"image,omitempty"`
	Quantity    int              `json:"quantity"`
	IsRental    bool             `json:"is_rental,omitempty"`
	RentalPrice *decimal.Decimal `json:"rental_price,omitempty"`
}

// FavoriteItem mirrors CartItem without a quantity; favorites have set
// semantics keyed by ID.
type FavoriteItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	PromoPrice  *decimal.Decimal `json:"promotional_price,omitempty"`
	Image       string           `json:"image,omitempty"`
	IsRental    bool             `json:"is_rental,omitempty"`
	RentalPrice *decimal.Decimal `json:"rental_price,omitempty"`
}
