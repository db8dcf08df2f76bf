package orders

import (
	"strings"

	"github.com/angelmondragon/storefront/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// Delivery is the shipping and contact data collected by the checkout flow.
type Delivery struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

// OrderLine is one purchased product in a submitted order.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	GiftWrap  bool            `json:"giftWrap"`
}

// Order is the payload handed to the order backend. Contact fields keep the
// capitalized keys the backend's /orderSubmit endpoint reads.
type Order struct {
	OrderID  string          `json:"orderId"`
	Name     string          `json:"Name"`
	City     string          `json:"City"`
	Address  string          `json:"Address"`
	Phone    string          `json:"Phone"`
	Email    string          `json:"Email"`
	ZipCode  string          `json:"ZipCode"`
	Country  string          `json:"Country"`
	Products []OrderLine     `json:"products"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// NewOrder assembles an order from delivery data and the cart contents.
func NewOrder(orderID string, d Delivery, c cart.Cart, currency string) (Order, error) {
	if len(c) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}
	lines := make([]OrderLine, 0, len(c))
	for _, item := range c {
		lines = append(lines, OrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.CurrentPrice,
			GiftWrap:  item.GiftWrap,
		})
	}
	return Order{
		OrderID:  orderID,
		Name:     strings.TrimSpace(d.Name),
		City:     strings.TrimSpace(d.City),
		Address:  strings.TrimSpace(d.Address),
		Phone:    strings.TrimSpace(d.Phone),
		Email:    strings.TrimSpace(d.Email),
		ZipCode:  strings.TrimSpace(d.ZipCode),
		Country:  strings.TrimSpace(d.Country),
		Products: lines,
		Total:    cart.TotalPrice(c),
		Currency: currency,
	}, nil
}
