package cart

import "github.com/shopspring/decimal"

// LineItem is one product's presence in a cart.
type LineItem struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	Quantity        int             `json:"quantity"`
	RebateQuantity  int             `json:"rebateQuantity"`
	RebatePercent   decimal.Decimal `json:"rebatePercent"`
	UpsellProductID *string         `json:"upsellProductId"`
	GiftWrap        bool            `json:"giftWrap"`
	ImageURL        string          `json:"imageUrl,omitempty"`
}

// Cart is the ordered sequence of line items; insertion order is kept for display.
type Cart []LineItem

// AddItem describes a product being put into the cart.
type AddItem struct {
	ID              string
	ProductID       string
	Name            string
	Price           decimal.Decimal
	Quantity        int
	RebateQuantity  int
	RebatePercent   decimal.Decimal
	UpsellProductID *string
	GiftWrap        bool
	ImageURL        string
}

// Summary is the display view of a cart with derived totals and nudges.
type Summary struct {
	Items     []LineSummary   `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
}

// LineSummary decorates a line item with its line total and advisory messages.
type LineSummary struct {
	LineItem
	LineTotal   decimal.Decimal `json:"lineTotal"`
	RebateNudge *string         `json:"rebateNudge,omitempty"`
	UpsellNudge *string         `json:"upsellNudge,omitempty"`
}
