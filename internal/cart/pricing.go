package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is shown in upsell messages when none is configured.
const DefaultCurrency = "DKK"

var hundred = decimal.NewFromInt(100)

// EffectivePrice returns the unit price for the item's current quantity.
// The rebate applies only when a threshold above one is configured and reached.
func EffectivePrice(item LineItem) decimal.Decimal {
	if item.RebateQuantity > 1 && item.Quantity >= item.RebateQuantity {
		return item.OriginalPrice.Mul(hundred.Sub(item.RebatePercent)).Div(hundred)
	}
	return item.OriginalPrice
}

func reprice(item *LineItem) {
	item.CurrentPrice = EffectivePrice(*item)
}

// RebateNudgeMessage advertises the quantity rebate of item, or returns nil when none is configured.
func RebateNudgeMessage(item LineItem) *string {
	if item.RebateQuantity <= 1 {
		return nil
	}
	msg := fmt.Sprintf("Get a %s%% discount by ordering %d or more!", item.RebatePercent.String(), item.RebateQuantity)
	return &msg
}

// UpsellNudgeMessage suggests upgrading the line itemID to its upsell product.
// The upsell target must already be in the same cart and cost more than the item.
// A target priced at or below the item yields nil, even though it is in the cart.
func UpsellNudgeMessage(c Cart, itemID, currency string) *string {
	item, ok := c.lineByID(itemID)
	if !ok || item.UpsellProductID == nil || strings.TrimSpace(*item.UpsellProductID) == "" {
		return nil
	}
	target, ok := c.lineByProductID(*item.UpsellProductID)
	if !ok || target.ID == item.ID {
		return nil
	}
	delta := target.CurrentPrice.Sub(item.CurrentPrice)
	if !delta.IsPositive() {
		return nil
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	msg := fmt.Sprintf("Consider upgrading to %s for just %s %s more!", target.Name, delta.StringFixed(2), currency)
	return &msg
}

func (c Cart) lineByID(id string) (LineItem, bool) {
	for _, line := range c {
		if line.ID == id {
			return line, true
		}
	}
	return LineItem{}, false
}

func (c Cart) lineByProductID(productID string) (LineItem, bool) {
	for _, line := range c {
		if line.ProductID == productID {
			return line, true
		}
	}
	return LineItem{}, false
}
