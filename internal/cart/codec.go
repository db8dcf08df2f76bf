package cart

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// storedLine mirrors LineItem with optional prices so older snapshots can be repaired.
// "price" is the field name written by earlier clients for the current unit price.
type storedLine struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"productId"`
	Name            string           `json:"name"`
	CurrentPrice    *decimal.Decimal `json:"currentPrice"`
	LegacyPrice     *decimal.Decimal `json:"price"`
	OriginalPrice   *decimal.Decimal `json:"originalPrice"`
	Quantity        int              `json:"quantity"`
	RebateQuantity  int              `json:"rebateQuantity"`
	RebatePercent   *decimal.Decimal `json:"rebatePercent"`
	UpsellProductID *string          `json:"upsellProductId"`
	GiftWrap        bool             `json:"giftWrap"`
	ImageURL        string           `json:"imageUrl"`
}

// decodeCart parses a stored snapshot. The returned flag reports whether
// any line had to be repaired, in which case the snapshot should be rewritten.
func decodeCart(raw string, repriceLines bool) (Cart, bool, error) {
	var stored []storedLine
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return Cart{}, false, fmt.Errorf("decode cart: %w", err)
	}

	out := make(Cart, 0, len(stored))
	repaired := false
	for _, s := range stored {
		line, changed := s.toLineItem(repriceLines)
		repaired = repaired || changed
		out = append(out, line)
	}
	return out, repaired, nil
}

func (s storedLine) toLineItem(repriceLine bool) (LineItem, bool) {
	changed := false
	line := LineItem{
		ID:              s.ID,
		ProductID:       s.ProductID,
		Name:            s.Name,
		Quantity:        s.Quantity,
		RebateQuantity:  s.RebateQuantity,
		UpsellProductID: s.UpsellProductID,
		GiftWrap:        s.GiftWrap,
		ImageURL:        s.ImageURL,
	}
	if line.ID == "" {
		line.ID = uuid.NewString()
		changed = true
	}
	if line.Quantity < 1 {
		line.Quantity = 1
		changed = true
	}
	if s.RebatePercent != nil {
		line.RebatePercent = *s.RebatePercent
	}

	switch {
	case s.CurrentPrice != nil:
		line.CurrentPrice = *s.CurrentPrice
	case s.LegacyPrice != nil:
		line.CurrentPrice = *s.LegacyPrice
		changed = true
	case s.OriginalPrice != nil:
		line.CurrentPrice = *s.OriginalPrice
		changed = true
	}
	if s.OriginalPrice != nil {
		line.OriginalPrice = *s.OriginalPrice
	} else {
		line.OriginalPrice = line.CurrentPrice
		changed = true
	}

	if repriceLine {
		before := line.CurrentPrice
		reprice(&line)
		if !before.Equal(line.CurrentPrice) {
			changed = true
		}
	}
	return line, changed
}

func encodeCart(c Cart) (string, error) {
	if c == nil {
		c = Cart{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(raw), nil
}
