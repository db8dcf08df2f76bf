package controllers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type addItemRequest struct {
	ID              string           `json:"id,omitempty" validate:"omitempty,max=64"`
	ProductID       string           `json:"productId" validate:"required,max=128"`
	Name            string           `json:"name" validate:"required,max=256"`
	Price           *decimal.Decimal `json:"price" validate:"required"`
	Quantity        *int             `json:"quantity,omitempty" validate:"omitempty,gte=1,lte=9999"`
	RebateQuantity  int              `json:"rebateQuantity" validate:"gte=0"`
	RebatePercent   decimal.Decimal  `json:"rebatePercent"`
	UpsellProductID *string          `json:"upsellProductId,omitempty"`
	GiftWrap        bool             `json:"giftWrap"`
	ImageURL        string           `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
}

func (r addItemRequest) toAddItem() cart.AddItem {
	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	return cart.AddItem{
		ID:              r.ID,
		ProductID:       r.ProductID,
		Name:            validators.SanitizeString(r.Name),
		Price:           *r.Price,
		Quantity:        quantity,
		RebateQuantity:  r.RebateQuantity,
		RebatePercent:   r.RebatePercent,
		UpsellProductID: r.UpsellProductID,
		GiftWrap:        r.GiftWrap,
		ImageURL:        r.ImageURL,
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type stepQuantityRequest struct {
	Delta *int `json:"delta" validate:"required,ne=0"`
}

type giftWrapRequest struct {
	GiftWrap *bool `json:"giftWrap" validate:"required"`
}

type replaceCartRequest struct {
	Items []lineItemPayload `json:"items" validate:"dive"`
}

// lineItemPayload is a full line as sent by a client restoring its cart.
// currentPrice is derived from originalPrice when omitted; originalPrice is
// seeded from currentPrice when only that is sent.
type lineItemPayload struct {
	ID              string           `json:"id" validate:"required,max=64"`
	ProductID       string           `json:"productId" validate:"required,max=128"`
	Name            string           `json:"name" validate:"required,max=256"`
	CurrentPrice    *decimal.Decimal `json:"currentPrice"`
	OriginalPrice   *decimal.Decimal `json:"originalPrice"`
	Quantity        int              `json:"quantity" validate:"gte=1,lte=9999"`
	RebateQuantity  int              `json:"rebateQuantity" validate:"gte=0"`
	RebatePercent   decimal.Decimal  `json:"rebatePercent"`
	UpsellProductID *string          `json:"upsellProductId,omitempty"`
	GiftWrap        bool             `json:"giftWrap"`
	ImageURL        string           `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
}

func (r replaceCartRequest) toCart() (cart.Cart, error) {
	c := make(cart.Cart, 0, len(r.Items))
	for i, item := range r.Items {
		line := cart.LineItem{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Name:            validators.SanitizeString(item.Name),
			Quantity:        item.Quantity,
			RebateQuantity:  item.RebateQuantity,
			RebatePercent:   item.RebatePercent,
			UpsellProductID: item.UpsellProductID,
			GiftWrap:        item.GiftWrap,
			ImageURL:        item.ImageURL,
		}
		switch {
		case item.OriginalPrice != nil:
			line.OriginalPrice = *item.OriginalPrice
		case item.CurrentPrice != nil:
			line.OriginalPrice = *item.CurrentPrice
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{fmt.Sprintf("items[%d].originalPrice", i): "is required"})
		}
		if item.CurrentPrice != nil {
			line.CurrentPrice = *item.CurrentPrice
		} else {
			line.CurrentPrice = cart.EffectivePrice(line)
		}
		c = append(c, line)
	}
	return c, nil
}
