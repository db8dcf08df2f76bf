package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/internal/notifications"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/kv"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const keyPrefix = "cart:"

// Mutation names reported to metrics.
const (
	OpAdd      = "add"
	OpRemove   = "remove"
	OpQuantity = "quantity"
	OpStep     = "step"
	OpGiftWrap = "gift_wrap"
	OpSave     = "save"
	OpClear    = "clear"
	OpCheckout = "checkout"
	OpRepair   = "repair"
)

// MaxQuantity bounds the quantity of a single line.
const MaxQuantity = 9999

// Store is the sole authority over persisted cart contents.
type Store interface {
	GetCart(ctx context.Context, owner string) (Cart, error)
	SaveCart(ctx context.Context, owner string, c Cart) error
	AddToCart(ctx context.Context, owner string, item AddItem) (LineItem, error)
	RemoveFromCart(ctx context.Context, owner, productID string) error
	UpdateQuantity(ctx context.Context, owner, productID string, quantity int) error
	StepQuantity(ctx context.Context, owner, productID string, delta int) error
	SetGiftWrap(ctx context.Context, owner, lineID string, giftWrap bool) error
	ClearCart(ctx context.Context, owner string) error
	RemoveOrdered(ctx context.Context, owner string, ordered Cart) error
	Summary(ctx context.Context, owner string) (Summary, error)
}

// Options tunes a Store.
type Options struct {
	Currency      string
	RepriceOnLoad bool
	Notifier      notifications.Notifier
	Metrics       *metrics.CartMetrics
}

type store struct {
	mu       sync.Mutex
	storage  kv.Store
	logg     *logger.Logger
	notifier notifications.Notifier
	metrics  *metrics.CartMetrics
	currency string
	reprice  bool
}

// NewStore builds a cart store persisting through storage.
func NewStore(storage kv.Store, logg *logger.Logger, opts Options) (Store, error) {
	if storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart storage required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	currency := strings.TrimSpace(opts.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	return &store{
		storage:  storage,
		logg:     logg,
		notifier: notifier,
		metrics:  opts.Metrics,
		currency: currency,
		reprice:  opts.RepriceOnLoad,
	}, nil
}

func storageKey(owner string) string {
	return keyPrefix + owner
}

func validateOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	return nil
}

// load reads and repairs the cart of owner. Callers hold s.mu.
func (s *store) load(ctx context.Context, owner string) (Cart, bool, error) {
	raw, err := s.storage.Get(ctx, storageKey(owner))
	if errors.Is(err, kv.ErrNotFound) {
		return Cart{}, false, nil
	}
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	c, repaired, err := decodeCart(raw, s.reprice)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "stored cart is malformed; treating as empty")
		return Cart{}, false, nil
	}
	return c, repaired, nil
}

// save overwrites the stored snapshot. Callers hold s.mu.
func (s *store) save(ctx context.Context, owner string, c Cart) error {
	raw, err := encodeCart(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.storage.Set(ctx, storageKey(owner), raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

// mutate runs one load-mutate-save cycle under the store lock. fn reports
// whether it changed the cart; unchanged carts are only written when load repaired them.
func (s *store) mutate(ctx context.Context, owner, op string, fn func(Cart) (Cart, bool)) (Cart, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, repaired, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	next, changed := fn(current)
	if !changed && !repaired {
		return next, nil
	}
	if err := s.save(ctx, owner, next); err != nil {
		return nil, err
	}
	if changed {
		s.metrics.IncMutation(op)
	} else {
		s.metrics.IncMutation(OpRepair)
	}
	return next, nil
}

func (s *store) GetCart(ctx context.Context, owner string) (Cart, error) {
	return s.mutate(ctx, owner, OpRepair, func(c Cart) (Cart, bool) { return c, false })
}

func (s *store) SaveCart(ctx context.Context, owner string, c Cart) error {
	if err := validateOwner(owner); err != nil {
		return err
	}
	for i, line := range c {
		if err := validateLine(i, line); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, owner, c); err != nil {
		return err
	}
	s.metrics.IncMutation(OpSave)
	return nil
}

func (s *store) AddToCart(ctx context.Context, owner string, item AddItem) (LineItem, error) {
	if err := validateAddItem(&item); err != nil {
		return LineItem{}, err
	}

	var (
		result   LineItem
		merged   bool
		mergeErr error
	)
	_, err := s.mutate(ctx, owner, OpAdd, func(c Cart) (Cart, bool) {
		for i := range c {
			if c[i].ProductID != item.ProductID {
				continue
			}
			if c[i].Quantity > MaxQuantity-item.Quantity {
				mergeErr = quantityError("quantity")
				return c, false
			}
			c[i].Quantity += item.Quantity
			reprice(&c[i])
			result, merged = c[i], true
			return c, true
		}
		line := LineItem{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Name:            item.Name,
			OriginalPrice:   item.Price,
			Quantity:        item.Quantity,
			RebateQuantity:  item.RebateQuantity,
			RebatePercent:   item.RebatePercent,
			UpsellProductID: item.UpsellProductID,
			GiftWrap:        item.GiftWrap,
			ImageURL:        item.ImageURL,
		}
		reprice(&line)
		result = line
		return append(c, line), true
	})
	if err != nil {
		return LineItem{}, err
	}
	if mergeErr != nil {
		return LineItem{}, mergeErr
	}

	msg := fmt.Sprintf("%s added to cart!", item.Name)
	if merged {
		msg = fmt.Sprintf("Updated %s quantity in cart!", item.Name)
	}
	s.notify(ctx, owner, notifications.Success(msg))
	return result, nil
}

func validateAddItem(item *AddItem) error {
	item.ProductID = strings.TrimSpace(item.ProductID)
	if item.ProductID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "productId required")
	}
	if err := validatePricing("", item.Price, decimal.Zero, item.RebatePercent, item.RebateQuantity); err != nil {
		return err
	}
	if item.Quantity > MaxQuantity {
		return quantityError("quantity")
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if strings.TrimSpace(item.ID) == "" {
		item.ID = uuid.NewString()
	}
	return nil
}

// validateLine checks a full line handed to SaveCart; index names the offending line in details.
func validateLine(index int, line LineItem) error {
	prefix := fmt.Sprintf("items[%d].", index)
	switch {
	case strings.TrimSpace(line.ID) == "":
		return fieldError(prefix+"id", "id required")
	case strings.TrimSpace(line.ProductID) == "":
		return fieldError(prefix+"productId", "productId required")
	case line.Quantity < 1:
		return fieldError(prefix+"quantity", "quantity must be at least 1")
	case line.Quantity > MaxQuantity:
		return quantityError(prefix + "quantity")
	}
	return validatePricing(prefix, line.OriginalPrice, line.CurrentPrice, line.RebatePercent, line.RebateQuantity)
}

func validatePricing(prefix string, original, current, rebatePercent decimal.Decimal, rebateQuantity int) error {
	priceField := "price"
	if prefix != "" {
		priceField = prefix + "originalPrice"
	}
	switch {
	case original.IsNegative():
		return fieldError(priceField, "price must not be negative")
	case current.IsNegative():
		return fieldError(prefix+"currentPrice", "price must not be negative")
	case rebatePercent.IsNegative() || rebatePercent.GreaterThan(hundred):
		return fieldError(prefix+"rebatePercent", "rebatePercent must be between 0 and 100")
	case rebateQuantity < 0:
		return fieldError(prefix+"rebateQuantity", "rebateQuantity must not be negative")
	}
	return nil
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": field})
}

func quantityError(field string) error {
	return fieldError(field, fmt.Sprintf("quantity must not exceed %d", MaxQuantity))
}

func (s *store) RemoveFromCart(ctx context.Context, owner, productID string) error {
	_, err := s.mutate(ctx, owner, OpRemove, func(c Cart) (Cart, bool) {
		return removeProduct(c, productID)
	})
	return err
}

func removeProduct(c Cart, productID string) (Cart, bool) {
	kept := make(Cart, 0, len(c))
	for _, line := range c {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	return kept, len(kept) != len(c)
}

func (s *store) UpdateQuantity(ctx context.Context, owner, productID string, quantity int) error {
	if quantity > MaxQuantity {
		return quantityError("quantity")
	}
	op := OpQuantity
	if quantity <= 0 {
		op = OpRemove
	}
	_, err := s.mutate(ctx, owner, op, func(c Cart) (Cart, bool) {
		if quantity <= 0 {
			return removeProduct(c, productID)
		}
		return setQuantity(c, productID, func(int) int { return quantity })
	})
	return err
}

func (s *store) StepQuantity(ctx context.Context, owner, productID string, delta int) error {
	var stepErr error
	_, err := s.mutate(ctx, owner, OpStep, func(c Cart) (Cart, bool) {
		return setQuantity(c, productID, func(q int) int {
			if delta > 0 && q > MaxQuantity-delta {
				stepErr = quantityError("delta")
				return q
			}
			return max(1, q+delta)
		})
	})
	if err != nil {
		return err
	}
	return stepErr
}

func setQuantity(c Cart, productID string, next func(int) int) (Cart, bool) {
	changed := false
	for i := range c {
		if c[i].ProductID != productID {
			continue
		}
		q := next(c[i].Quantity)
		if q == c[i].Quantity {
			continue
		}
		c[i].Quantity = q
		reprice(&c[i])
		changed = true
	}
	return c, changed
}

func (s *store) SetGiftWrap(ctx context.Context, owner, lineID string, giftWrap bool) error {
	_, err := s.mutate(ctx, owner, OpGiftWrap, func(c Cart) (Cart, bool) {
		for i := range c {
			if c[i].ID == lineID && c[i].GiftWrap != giftWrap {
				c[i].GiftWrap = giftWrap
				return c, true
			}
		}
		return c, false
	})
	return err
}

func (s *store) ClearCart(ctx context.Context, owner string) error {
	if err := validateOwner(owner); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, storageKey(owner)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.metrics.IncMutation(OpClear)
	return nil
}

// RemoveOrdered takes the lines of ordered out of the owner's cart. Quantity
// added to a line after the snapshot was taken stays, as do lines that were not ordered.
func (s *store) RemoveOrdered(ctx context.Context, owner string, ordered Cart) error {
	if err := validateOwner(owner); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.load(ctx, owner)
	if err != nil {
		return err
	}
	bought := make(map[string]int, len(ordered))
	for _, line := range ordered {
		bought[line.ID] += line.Quantity
	}
	remaining := make(Cart, 0, len(current))
	for _, line := range current {
		if q, ok := bought[line.ID]; ok {
			line.Quantity -= q
			if line.Quantity < 1 {
				continue
			}
			reprice(&line)
		}
		remaining = append(remaining, line)
	}

	if len(remaining) == 0 {
		if err := s.storage.Delete(ctx, storageKey(owner)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		s.metrics.IncMutation(OpClear)
		return nil
	}
	if err := s.save(ctx, owner, remaining); err != nil {
		return err
	}
	s.metrics.IncMutation(OpCheckout)
	return nil
}

func (s *store) Summary(ctx context.Context, owner string) (Summary, error) {
	c, err := s.GetCart(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(c, s.currency), nil
}

// Summarize derives totals and nudges for c.
func Summarize(c Cart, currency string) Summary {
	lines := make([]LineSummary, 0, len(c))
	for _, line := range c {
		lines = append(lines, LineSummary{
			LineItem:    line,
			LineTotal:   LineTotal(line),
			RebateNudge: RebateNudgeMessage(line),
			UpsellNudge: UpsellNudgeMessage(c, line.ID, currency),
		})
	}
	return Summary{
		Items:     lines,
		ItemCount: ItemCount(c),
		Total:     TotalPrice(c),
		Currency:  currency,
	}
}

func (s *store) notify(ctx context.Context, owner string, n notifications.Notification) {
	if err := s.notifier.Notify(ctx, owner, n); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "notification delivery failed")
	}
}
