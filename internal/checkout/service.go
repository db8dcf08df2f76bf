package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/internal/orders"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/google/uuid"
)

const (
	SubmitSucceededMessage = "Order submitted successfully!"
	SubmitFailedMessage    = "An error occurred while submitting your order. Please try again later."
)

const defaultTimeout = 10 * time.Second

// Service submits the cart of an owner as an order.
type Service interface {
	Submit(ctx context.Context, owner string, input SubmitInput) (*orders.Order, error)
}

// SubmitInput carries the delivery data and an optional caller-chosen order id.
type SubmitInput struct {
	OrderID  string
	Delivery orders.Delivery
}

// Options tunes the checkout service.
type Options struct {
	Currency string
	Timeout  time.Duration
	Notifier notifications.Notifier
	Metrics  *metrics.CartMetrics
}

type service struct {
	carts     cart.Store
	submitter orders.Submitter
	logg      *logger.Logger
	notifier  notifications.Notifier
	metrics   *metrics.CartMetrics
	currency  string
	timeout   time.Duration
	now       func() time.Time
}

// NewService wires checkout dependencies.
func NewService(carts cart.Store, submitter orders.Submitter, logg *logger.Logger, opts Options) (Service, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart store required")
	}
	if submitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order submitter required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	currency := strings.TrimSpace(opts.Currency)
	if currency == "" {
		currency = cart.DefaultCurrency
	}
	return &service{
		carts:     carts,
		submitter: submitter,
		logg:      logg,
		notifier:  notifier,
		metrics:   opts.Metrics,
		currency:  currency,
		timeout:   timeout,
		now:       time.Now,
	}, nil
}

// Submit sends the current cart as an order. The ordered lines are taken out of the
// cart only after the submitter accepted the order; on failure it is left intact for a retry.
func (s *service) Submit(ctx context.Context, owner string, input SubmitInput) (*orders.Order, error) {
	c, err := s.carts.GetCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		orderID = uuid.NewString()
	}
	order, err := orders.NewOrder(orderID, input.Delivery, c, s.currency)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":  order.OrderID,
		"transport": s.submitter.Transport(),
	})

	submitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	started := s.now()
	err = s.submitter.Submit(submitCtx, order)
	cancel()
	s.metrics.ObserveOrderSubmit(s.submitter.Transport(), s.now().Sub(started), err)

	if err != nil {
		s.logg.Error(ctx, "order submission failed", err)
		s.notify(ctx, owner, notifications.Failure(SubmitFailedMessage))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit order")
	}

	if err := s.carts.RemoveOrdered(ctx, owner, c); err != nil {
		// the order is already placed, so the checkout still succeeds
		s.logg.Error(ctx, "clearing cart after order submission failed", err)
	}
	s.notify(ctx, owner, notifications.Success(SubmitSucceededMessage))
	s.logg.Info(ctx, "order submitted")
	return &order, nil
}

func (s *service) notify(ctx context.Context, owner string, n notifications.Notification) {
	if err := s.notifier.Notify(ctx, owner, n); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "notification delivery failed")
	}
}
