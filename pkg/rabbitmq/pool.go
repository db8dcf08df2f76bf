package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

var errPoolExhausted = errors.New("no channels available in pool")

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type connection interface {
	Close() error
}

// ChannelPool hands out pre-opened AMQP channels bound to one durable queue.
type ChannelPool struct {
	mu         sync.Mutex
	conn       connection
	channels   chan channel
	newChannel func() (channel, error)
	closed     bool
}

// NewChannelPool dials url and pre-creates size channels, declaring queue on each.
func NewChannelPool(ctx context.Context, url, queue string, size int, logg *logger.Logger) (*ChannelPool, error) {
	if size <= 0 {
		size = 1
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	open := func() (channel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		// durable, not auto-deleted, not exclusive
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("declare queue %q: %w", queue, err)
		}
		return ch, nil
	}

	pool, err := newChannelPool(conn, open, size)
	if err != nil {
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"queue": queue, "channels": size}), "rabbitmq channel pool ready")
	}
	return pool, nil
}

func newChannelPool(conn connection, open func() (channel, error), size int) (*ChannelPool, error) {
	pool := &ChannelPool{
		conn:       conn,
		channels:   make(chan channel, size),
		newChannel: open,
	}
	for i := 0; i < size; i++ {
		ch, err := open()
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("create channel %d: %w", i, err)
		}
		pool.channels <- ch
	}
	return pool, nil
}

// Acquire takes a channel from the pool, replacing it when the broker closed it.
func (p *ChannelPool) Acquire() (channel, error) {
	select {
	case ch, ok := <-p.channels:
		if !ok {
			return nil, errors.New("channel pool closed")
		}
		if ch.IsClosed() {
			return p.newChannel()
		}
		return ch, nil
	default:
		return nil, errPoolExhausted
	}
}

// Release puts ch back, closing it when the pool is full or shut down.
func (p *ChannelPool) Release(ch channel) {
	if ch == nil || ch.IsClosed() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = ch.Close()
		return
	}
	select {
	case p.channels <- ch:
	default:
		_ = ch.Close()
	}
}

// Close closes every pooled channel and the connection.
func (p *ChannelPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.channels)
	for ch := range p.channels {
		_ = ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
