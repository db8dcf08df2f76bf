package rabbitmq

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	closed    bool
	published []amqp.Publishing
	keys      []string
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) IsClosed() bool { return f.closed }

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeConn struct{ closed bool }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestPoolAcquireReleaseAndExhaustion(t *testing.T) {
	var opened []*fakeChannel
	open := func() (channel, error) {
		ch := &fakeChannel{}
		opened = append(opened, ch)
		return ch, nil
	}
	pool, err := newChannelPool(&fakeConn{}, open, 1)
	require.NoError(t, err)

	ch, err := pool.Acquire()
	require.NoError(t, err)
	_, err = pool.Acquire()
	require.ErrorIs(t, err, errPoolExhausted)

	pool.Release(ch)
	again, err := pool.Acquire()
	require.NoError(t, err)
	assert.Same(t, ch, again)
}

func TestPoolReplacesClosedChannels(t *testing.T) {
	count := 0
	open := func() (channel, error) {
		count++
		return &fakeChannel{}, nil
	}
	pool, err := newChannelPool(&fakeConn{}, open, 1)
	require.NoError(t, err)

	ch, err := pool.Acquire()
	require.NoError(t, err)
	pool.Release(ch)
	ch.(*fakeChannel).closed = true

	fresh, err := pool.Acquire()
	require.NoError(t, err)
	assert.False(t, fresh.IsClosed())
	assert.Equal(t, 2, count)
}

func TestPoolCloseClosesEverything(t *testing.T) {
	conn := &fakeConn{}
	ch := &fakeChannel{}
	pool, err := newChannelPool(conn, func() (channel, error) { return ch, nil }, 1)
	require.NoError(t, err)

	require.NoError(t, pool.Close())
	assert.True(t, conn.closed)
	assert.True(t, ch.closed)
	require.NoError(t, pool.Close())

	_, err = pool.Acquire()
	require.Error(t, err)
}

func TestNewPoolFailsWhenChannelCannotOpen(t *testing.T) {
	conn := &fakeConn{}
	_, err := newChannelPool(conn, func() (channel, error) { return nil, errors.New("no access") }, 2)
	require.Error(t, err)
	assert.True(t, conn.closed)
}

func TestPublisherSendsPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	pool, err := newChannelPool(&fakeConn{}, func() (channel, error) { return ch, nil }, 1)
	require.NoError(t, err)

	pub := NewPublisher(pool, "storefront_orders")
	require.NoError(t, pub.Publish(context.Background(), "order-1", []byte(`{"Name":"Ada"}`)))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "storefront_orders", ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "order-1", msg.MessageId)
	assert.JSONEq(t, `{"Name":"Ada"}`, string(msg.Body))

	_, err = pool.Acquire()
	require.NoError(t, err, "channel is returned to the pool after publish")
}

func TestPublisherWrapsBrokerErrors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel/connection is not open")}
	pool, err := newChannelPool(&fakeConn{}, func() (channel, error) { return ch, nil }, 1)
	require.NoError(t, err)

	err = NewPublisher(pool, "q").Publish(context.Background(), "id", []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish to \"q\"")
}
