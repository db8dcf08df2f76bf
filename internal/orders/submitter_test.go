package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder(t *testing.T) Order {
	t.Helper()
	c := cart.Cart{
		{ID: "l1", ProductID: "leash", Name: "Leash", CurrentPrice: decimal.RequireFromString("80"), OriginalPrice: decimal.RequireFromString("100"), Quantity: 5},
		{ID: "l2", ProductID: "bowl", Name: "Bowl", CurrentPrice: decimal.RequireFromString("5"), OriginalPrice: decimal.RequireFromString("5"), Quantity: 1, GiftWrap: true},
	}
	order, err := NewOrder("order-1", Delivery{
		Name: " Ada Lovelace ", Address: "Strandvejen 1", City: "Aarhus", ZipCode: "8000",
		Country: "DK", Phone: "12345678", Email: "ada@example.com",
	}, c, "DKK")
	require.NoError(t, err)
	return order
}

func TestNewOrderBuildsLinesAndTotal(t *testing.T) {
	order := sampleOrder(t)
	assert.Equal(t, "Ada Lovelace", order.Name)
	require.Len(t, order.Products, 2)
	assert.Equal(t, 5, order.Products[0].Quantity)
	assert.True(t, order.Products[0].UnitPrice.Equal(decimal.RequireFromString("80")))
	assert.True(t, order.Products[1].GiftWrap)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("405")))
}

func TestNewOrderRejectsEmptyCart(t *testing.T) {
	_, err := NewOrder("id", Delivery{}, cart.Cart{}, "DKK")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart))
}

func TestHTTPSubmitterPostsJSON(t *testing.T) {
	var (
		gotBody   map[string]any
		gotIdem   string
		gotMethod string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotIdem = r.Header.Get("Idempotency-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sub := NewHTTPSubmitter(srv.URL+"/orderSubmit", time.Second)
	require.NoError(t, sub.Submit(context.Background(), sampleOrder(t)))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "order-1", gotIdem)
	assert.Equal(t, "Ada Lovelace", gotBody["Name"])
	assert.Equal(t, "8000", gotBody["ZipCode"])
	assert.Len(t, gotBody["products"], 2)
	assert.Equal(t, "http", sub.Transport())
}

func TestHTTPSubmitterRejectsNon200(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		err := NewHTTPSubmitter(srv.URL, time.Second).Submit(context.Background(), sampleOrder(t))
		srv.Close()
		require.Error(t, err, "status %d", status)
	}
}

func TestHTTPSubmitterHonorsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := NewHTTPSubmitter(srv.URL, 50*time.Millisecond).Submit(context.Background(), sampleOrder(t))
	require.Error(t, err)
}

type stubQueue struct {
	id   string
	body []byte
	err  error
}

func (s *stubQueue) Publish(_ context.Context, id string, body []byte) error {
	s.id, s.body = id, body
	return s.err
}

func TestRabbitMQSubmitter(t *testing.T) {
	queue := &stubQueue{}
	sub := NewRabbitMQSubmitter(queue)
	require.NoError(t, sub.Submit(context.Background(), sampleOrder(t)))
	assert.Equal(t, "order-1", queue.id)
	assert.Contains(t, string(queue.body), `"Email":"ada@example.com"`)
	assert.Equal(t, "rabbitmq", sub.Transport())

	queue.err = errors.New("blocked")
	require.Error(t, sub.Submit(context.Background(), sampleOrder(t)))
}

type stubTopic struct {
	attrs map[string]string
	err   error
}

func (s *stubTopic) PublishOrder(_ context.Context, _ []byte, attrs map[string]string) (string, error) {
	s.attrs = attrs
	return "server-1", s.err
}

func TestPubSubSubmitter(t *testing.T) {
	topic := &stubTopic{}
	sub := NewPubSubSubmitter(topic)
	require.NoError(t, sub.Submit(context.Background(), sampleOrder(t)))
	assert.Equal(t, "order-1", topic.attrs["order_id"])
	assert.Equal(t, "pubsub", sub.Transport())

	topic.err = errors.New("unavailable")
	require.Error(t, sub.Submit(context.Background(), sampleOrder(t)))
}
