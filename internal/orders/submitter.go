package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
)

// Submitter hands a finished order to the order backend.
type Submitter interface {
	Submit(ctx context.Context, order Order) error
	Transport() string
}

// HTTPSubmitter POSTs the order as JSON and accepts only 200 OK.
type HTTPSubmitter struct {
	url    string
	client *http.Client
}

func NewHTTPSubmitter(url string, timeout time.Duration) *HTTPSubmitter {
	return &HTTPSubmitter{url: url, client: &http.Client{Timeout: timeout}}
}

func (h *HTTPSubmitter) Transport() string { return config.OrdersTransportHTTP }

func (h *HTTPSubmitter) Submit(ctx context.Context, order Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if order.OrderID != "" {
		req.Header.Set("Idempotency-Key", order.OrderID)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected response status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// QueuePublisher is the pkg/rabbitmq publishing surface.
type QueuePublisher interface {
	Publish(ctx context.Context, messageID string, body []byte) error
}

// RabbitMQSubmitter publishes the order as a persistent queue message.
type RabbitMQSubmitter struct {
	publisher QueuePublisher
}

func NewRabbitMQSubmitter(publisher QueuePublisher) *RabbitMQSubmitter {
	return &RabbitMQSubmitter{publisher: publisher}
}

func (r *RabbitMQSubmitter) Transport() string { return config.OrdersTransportRabbitMQ }

func (r *RabbitMQSubmitter) Submit(ctx context.Context, order Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	return r.publisher.Publish(ctx, order.OrderID, body)
}

// TopicPublisher is the pkg/pubsub publishing surface.
type TopicPublisher interface {
	PublishOrder(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

// PubSubSubmitter publishes the order to the orders topic.
type PubSubSubmitter struct {
	publisher TopicPublisher
}

func NewPubSubSubmitter(publisher TopicPublisher) *PubSubSubmitter {
	return &PubSubSubmitter{publisher: publisher}
}

func (p *PubSubSubmitter) Transport() string { return config.OrdersTransportPubSub }

func (p *PubSubSubmitter) Submit(ctx context.Context, order Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	attrs := map[string]string{
		"event_type": "order_submitted",
		"order_id":   order.OrderID,
	}
	if _, err := p.publisher.PublishOrder(ctx, body, attrs); err != nil {
		return fmt.Errorf("publish order: %w", err)
	}
	return nil
}
