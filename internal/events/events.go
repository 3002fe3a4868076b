// Package events публикует события о подтвержденных заказах в Kafka.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/iurnickita/seafoodpos/internal/events/config"
	"github.com/iurnickita/seafoodpos/internal/model"
)

const (
	DefaultTopic           = "seafoodpos.order-confirmed"
	DefaultDeliveryTimeout = 5 * time.Second
)

type Publisher interface {
	OrderConfirmed(ctx context.Context, order model.Order, items []model.OrderItem) error
	Close()
}

// Событие в Kafka
type OrderConfirmedEvent struct {
	ID          string          `json:"id"`
	OrderID     int64           `json:"order_id"`
	CustomerID  int64           `json:"customer_id"`
	CreatedBy   int64           `json:"created_by"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []EventItem     `json:"items"`
	OrderDate   time.Time       `json:"order_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

type EventItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func NewOrderConfirmedEvent(order model.Order, items []model.OrderItem) OrderConfirmedEvent {
	event := OrderConfirmedEvent{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		CreatedBy:   order.CreatedBy,
		TotalAmount: order.TotalAmount,
		Items:       make([]EventItem, 0, len(items)),
		OrderDate:   order.OrderDate,
		CreatedAt:   time.Now().UTC(),
	}
	for _, item := range items {
		event.Items = append(event.Items, EventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return event
}

// NewPublisher возвращает Kafka-публикатор или Nop, если брокеры не заданы.
func NewPublisher(cfg config.Config) (Publisher, error) {
	if strings.TrimSpace(cfg.Brokers) == "" {
		return Nop{}, nil
	}
	return NewKafka(cfg)
}

type kafkaPublisher struct {
	client  *kgo.Client
	topic   string
	timeout time.Duration
}

func NewKafka(cfg config.Config) (Publisher, error) {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	timeout := cfg.DeliveryTimeout
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}

	// публикация идет после коммита заказа, поэтому доставка ограничена по времени
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(cfg.Brokers, ",")...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordDeliveryTimeout(timeout),
		kgo.ProduceRequestTimeout(timeout),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, err
	}
	return &kafkaPublisher{client: client, topic: topic, timeout: timeout}, nil
}

func (p *kafkaPublisher) OrderConfirmed(ctx context.Context, order model.Order, items []model.OrderItem) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	value, err := json.Marshal(NewOrderConfirmedEvent(order, items))
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(order.CustomerID, 10)),
		Value: value,
	}
	return p.client.ProduceSync(ctx, record).FirstErr()
}

func (p *kafkaPublisher) Close() {
	p.client.Close()
}

// Nop ничего не публикует
type Nop struct{}

func (Nop) OrderConfirmed(context.Context, model.Order, []model.OrderItem) error { return nil }

func (Nop) Close() {}
