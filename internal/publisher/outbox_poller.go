package publisher

import (
	"context"
	"log"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/segmentio/kafka-go"
)

type OutboxPoller struct {
	timeout      time.Duration
	eventTick    time.Duration
	recoveryTick time.Duration
	repo         order.RepoInterface
	writer       *kafka.Writer
}

func NewOutboxPoller(repo order.RepoInterface, eventTick, recoveryTick time.Duration, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{time.Second * 5, eventTick, recoveryTick, repo, w}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	recoveryTicker := time.NewTicker(p.recoveryTick)
	defer eventTicker.Stop()
	defer recoveryTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-recoveryTicker.C:
			p.recoverStuckOrders(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch events %v", err)
		return
	}

	for _, event := range events {
		errPublish := p.publishToKafka(ctx, event)
		if errPublish != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, errPublish)
			continue
		}

		errMark := p.repo.MarkEventAsProcessed(ctx, event.ID)
		if errMark != nil {
			log.Printf("failed to mark event as processed id = %v with error %v", event.ID, errMark)
			continue
		}
	}
}

func (p *OutboxPoller) recoverStuckOrders(ctx context.Context) {
	// a stuck order has a settled APPROVED payment but fulfillment never
	// advanced past PENDING (missed auto-advance, e.g. a crash mid-update)
	orders, err := p.repo.GetApprovedUnpaidOrders(ctx)
	if err != nil {
		log.Printf("failed to get stuck orders: %v", err)
		return
	}
	for _, stuck := range orders {
		log.Printf("recovering stuck order: %v", stuck.ID)

		err := p.repo.UpdateOrderStatus(ctx, stuck.ID, domain.OrderStatusPending, domain.OrderStatusPaid)
		if err != nil {
			log.Printf("failed to advance stuck order %v: %v", stuck.ID, err)
			continue
		}

		log.Printf("order recovered: %v", stuck.ID)
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *order.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id for ordering
		Value: event.Payload,             // Already JSON from database
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	err := p.writer.WriteMessages(ctx, msg)
	return err
}
