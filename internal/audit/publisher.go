// Package audit forwards committed order and shot logs to Kafka for
// dashboards and exports outside this service.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

// publishQueue bounds the entries waiting for the broker. Entries beyond it
// are dropped; the database rows stay the record.
const publishQueue = 256

type Topics struct {
	OrderLog string
	ShotLog  string
}

// Publisher sends each log entry as one JSON message keyed by event id, so
// all entries of an event land on the same partition in commit order.
// Sending happens on a single background goroutine so a slow broker never
// holds up a request.
type Publisher struct {
	producer sarama.SyncProducer
	topics   Topics
	mockMode bool

	queue   chan *sarama.ProducerMessage
	done    chan struct{}
	closeMu sync.RWMutex
	closed  bool
}

func NewPublisher(brokers []string, topics Topics, mockMode bool) (*Publisher, error) {
	if mockMode {
		zap.L().Info("audit publisher running in mock mode, no kafka connection")
		return &Publisher{topics: topics, mockMode: true}, nil
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("sarama.NewSyncProducer -> %w", err)
	}

	zap.L().Info("audit publisher connected", zap.Strings("brokers", brokers))

	return NewPublisherWithProducer(producer, topics), nil
}

// NewPublisherWithProducer wraps an existing producer and starts sending.
func NewPublisherWithProducer(producer sarama.SyncProducer, topics Topics) *Publisher {
	p := &Publisher{
		producer: producer,
		topics:   topics,
		queue:    make(chan *sarama.ProducerMessage, publishQueue),
		done:     make(chan struct{}),
	}
	go p.run()

	return p
}

func (p *Publisher) run() {
	defer close(p.done)

	for msg := range p.queue {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			zap.L().Error("failed to publish audit entry", zap.String("topic", msg.Topic), zap.Error(err))
			continue
		}

		zap.L().Debug("published audit entry",
			zap.String("topic", msg.Topic),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset),
		)
	}
}

func (p *Publisher) PublishOrderLog(ctx context.Context, log domain.OrderLog) {
	p.publish(ctx, p.topics.OrderLog, log.EventID, log)
}

func (p *Publisher) PublishShotLog(ctx context.Context, log domain.ShotLog) {
	p.publish(ctx, p.topics.ShotLog, log.EventID, log)
}

// publish never fails the caller. The database row is the record; the
// message is a copy.
func (p *Publisher) publish(_ context.Context, topic string, eventID uint, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("failed to marshal audit entry", zap.String("topic", topic), zap.Error(err))
		return
	}

	if p.mockMode {
		zap.L().Debug("mock publish", zap.String("topic", topic), zap.ByteString("payload", data))
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(eventID), 10)),
		Value: sarama.ByteEncoder(data),
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()

	if p.closed {
		zap.L().Warn("audit publisher closed, entry dropped", zap.String("topic", topic))
		return
	}

	select {
	case p.queue <- msg:
	default:
		zap.L().Warn("audit queue full, entry dropped", zap.String("topic", topic), zap.Uint("eventID", eventID))
	}
}

// Close sends what is still queued, then closes the producer.
func (p *Publisher) Close() error {
	if p.mockMode || p.producer == nil {
		return nil
	}

	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.closeMu.Unlock()

	<-p.done

	return p.producer.Close()
}

// Nop discards every entry.
type Nop struct{}

func (Nop) PublishOrderLog(context.Context, domain.OrderLog) {}

func (Nop) PublishShotLog(context.Context, domain.ShotLog) {}
