package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/tradewire/fixgate/internal/fix"
)

// Producer publishes execution events to Kafka.
type Producer struct {
	client       *kgo.Client
	logger       *zap.Logger
	topic        string
	produceCount int64
	errorCount   int64
}

// NewProducer creates a Kafka producer for the given topic.
func NewProducer(brokers []string, topic string, logger *zap.Logger) (*Producer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	p := &Producer{
		client: client,
		logger: logger,
		topic:  topic,
	}

	logger.Info("relay producer initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic),
	)

	go p.logStats()

	return p, nil
}

// PublishExecution publishes one execution report as a JSON event keyed by
// its ClOrdID. The produce is synchronous with a bounded timeout.
func (p *Producer) PublishExecution(ctx context.Context, r *fix.ExecutionReport) error {
	event := ExecutionEventMsg{
		ExecID:       r.ExecID,
		OrderID:      r.OrderID,
		ClOrdID:      r.ClOrdID,
		ExecType:     r.ExecType.String(),
		OrdStatus:    r.OrdStatus.String(),
		Symbol:       r.Symbol,
		Side:         r.Side.String(),
		OrderQty:     r.OrderQty,
		LastQty:      r.LastQty,
		LastPx:       r.LastPx,
		CumQty:       r.CumQty,
		AvgPx:        r.AvgPx,
		LeavesQty:    r.LeavesQty,
		Text:         r.Text,
		TsUnixMillis: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		return fmt.Errorf("failed to marshal execution event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(r.ClOrdID),
		Value: data,
	}

	produceCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result := p.client.ProduceSync(produceCtx, record)
	if result.FirstErr() != nil {
		atomic.AddInt64(&p.errorCount, 1)
		return fmt.Errorf("failed to produce execution event: %w", result.FirstErr())
	}

	atomic.AddInt64(&p.produceCount, 1)
	return nil
}

// Close closes the producer.
func (p *Producer) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

// logStats logs producer statistics periodically.
func (p *Producer) logStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		produced := atomic.LoadInt64(&p.produceCount)
		errors := atomic.LoadInt64(&p.errorCount)
		p.logger.Info("relay producer stats",
			zap.Int64("produced", produced),
			zap.Int64("errors", errors),
		)
	}
}
