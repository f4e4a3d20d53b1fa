package sink

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"tomoRelay/internal/entity"
)

// KafkaBroadcaster publishes images to one Kafka topic per channel name.
type KafkaBroadcaster struct {
	channel string
	brokers []string
	logger  *zap.Logger

	mu       sync.Mutex
	producer sarama.SyncProducer
}

func NewKafkaBroadcaster(brokers []string, channel string, logger *zap.Logger) *KafkaBroadcaster {
	return &KafkaBroadcaster{
		channel: channel,
		brokers: brokers,
		logger:  logger.Named("sink").With(zap.String("channel", channel)),
	}
}

func (b *KafkaBroadcaster) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.producer != nil {
		return nil
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 2

	producer, err := sarama.NewSyncProducer(b.brokers, config)
	if err != nil {
		return fmt.Errorf("connect producer: %w", err)
	}
	b.producer = producer
	b.logger.Info("broadcast channel up")
	return nil
}

func (b *KafkaBroadcaster) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.producer == nil {
		return nil
	}
	err := b.producer.Close()
	b.producer = nil
	return err
}

func (b *KafkaBroadcaster) Broadcast(frameID uint32, pixels []uint16, cols, rows int32, dtype entity.DType, ts time.Time) error {
	b.mu.Lock()
	producer := b.producer
	b.mu.Unlock()
	if producer == nil {
		return fmt.Errorf("broadcast %s: channel not started", b.channel)
	}

	// Pixels go out in wire order so downstream consumers see the same
	// big-endian framing the controller produced.
	payload := make([]byte, len(pixels)*2)
	for i, px := range pixels {
		binary.BigEndian.PutUint16(payload[i*2:], px)
	}

	res, err := json.Marshal(entity.ImageMessage{
		FrameID:   frameID,
		Cols:      cols,
		Rows:      rows,
		DType:     string(dtype),
		Timestamp: ts.UnixMilli(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: b.channel,
		Value: sarama.ByteEncoder(res),
	}
	if _, _, err := producer.SendMessage(msg); err != nil {
		return fmt.Errorf("broadcast %s: %w", b.channel, err)
	}
	return nil
}
