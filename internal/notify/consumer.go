package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonredis "doctor-registry/internal/common/redis"

	"go.uber.org/zap"
)

// Handler 处理一条变更事件；返回 nil 才会 ACK
type Handler func(ctx context.Context, ev Event) error

// StreamSource 消费者组读写（RedisStreamSource 实现）
type StreamSource interface {
	EnsureGroup(ctx context.Context) error
	Read(ctx context.Context) ([]commonredis.StreamMessage, error)
	ReadPending(ctx context.Context) ([]commonredis.StreamMessage, error)
	Ack(ctx context.Context, id string) error
}

// RedisStreamSource 基于 Redis Streams 消费者组
type RedisStreamSource struct {
	client    *commonredis.Client
	stream    string
	group     string
	consumer  string
	batchSize int64
	block     time.Duration
}

func NewRedisStreamSource(client *commonredis.Client, stream, group, consumer string) *RedisStreamSource {
	return &RedisStreamSource{
		client:    client,
		stream:    stream,
		group:     group,
		consumer:  consumer,
		batchSize: 10,
		block:     5 * time.Second,
	}
}

func (s *RedisStreamSource) EnsureGroup(ctx context.Context) error {
	return commonredis.CreateConsumerGroup(ctx, s.client, s.stream, s.group)
}

func (s *RedisStreamSource) Read(ctx context.Context) ([]commonredis.StreamMessage, error) {
	return commonredis.ReadFromStream(ctx, s.client, s.stream, s.group, s.consumer, s.batchSize, s.block)
}

func (s *RedisStreamSource) ReadPending(ctx context.Context) ([]commonredis.StreamMessage, error) {
	return commonredis.ReadPendingFromStream(ctx, s.client, s.stream, s.group, s.consumer, s.batchSize)
}

func (s *RedisStreamSource) Ack(ctx context.Context, id string) error {
	return commonredis.Ack(ctx, s.client, s.stream, s.group, id)
}

// ChangeConsumer 消费档案变更事件。
// 处理失败的消息不 ACK，留在 pending 列表中，退避后重新投递；启动时先处理上次遗留的 pending 消息。
type ChangeConsumer struct {
	source     StreamSource
	handler    Handler
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration

	retryPending bool
}

func NewChangeConsumer(source StreamSource, handler Handler, logger *zap.Logger) *ChangeConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeConsumer{
		source:       source,
		handler:      handler,
		logger:       logger,
		minBackoff:   time.Second,
		maxBackoff:   30 * time.Second,
		retryPending: true,
	}
}

// Start 阻塞消费直到 ctx 结束；读取或处理失败时指数退避
func (c *ChangeConsumer) Start(ctx context.Context) error {
	if err := c.source.EnsureGroup(ctx); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	c.logger.Info("Change consumer started")

	backoff := c.minBackoff
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := c.consumeOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume events", zap.Error(err), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.maxBackoff {
				backoff = c.maxBackoff
			}
			continue
		}
		backoff = c.minBackoff
	}
}

// consumeOnce 先重投 pending 消息（需要时），再读取一批新消息
func (c *ChangeConsumer) consumeOnce(ctx context.Context) error {
	failed := 0
	if c.retryPending {
		pending, err := c.source.ReadPending(ctx)
		if err != nil {
			return fmt.Errorf("failed to read pending messages: %w", err)
		}
		failed += c.handleBatch(ctx, pending)
	}

	messages, err := c.source.Read(ctx)
	if err != nil {
		c.retryPending = c.retryPending || failed > 0
		return fmt.Errorf("failed to read from stream: %w", err)
	}
	failed += c.handleBatch(ctx, messages)

	c.retryPending = failed > 0
	if failed > 0 {
		return fmt.Errorf("%d event(s) left pending for retry", failed)
	}
	return nil
}

// handleBatch 返回处理失败（未 ACK）的消息数
func (c *ChangeConsumer) handleBatch(ctx context.Context, messages []commonredis.StreamMessage) int {
	failed := 0
	for _, msg := range messages {
		ev, err := ParseStreamMessage(msg)
		if err != nil {
			// 格式错误的消息重投也无法处理，直接 ACK 丢弃
			c.logger.Warn("Dropping malformed event", zap.String("message_id", msg.ID), zap.Error(err))
			c.ack(ctx, msg.ID)
			continue
		}
		if err := c.handler(ctx, ev); err != nil {
			c.logger.Error("Failed to process event",
				zap.String("message_id", msg.ID),
				zap.Int64("doctor_id", ev.DoctorID),
				zap.Error(err),
			)
			failed++
			continue
		}
		c.ack(ctx, msg.ID)
	}
	return failed
}

func (c *ChangeConsumer) ack(ctx context.Context, id string) {
	if err := c.source.Ack(ctx, id); err != nil {
		c.logger.Warn("Failed to ack message", zap.String("message_id", id), zap.Error(err))
	}
}

// ParseStreamMessage 从 data 字段解析事件
func ParseStreamMessage(msg commonredis.StreamMessage) (Event, error) {
	var ev Event
	raw, ok := msg.Values["data"]
	if !ok {
		return ev, fmt.Errorf("message %s has no data field", msg.ID)
	}
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return ev, fmt.Errorf("message %s: unexpected data type %T", msg.ID, raw)
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("message %s: invalid event: %w", msg.ID, err)
	}
	if ev.DoctorID <= 0 {
		return ev, fmt.Errorf("message %s: missing doctor_id", msg.ID)
	}
	return ev, nil
}
