package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonredis "doctor-registry/internal/common/redis"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventDoctorUpdated  = "doctor.updated"
	EventDoctorDeleted  = "doctor.deleted"
	EventDoctorRestored = "doctor.restored"
)

// Event 档案变更事件
type Event struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	DoctorID   int64     `json:"doctor_id"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(doctorID int64, actor string) Event {
	return NewEventOfType(EventDoctorUpdated, doctorID, actor)
}

func NewEventOfType(typ string, doctorID int64, actor string) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       typ,
		DoctorID:   doctorID,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}

// Notifier 发布档案变更事件
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Nop 不发布任何事件（NOTIFY_MODE=none）
type Nop struct{}

func (Nop) Notify(ctx context.Context, ev Event) error { return nil }

// RedisStreamNotifier 发布到 Redis Stream（XADD，字段 data/timestamp）
type RedisStreamNotifier struct {
	stream  string
	publish func(ctx context.Context, stream string, data any) (string, error)
}

func NewRedisStreamNotifier(client *commonredis.Client, stream string) *RedisStreamNotifier {
	return &RedisStreamNotifier{
		stream: stream,
		publish: func(ctx context.Context, stream string, data any) (string, error) {
			return commonredis.PublishJSONToStream(ctx, client, stream, data)
		},
	}
}

func (n *RedisStreamNotifier) Notify(ctx context.Context, ev Event) error {
	if _, err := n.publish(ctx, n.stream, ev); err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", n.stream, err)
	}
	return nil
}

// Publisher MQTT 发布接口（common/mqtt.Client 实现）
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier 发布到 MQTT 主题
type MQTTNotifier struct {
	pub   Publisher
	topic string
	qos   byte
}

func NewMQTTNotifier(pub Publisher, topic string, qos byte) *MQTTNotifier {
	return &MQTTNotifier{pub: pub, topic: topic, qos: qos}
}

func (n *MQTTNotifier) Notify(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.pub.Publish(n.topic, n.qos, false, payload)
}

// Listener 把 Notifier 适配为 editor 的 change listener；发布失败只记录日志，不影响保存结果
func Listener(ctx context.Context, n Notifier, actor string, logger *zap.Logger) func(id int64) {
	publish := Publish(ctx, n, actor, logger)
	return func(id int64) { publish(EventDoctorUpdated, id) }
}

// Publish 返回按事件类型发布的函数（删除、恢复等操作使用）
func Publish(ctx context.Context, n Notifier, actor string, logger *zap.Logger) func(typ string, id int64) {
	return func(typ string, id int64) {
		ev := NewEventOfType(typ, id, actor)
		if err := n.Notify(ctx, ev); err != nil {
			logger.Error("Failed to publish doctor change event",
				zap.Int64("doctor_id", id),
				zap.String("type", typ),
				zap.String("event_id", ev.EventID),
				zap.Error(err),
			)
			return
		}
		logger.Debug("Doctor change event published",
			zap.Int64("doctor_id", id),
			zap.String("type", typ),
			zap.String("event_id", ev.EventID),
		)
	}
}
