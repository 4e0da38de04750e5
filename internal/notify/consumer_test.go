package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	commonredis "doctor-registry/internal/common/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource 内存版消费者组：已投递未 ACK 的消息留在 pending 中
type fakeSource struct {
	mu       sync.Mutex
	batches  [][]commonredis.StreamMessage
	readErrs []error
	pending  []commonredis.StreamMessage
	acked    []string
	groupErr error
	cancel   context.CancelFunc
}

func (s *fakeSource) EnsureGroup(ctx context.Context) error { return s.groupErr }

func (s *fakeSource) Read(ctx context.Context) ([]commonredis.StreamMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.readErrs) > 0 {
		err := s.readErrs[0]
		s.readErrs = s.readErrs[1:]
		return nil, err
	}
	if len(s.batches) == 0 {
		s.cancel()
		return nil, nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	s.pending = append(s.pending, b...)
	return b, nil
}

func (s *fakeSource) ReadPending(ctx context.Context) ([]commonredis.StreamMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]commonredis.StreamMessage(nil), s.pending...), nil
}

func (s *fakeSource) Ack(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, id)
	for i, m := range s.pending {
		if m.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	return nil
}

func streamMsg(t *testing.T, id string, ev Event) commonredis.StreamMessage {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return commonredis.StreamMessage{ID: id, Values: map[string]any{"data": string(b), "timestamp": "1"}}
}

func fastConsumer(src StreamSource, h Handler) *ChangeConsumer {
	c := NewChangeConsumer(src, h, zap.NewNop())
	c.minBackoff = 10 * time.Millisecond
	c.maxBackoff = 20 * time.Millisecond
	return c
}

func TestChangeConsumer_AcksHandledAndMalformedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{cancel: cancel}
	src.batches = [][]commonredis.StreamMessage{{
		streamMsg(t, "1-0", NewEvent(7, "ana")),
		{ID: "2-0", Values: map[string]any{"data": "{not json"}},
		streamMsg(t, "3-0", NewEvent(9, "ana")),
	}}

	var seen []int64
	c := fastConsumer(src, func(ctx context.Context, ev Event) error {
		seen = append(seen, ev.DoctorID)
		if ev.DoctorID == 9 {
			return errors.New("cache down")
		}
		return nil
	})

	require.NoError(t, c.Start(ctx))
	// 9 处理失败：不 ACK，下一轮从 pending 重投
	assert.Equal(t, []int64{7, 9, 9}, seen)
	assert.Equal(t, []string{"1-0", "2-0"}, src.acked)
	require.Len(t, src.pending, 1)
	assert.Equal(t, "3-0", src.pending[0].ID)
}

func TestChangeConsumer_RedeliversFailedEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := &fakeSource{cancel: cancel}
	src.batches = [][]commonredis.StreamMessage{{streamMsg(t, "1-0", NewEvent(4, ""))}}

	calls := 0
	c := fastConsumer(src, func(ctx context.Context, ev Event) error {
		calls++
		if calls == 1 {
			return errors.New("cache down")
		}
		return nil
	})

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"1-0"}, src.acked)
	assert.Empty(t, src.pending)
}

func TestChangeConsumer_ProcessesLeftoverPendingOnStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{cancel: cancel}
	src.pending = []commonredis.StreamMessage{streamMsg(t, "1-0", NewEvent(5, ""))}

	var got []int64
	c := fastConsumer(src, func(ctx context.Context, ev Event) error {
		got = append(got, ev.DoctorID)
		return nil
	})

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []int64{5}, got)
	assert.Empty(t, src.pending)
}

func TestChangeConsumer_BacksOffOnReadError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := &fakeSource{readErrs: []error{errors.New("connection refused")}}
	src.cancel = cancel
	src.batches = [][]commonredis.StreamMessage{{streamMsg(t, "1-0", NewEvent(3, ""))}}

	var got []int64
	c := fastConsumer(src, func(ctx context.Context, ev Event) error {
		got = append(got, ev.DoctorID)
		return nil
	})

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []int64{3}, got)
}

func TestChangeConsumer_GroupError(t *testing.T) {
	src := &fakeSource{groupErr: errors.New("NOAUTH")}
	c := NewChangeConsumer(src, func(ctx context.Context, ev Event) error { return nil }, nil)

	err := c.Start(context.Background())
	assert.ErrorContains(t, err, "consumer group")
}

func TestChangeConsumer_RedisStreamRetry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := NewRedisStreamSource(rdb, "doctor-registry:changes", "watchers", "w1")
	src.block = 50 * time.Millisecond
	require.NoError(t, src.EnsureGroup(ctx))

	n := NewRedisStreamNotifier(rdb, "doctor-registry:changes")
	require.NoError(t, n.Notify(ctx, NewEvent(11, "ana")))

	var mu sync.Mutex
	calls := 0
	c := fastConsumer(src, func(ctx context.Context, ev Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return errors.New("cache down")
		}
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 2
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	pending, err := src.ReadPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
	mu.Lock()
	assert.Equal(t, 2, calls)
	mu.Unlock()
}

func TestParseStreamMessage(t *testing.T) {
	ev, err := ParseStreamMessage(commonredis.StreamMessage{ID: "1-0", Values: map[string]any{
		"data": []byte(`{"event_id":"e","type":"doctor.updated","doctor_id":12}`),
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(12), ev.DoctorID)

	_, err = ParseStreamMessage(commonredis.StreamMessage{ID: "2-0", Values: map[string]any{}})
	assert.ErrorContains(t, err, "no data field")

	_, err = ParseStreamMessage(commonredis.StreamMessage{ID: "3-0", Values: map[string]any{"data": `{"type":"doctor.updated"}`}})
	assert.ErrorContains(t, err, "missing doctor_id")
}
