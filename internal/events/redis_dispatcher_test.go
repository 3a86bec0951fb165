package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// captureHook intercepts commands before any connection is dialed, so the
// mirrored payload can be inspected without a Redis server.
type captureHook struct {
	cmds []redis.Cmder
}

func (h *captureHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *captureHook) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.cmds = append(h.cmds, cmd)
		return nil
	}
}

func (h *captureHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisDispatcherMirror(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors the event envelope onto the channel", func(t *testing.T) {
		hook := &captureHook{}
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
		client.AddHook(hook)
		t.Cleanup(func() { _ = client.Close() })

		d := NewRedisDispatcher(NewInMemoryDispatcher(), client, "helpdesk.events", zap.NewNop())

		require.NoError(t, d.Publish(ctx, Event{
			ID:       "e1",
			Type:     EventTicketCreated,
			TicketID: "t1",
			Payload:  TicketCreatedPayload{Reference: "TKT-20250110-0001"},
		}))

		require.Len(t, hook.cmds, 1)
		args := hook.cmds[0].Args()
		require.Len(t, args, 3)
		assert.Equal(t, "publish", args[0])
		assert.Equal(t, "helpdesk.events", args[1])

		raw, ok := args[2].([]byte)
		require.True(t, ok, "publish payload should be the marshalled event")

		var envelope map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &envelope))
		assert.Equal(t, "e1", envelope["id"])
		assert.Equal(t, string(EventTicketCreated), envelope["type"])
		assert.Equal(t, "t1", envelope["ticket_id"])

		payload, ok := envelope["payload"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "TKT-20250110-0001", payload["reference"])
	})

	t.Run("local delivery survives an unreachable redis", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		t.Cleanup(func() { _ = client.Close() })

		d := NewRedisDispatcher(NewInMemoryDispatcher(), client, "helpdesk.events", zap.New(core))

		var seen []Event
		d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
			seen = append(seen, e)
			return nil
		})

		require.NoError(t, d.Publish(ctx, Event{ID: "e2", Type: EventTicketCreated, TicketID: "t2"}))

		require.Len(t, seen, 1)
		assert.Equal(t, "t2", seen[0].TicketID)

		warned := logs.FilterMessage("publish event to redis")
		require.Equal(t, 1, warned.Len())
		fields := warned.All()[0].ContextMap()
		assert.Equal(t, "helpdesk.events", fields["channel"])
		assert.Equal(t, string(EventTicketCreated), fields["event_type"])
	})
}
