package websocket

import (
	"context"
	"encoding/json"

	"github.com/anjiri1684/studlyf_network/metrics"
	"github.com/anjiri1684/studlyf_network/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bridgeOutbox = 1024

type envelope struct {
	Origin   string          `json:"origin"`
	Identity string          `json:"identity"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data"`
}

// RedisBridge fans emits out to every instance sharing the channel. Local
// clients are served straight from the hub; other instances receive the
// envelope through pub/sub.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	origin  string
	outbox  chan envelope
	log     *zap.SugaredLogger
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, log *zap.SugaredLogger) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: channel,
		hub:     hub,
		origin:  utils.NewID(),
		outbox:  make(chan envelope, bridgeOutbox),
		log:     log,
	}
}

func (b *RedisBridge) Emit(identity, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.hub.EmitRaw(identity, event, data)

	select {
	case b.outbox <- envelope{Origin: b.origin, Identity: identity, Event: event, Data: data}:
		metrics.RealtimeFrames.WithLabelValues("bridged").Inc()
	default:
		metrics.RealtimeFrames.WithLabelValues("bridge_dropped").Inc()
		b.log.Warnw("bridge outbox full, remote delivery skipped", "identity", identity, "event", event)
	}
	return nil
}

// Run publishes queued envelopes and delivers envelopes from other instances
// until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	incoming := sub.Channel()
	b.log.Infow("realtime bridge subscribed", "channel", b.channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-b.outbox:
			payload, err := json.Marshal(env)
			if err != nil {
				b.log.Errorw("failed to encode envelope", "error", err)
				continue
			}
			if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
				b.log.Warnw("failed to publish envelope", "event", env.Event, "error", err)
			}
		case msg, ok := <-incoming:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warnw("discarding malformed envelope", "error", err)
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			b.hub.EmitRaw(env.Identity, env.Event, env.Data)
		}
	}
}
