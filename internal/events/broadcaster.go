package events

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Broadcaster fans an event out to the in-process bus and, detached from
// the caller, to the external push collaborator. Push failures are logged
// and never surface to the publishing operation.
type Broadcaster struct {
	bus     *Bus
	pusher  Pusher
	channel string
	timeout time.Duration
}

func NewBroadcaster(bus *Bus, pusher Pusher, channel string, timeout time.Duration) *Broadcaster {
	if pusher == nil {
		pusher = NopPusher{}
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Broadcaster{bus: bus, pusher: pusher, channel: channel, timeout: timeout}
}

func (b *Broadcaster) Broadcast(name string, payload any) {
	ev := Event{Name: name, Payload: payload, At: time.Now().UTC()}
	b.bus.Publish(ev)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		if err := b.pusher.Publish(ctx, b.channel, name, payload); err != nil {
			log.Warn().Err(err).Str("event", name).Msg("broadcaster: push delivery failed")
		}
	}()
}

func (b *Broadcaster) Bus() *Bus { return b.bus }
