package queue

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campaign-companion/internal/metrics"
)

// ErrBufferFull is returned when an event is dropped because the dispatcher
// buffer has no room left.
var ErrBufferFull = errors.New("event buffer full")

// Sender delivers one event to the broker.
type Sender interface {
	Publish(ctx context.Context, ev CampaignEvent) error
}

// Dispatcher decouples request handling from the broker. Publish only ever
// enqueues; Run drains the buffer into the Sender on its own goroutine.
type Dispatcher struct {
	events      chan CampaignEvent
	sink        Sender
	sendTimeout time.Duration
}

// NewDispatcher returns a dispatcher buffering up to size events for sink.
func NewDispatcher(sink Sender, size int) *Dispatcher {
	if size < 1 {
		size = 1
	}
	return &Dispatcher{events: make(chan CampaignEvent, size), sink: sink, sendTimeout: 5 * time.Second}
}

// Publish enqueues ev without blocking. A full buffer drops the event.
func (d *Dispatcher) Publish(_ context.Context, ev CampaignEvent) error {
	select {
	case d.events <- ev:
		return nil
	default:
		metrics.EventsTotal.WithLabelValues("dropped").Inc()
		return ErrBufferFull
	}
}

// Run forwards buffered events to the sink until ctx is cancelled. Events
// still buffered at that point are flushed with a short deadline.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.flush()
			return
		case ev := <-d.events:
			d.send(ctx, ev)
		}
	}
}

func (d *Dispatcher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	for {
		select {
		case ev := <-d.events:
			if ctx.Err() != nil {
				metrics.EventsTotal.WithLabelValues("dropped").Inc()
				continue
			}
			d.send(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, ev CampaignEvent) {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	if err := d.sink.Publish(ctx, ev); err != nil {
		metrics.EventsTotal.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Str("event", ev.Type).Str("campaign_id", ev.CampaignID).Msg("publish campaign event failed")
		return
	}
	metrics.EventsTotal.WithLabelValues("published").Inc()
}
