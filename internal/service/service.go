// Package service implements the campaign companion's business rules on top
// of the repositories: registration and login, the campaign registry, the
// character registry and the message board. Every check-then-act sequence
// runs inside one store transaction holding the row locks it depends on.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campaign-companion/internal/queue"
	"github.com/iliyamo/campaign-companion/internal/repository"
)

// EventPublisher receives campaign events once the change is committed.
// Publish is called on the request path and must return without waiting on
// the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.CampaignEvent) error
}

// Clock returns the current time.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// badRequest builds a validation error.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", repository.ErrBadRequest, fmt.Sprintf(format, args...))
}

// publish hands ev to the publisher. Implementations must not block (see
// queue.Dispatcher); failures are logged and never reach the caller because
// the change they describe is already committed.
func publish(ctx context.Context, p EventPublisher, ev queue.CampaignEvent) {
	if p == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Str("campaign_id", ev.CampaignID).Msg("campaign event dropped")
	}
}
