// Package queue defines the campaign events exchanged over the message
// broker, the publisher used by the API and the consumer that keeps an
// append-only event log.
package queue

// Event types published on the campaign.events queue.
const (
	EventCampaignCreated     = "campaign.created"
	EventCampaignJoined      = "campaign.joined"
	EventCampaignDeleted     = "campaign.deleted"
	EventMessageSent         = "message.sent"
	EventMessageDeleted      = "message.deleted"
	EventCharactersLeveledUp = "characters.leveled_up"
)

// CampaignEvent is published after a campaign-scoped change has been
// committed. It carries enough context for downstream consumers to log or
// notify without querying the primary database. Content of GM-only messages
// is never included.
type CampaignEvent struct {
	Type       string `json:"type"`
	CampaignID string `json:"campaign_id"`
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name,omitempty"`
	SubjectID  string `json:"subject_id,omitempty"`
	Count      int64  `json:"count,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
