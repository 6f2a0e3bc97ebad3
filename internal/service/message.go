package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iliyamo/campaign-companion/internal/access"
	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/metrics"
	"github.com/iliyamo/campaign-companion/internal/model"
	"github.com/iliyamo/campaign-companion/internal/queue"
	"github.com/iliyamo/campaign-companion/internal/repository"
)

var (
	ErrMessageNotFound = fmt.Errorf("%w: message not found", repository.ErrNotFound)
	ErrNotSender       = fmt.Errorf("%w: only the sender or the campaign owner can delete this message", repository.ErrForbidden)
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
	maxContentLen       = 4000
)

// MessageInput carries a new chat or roll message.
type MessageInput struct {
	Content     string
	MessageType model.MessageType
	IsToGM      bool
}

func (in *MessageInput) validate() error {
	if strings.TrimSpace(in.Content) == "" {
		return badRequest("content is required")
	}
	if utf8.RuneCountInString(in.Content) > maxContentLen {
		return badRequest("content must be at most %d characters", maxContentLen)
	}
	in.MessageType = model.MessageType(strings.ToUpper(string(in.MessageType)))
	if !in.MessageType.Valid() {
		return badRequest("messageType must be CHAT or ROLL")
	}
	return nil
}

// MessageService is the per-campaign chat and roll log.
type MessageService struct {
	db     *database.DB
	events EventPublisher
	now    Clock
}

func NewMessageService(db *database.DB, events EventPublisher) *MessageService {
	return &MessageService{db: db, events: events, now: systemClock}
}

// List returns up to limit messages older than before (0 for the newest),
// in chronological order. GM-only messages are visible to their sender and
// the campaign owner only.
func (s *MessageService) List(ctx context.Context, requesterID, campaignID string, limit int, before int64) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}
	var out []model.ChatMessage
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		member, err := access.IsMember(ctx, tx, requesterID, campaignID, false)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}
		owner, err := access.IsOwner(ctx, tx, requesterID, campaignID)
		if err != nil {
			return err
		}
		out, err = repository.NewMessageRepo(tx).List(ctx, repository.Page{
			CampaignID: campaignID,
			ViewerID:   requesterID,
			SeeAll:     owner,
			Limit:      limit,
			Before:     before,
		})
		return err
	})
	return out, err
}

// Send stores a message from a member and returns the stored record. The
// campaign row is locked while the timestamp is chosen so timestamps
// strictly increase within a campaign.
func (s *MessageService) Send(ctx context.Context, sender model.Identity, campaignID string, in MessageInput) (model.ChatMessage, error) {
	if err := in.validate(); err != nil {
		return model.ChatMessage{}, err
	}
	m := model.ChatMessage{
		ID:          uuid.NewString(),
		CampaignID:  campaignID,
		SenderID:    sender.UserID,
		SenderName:  sender.Username,
		Content:     in.Content,
		MessageType: in.MessageType,
		IsToGM:      in.IsToGM,
	}
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		if _, err := repository.NewCampaignRepo(tx).GetByID(ctx, campaignID, true); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotMember
			}
			return err
		}
		member, err := access.IsMember(ctx, tx, sender.UserID, campaignID, false)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}
		messages := repository.NewMessageRepo(tx)
		last, err := messages.LastTimestamp(ctx, campaignID)
		if err != nil {
			return err
		}
		m.Timestamp = max(s.now().UnixMilli(), last+1)
		return messages.Insert(ctx, m)
	})
	if err != nil {
		return model.ChatMessage{}, err
	}
	metrics.MessagesSentTotal.WithLabelValues(string(m.MessageType)).Inc()
	publish(ctx, s.events, queue.CampaignEvent{
		Type: queue.EventMessageSent, CampaignID: campaignID, ActorID: sender.UserID, ActorName: sender.Username, SubjectID: m.ID,
	})
	return m, nil
}

// Delete removes a message. Only its sender or the campaign owner may.
func (s *MessageService) Delete(ctx context.Context, requesterID, campaignID, messageID string) error {
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		messages := repository.NewMessageRepo(tx)
		m, err := messages.GetByID(ctx, campaignID, messageID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		if m.SenderID != requesterID {
			owner, err := access.IsOwner(ctx, tx, requesterID, campaignID)
			if err != nil {
				return err
			}
			if !owner {
				return ErrNotSender
			}
		}
		return messages.Delete(ctx, messageID)
	})
	if err != nil {
		return err
	}
	publish(ctx, s.events, queue.CampaignEvent{
		Type: queue.EventMessageDeleted, CampaignID: campaignID, ActorID: requesterID, SubjectID: messageID,
	})
	return nil
}
