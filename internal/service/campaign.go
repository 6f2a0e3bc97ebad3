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
	ErrCampaignNotFound = fmt.Errorf("%w: campaign not found", repository.ErrNotFound)
	ErrCampaignFull     = fmt.Errorf("%w: campaign is full", repository.ErrConflict)
	ErrAlreadyJoined    = fmt.Errorf("%w: already joined this campaign", repository.ErrConflict)
	ErrNotOwner         = fmt.Errorf("%w: only the campaign owner can do this", repository.ErrForbidden)
	ErrNotMember        = fmt.Errorf("%w: not a member of this campaign", repository.ErrForbidden)
)

const maxNameLen = 255

// CampaignInput carries the fields of a new campaign.
type CampaignInput struct {
	Name        string
	Description string
	MaxPlayers  int
}

func (in *CampaignInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return badRequest("name is required")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLen {
		return badRequest("name must be at most %d characters", maxNameLen)
	}
	if err := tooLong("description", &in.Description, maxLongTextLen); err != nil {
		return err
	}
	if in.MaxPlayers < 1 {
		return badRequest("maxPlayers must be at least 1")
	}
	return nil
}

// CampaignService owns campaign lifecycle and membership.
type CampaignService struct {
	db     *database.DB
	events EventPublisher
	now    Clock
}

func NewCampaignService(db *database.DB, events EventPublisher) *CampaignService {
	return &CampaignService{db: db, events: events, now: systemClock}
}

// List returns every campaign, newest first, annotated for userID.
func (s *CampaignService) List(ctx context.Context, userID string) ([]model.CampaignSummary, error) {
	return repository.NewCampaignRepo(s.db).ListSummaries(ctx, userID)
}

// Create stores a campaign owned by the caller and enrolls the owner as its
// first member in the same transaction.
func (s *CampaignService) Create(ctx context.Context, owner model.Identity, in CampaignInput) (model.CampaignSummary, error) {
	if err := in.validate(); err != nil {
		return model.CampaignSummary{}, err
	}
	now := s.now().UnixMilli()
	c := model.Campaign{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     owner.UserID,
		OwnerName:   owner.Username,
		MaxPlayers:  in.MaxPlayers,
		CreatedAt:   now,
	}
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		campaigns := repository.NewCampaignRepo(tx)
		if err := campaigns.Create(ctx, c); err != nil {
			return err
		}
		return campaigns.AddPlayer(ctx, model.Player{
			CampaignID: c.ID,
			PlayerID:   owner.UserID,
			PlayerName: owner.Username,
			JoinedAt:   now,
		})
	})
	if err != nil {
		return model.CampaignSummary{}, err
	}
	publish(ctx, s.events, queue.CampaignEvent{
		Type: queue.EventCampaignCreated, CampaignID: c.ID, ActorID: owner.UserID, ActorName: owner.Username,
	})
	return model.CampaignSummary{Campaign: c, PlayerCount: 1, IsJoined: true}, nil
}

// Join enrolls the caller. The campaign row is locked while the capacity is
// checked and the membership inserted, so concurrent joiners racing for the
// last slot are serialized and only one of them succeeds.
func (s *CampaignService) Join(ctx context.Context, who model.Identity, campaignID string) error {
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		campaigns := repository.NewCampaignRepo(tx)
		c, err := campaigns.GetByID(ctx, campaignID, true)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCampaignNotFound
		}
		if err != nil {
			return err
		}
		count, err := campaigns.CountPlayers(ctx, campaignID)
		if err != nil {
			return err
		}
		if count >= c.MaxPlayers {
			return ErrCampaignFull
		}
		member, err := access.IsMember(ctx, tx, who.UserID, campaignID, false)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyJoined
		}
		err = campaigns.AddPlayer(ctx, model.Player{
			CampaignID: campaignID,
			PlayerID:   who.UserID,
			PlayerName: who.Username,
			JoinedAt:   s.now().UnixMilli(),
		})
		if errors.Is(err, repository.ErrConflict) {
			return ErrAlreadyJoined
		}
		return err
	})
	switch {
	case err == nil:
		metrics.CampaignJoinsTotal.WithLabelValues("joined").Inc()
	case errors.Is(err, ErrCampaignFull):
		metrics.CampaignJoinsTotal.WithLabelValues("full").Inc()
		return err
	case errors.Is(err, ErrAlreadyJoined):
		metrics.CampaignJoinsTotal.WithLabelValues("already_joined").Inc()
		return err
	default:
		return err
	}
	publish(ctx, s.events, queue.CampaignEvent{
		Type: queue.EventCampaignJoined, CampaignID: campaignID, ActorID: who.UserID, ActorName: who.Username,
	})
	return nil
}

// Delete removes a campaign with its memberships and messages. Characters
// assigned to it are detached, not deleted.
func (s *CampaignService) Delete(ctx context.Context, requesterID, campaignID string) error {
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		campaigns := repository.NewCampaignRepo(tx)
		if _, err := campaigns.GetByID(ctx, campaignID, true); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCampaignNotFound
			}
			return err
		}
		owner, err := access.IsOwner(ctx, tx, requesterID, campaignID)
		if err != nil {
			return err
		}
		if !owner {
			return ErrNotOwner
		}
		if _, err := repository.NewCharacterRepo(tx).DetachCampaign(ctx, campaignID); err != nil {
			return err
		}
		if err := repository.NewMessageRepo(tx).DeleteByCampaign(ctx, campaignID); err != nil {
			return err
		}
		if err := campaigns.DeletePlayers(ctx, campaignID); err != nil {
			return err
		}
		return campaigns.Delete(ctx, campaignID)
	})
	if err != nil {
		return err
	}
	publish(ctx, s.events, queue.CampaignEvent{
		Type: queue.EventCampaignDeleted, CampaignID: campaignID, ActorID: requesterID,
	})
	return nil
}

// Players lists the members of a campaign to one of its members.
func (s *CampaignService) Players(ctx context.Context, requesterID, campaignID string) ([]model.Player, error) {
	var out []model.Player
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		member, err := access.IsMember(ctx, tx, requesterID, campaignID, false)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}
		out, err = repository.NewCampaignRepo(tx).ListPlayers(ctx, campaignID)
		return err
	})
	return out, err
}
