package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/campaign-companion/internal/access"
	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/metrics"
	"github.com/iliyamo/campaign-companion/internal/model"
	"github.com/iliyamo/campaign-companion/internal/queue"
	"github.com/iliyamo/campaign-companion/internal/repository"
)

var (
	ErrCharacterNotFound   = fmt.Errorf("%w: character not found", repository.ErrNotFound)
	ErrNotCharacterOwner   = fmt.Errorf("%w: not your character", repository.ErrForbidden)
	ErrCharacterInCampaign = fmt.Errorf("%w: you already have a character in this campaign", repository.ErrConflict)
)

// CharacterService owns character sheets and their campaign assignment.
//
// Lock order is campaign row, then membership row, then character row; every
// method that takes more than one of them follows it.
type CharacterService struct {
	db     *database.DB
	events EventPublisher
	now    Clock
}

func NewCharacterService(db *database.DB, events EventPublisher) *CharacterService {
	return &CharacterService{db: db, events: events, now: systemClock}
}

// Create stores a new, unassigned character owned by ownerID.
func (s *CharacterService) Create(ctx context.Context, ownerID string, in SheetInput) (model.Character, error) {
	sheet, err := in.Sheet()
	if err != nil {
		return model.Character{}, err
	}
	c := model.Character{UserID: ownerID, CreatedAt: s.now().UnixMilli()}
	sheet.Apply(&c)
	if err := repository.NewCharacterRepo(s.db).Create(ctx, &c); err != nil {
		return model.Character{}, err
	}
	return c, nil
}

// ListMine returns the caller's characters, newest first.
func (s *CharacterService) ListMine(ctx context.Context, userID string) ([]model.Character, error) {
	return repository.NewCharacterRepo(s.db).ListByUser(ctx, userID)
}

// ListForCampaign returns every character assigned to a campaign. Only
// members may look.
func (s *CharacterService) ListForCampaign(ctx context.Context, requesterID, campaignID string) ([]model.Character, error) {
	return s.listInCampaign(ctx, requesterID, campaignID, false)
}

// ListMineForCampaign returns the caller's characters assigned to a campaign.
func (s *CharacterService) ListMineForCampaign(ctx context.Context, requesterID, campaignID string) ([]model.Character, error) {
	return s.listInCampaign(ctx, requesterID, campaignID, true)
}

func (s *CharacterService) listInCampaign(ctx context.Context, requesterID, campaignID string, mineOnly bool) ([]model.Character, error) {
	var out []model.Character
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		member, err := access.IsMember(ctx, tx, requesterID, campaignID, false)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}
		chars := repository.NewCharacterRepo(tx)
		if mineOnly {
			out, err = chars.ListByUserAndCampaign(ctx, requesterID, campaignID)
		} else {
			out, err = chars.ListByCampaign(ctx, campaignID)
		}
		return err
	})
	return out, err
}

// lockOwned locks a character row and checks that requesterID owns it.
func lockOwned(ctx context.Context, tx *database.Tx, requesterID string, id int64) (model.Character, error) {
	c, err := repository.NewCharacterRepo(tx).GetByID(ctx, id, true)
	if errors.Is(err, repository.ErrNotFound) {
		return c, ErrCharacterNotFound
	}
	if err != nil {
		return c, err
	}
	owns, err := access.OwnsCharacter(ctx, tx, requesterID, id)
	if err != nil {
		return c, err
	}
	if !owns {
		return c, ErrNotCharacterOwner
	}
	return c, nil
}

// Update replaces every editable field of the caller's character.
func (s *CharacterService) Update(ctx context.Context, requesterID string, id int64, in SheetInput) (model.Character, error) {
	sheet, err := in.Sheet()
	if err != nil {
		return model.Character{}, err
	}
	var out model.Character
	err = s.db.InTx(ctx, func(tx *database.Tx) error {
		if _, err := lockOwned(ctx, tx, requesterID, id); err != nil {
			return err
		}
		chars := repository.NewCharacterRepo(tx)
		if err := chars.UpdateSheet(ctx, id, sheet); err != nil {
			return err
		}
		out, err = chars.GetWithCampaign(ctx, id)
		return err
	})
	return out, err
}

// Delete detaches and removes the caller's character.
func (s *CharacterService) Delete(ctx context.Context, requesterID string, id int64) error {
	return s.db.InTx(ctx, func(tx *database.Tx) error {
		if _, err := lockOwned(ctx, tx, requesterID, id); err != nil {
			return err
		}
		chars := repository.NewCharacterRepo(tx)
		if err := chars.SetCampaign(ctx, id, nil); err != nil {
			return err
		}
		return chars.Delete(ctx, id)
	})
}

// Assign puts the caller's character into a campaign they belong to. A user
// may have at most one character assigned per campaign; assigning the same
// character twice is a no-op.
func (s *CharacterService) Assign(ctx context.Context, requesterID string, id int64, campaignID string) error {
	return s.db.InTx(ctx, func(tx *database.Tx) error {
		chars := repository.NewCharacterRepo(tx)
		// existence and ownership first so a foreign character reads as absent
		c, err := chars.GetByID(ctx, id, false)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && c.UserID != requesterID) {
			return ErrCharacterNotFound
		}
		if err != nil {
			return err
		}

		if _, err := repository.NewCampaignRepo(tx).GetByID(ctx, campaignID, true); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotMember
			}
			return err
		}
		member, err := access.IsMember(ctx, tx, requesterID, campaignID, true)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}

		c, err = lockOwned(ctx, tx, requesterID, id)
		if errors.Is(err, ErrNotCharacterOwner) {
			return ErrCharacterNotFound
		}
		if err != nil {
			return err
		}
		if c.CampaignID != nil && *c.CampaignID == campaignID {
			return nil
		}
		if _, found, err := chars.FindOtherAssigned(ctx, requesterID, campaignID, id); err != nil {
			return err
		} else if found {
			return ErrCharacterInCampaign
		}
		return chars.SetCampaign(ctx, id, &campaignID)
	})
}

// Unassign clears the campaign of the caller's character.
func (s *CharacterService) Unassign(ctx context.Context, requesterID string, id int64) error {
	return s.db.InTx(ctx, func(tx *database.Tx) error {
		if _, err := lockOwned(ctx, tx, requesterID, id); err != nil {
			return err
		}
		return repository.NewCharacterRepo(tx).SetCampaign(ctx, id, nil)
	})
}

// LevelUp raises every character assigned to the campaign by one level. Only
// the campaign owner may do this; zero updated characters is not an error.
func (s *CharacterService) LevelUp(ctx context.Context, requesterID, campaignID string) (int64, error) {
	var n int64
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		if _, err := repository.NewCampaignRepo(tx).GetByID(ctx, campaignID, true); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotOwner
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
		n, err = repository.NewCharacterRepo(tx).LevelUpCampaign(ctx, campaignID)
		return err
	})
	if err != nil {
		return 0, err
	}
	metrics.LevelUpsTotal.Add(float64(n))
	publish(ctx, s.events, queue.CampaignEvent{
		Type: queue.EventCharactersLeveledUp, CampaignID: campaignID, ActorID: requesterID, Count: n,
	})
	return n, nil
}
