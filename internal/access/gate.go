// Package access holds the authorization predicates shared by the campaign,
// character and message services. The predicates keep no state: they read
// the membership, campaign and character tables through the caller's
// transaction so that the answer is consistent with the write it guards.
package access

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campaign-companion/internal/database"
)

// IsMember reports whether userID has joined campaignID. With lock set the
// membership row stays locked until the transaction ends, so a decision
// taken on it cannot race with another write by the same member.
func IsMember(ctx context.Context, q database.Querier, userID, campaignID string, lock bool) (bool, error) {
	query := "SELECT player_id FROM campaign_players WHERE campaign_id = ? AND player_id = ?"
	if lock {
		query += q.Dialect().ForUpdate()
	}
	var id string
	err := q.QueryRowContext(ctx, query, campaignID, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// IsOwner reports whether userID created campaignID. A missing campaign is
// reported as not owned.
func IsOwner(ctx context.Context, q database.Querier, userID, campaignID string) (bool, error) {
	var ownerID string
	err := q.QueryRowContext(ctx, "SELECT owner_id FROM campaigns WHERE id = ?", campaignID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ownerID == userID, nil
}

// OwnsCharacter reports whether userID owns characterID.
func OwnsCharacter(ctx context.Context, q database.Querier, userID string, characterID int64) (bool, error) {
	var ownerID string
	err := q.QueryRowContext(ctx, "SELECT user_id FROM characters WHERE id = ?", characterID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ownerID == userID, nil
}
