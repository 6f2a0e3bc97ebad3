package repository // repository for campaigns and their memberships

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/model"
)

// CampaignRepo provides data access to the campaigns and campaign_players
// tables.
type CampaignRepo struct{ q database.Querier } // q is the store or the caller's transaction

func NewCampaignRepo(q database.Querier) *CampaignRepo { return &CampaignRepo{q: q} }

const campaignColumns = "id, name, description, owner_id, owner_name, max_players, created_at"

func scanCampaign(row interface{ Scan(...any) error }, c *model.Campaign) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.OwnerName, &c.MaxPlayers, &c.CreatedAt)
}

// Create inserts a campaign row.
func (r *CampaignRepo) Create(ctx context.Context, c model.Campaign) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO campaigns ("+campaignColumns+") VALUES (?,?,?,?,?,?,?)",
		c.ID, c.Name, c.Description, c.OwnerID, c.OwnerName, c.MaxPlayers, c.CreatedAt)
	return translate(err)
}

// GetByID loads a campaign. With lock set and a transaction in use, the row
// stays locked until the transaction ends, serializing joins, sends and
// deletes against the same campaign.
func (r *CampaignRepo) GetByID(ctx context.Context, id string, lock bool) (model.Campaign, error) {
	query := "SELECT " + campaignColumns + " FROM campaigns WHERE id = ?"
	if lock {
		query += r.q.Dialect().ForUpdate()
	}
	var c model.Campaign
	err := scanCampaign(r.q.QueryRowContext(ctx, query, id), &c)
	if errors.Is(err, sql.ErrNoRows) { // unknown id
		return c, ErrNotFound
	}
	return c, err
}

// ListSummaries returns every campaign newest first with its member count
// and whether userID is a member.
func (r *CampaignRepo) ListSummaries(ctx context.Context, userID string) ([]model.CampaignSummary, error) {
	const q = `SELECT c.id, c.name, c.description, c.owner_id, c.owner_name, c.max_players, c.created_at,
	                  (SELECT COUNT(*) FROM campaign_players p WHERE p.campaign_id = c.id),
	                  (SELECT COUNT(*) FROM campaign_players p WHERE p.campaign_id = c.id AND p.player_id = ?)
	           FROM campaigns c
	           ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.q.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CampaignSummary{} // encode as [] rather than null
	for rows.Next() {
		var s model.CampaignSummary
		var joined int // 0 or 1 from the correlated subquery
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.OwnerID, &s.OwnerName, &s.MaxPlayers, &s.CreatedAt,
			&s.PlayerCount, &joined); err != nil {
			return nil, err
		}
		s.IsJoined = joined > 0
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the campaign row only; dependent rows must be removed first.
func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM campaigns WHERE id = ?", id)
	return err
}

// AddPlayer inserts a membership. A repeated (campaign, player) pair yields
// ErrConflict through the primary key.
func (r *CampaignRepo) AddPlayer(ctx context.Context, p model.Player) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO campaign_players (campaign_id, player_id, player_name, joined_at) VALUES (?,?,?,?)",
		p.CampaignID, p.PlayerID, p.PlayerName, p.JoinedAt)
	return translate(err)
}

// CountPlayers returns the current number of members.
func (r *CampaignRepo) CountPlayers(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM campaign_players WHERE campaign_id = ?", campaignID).Scan(&n)
	return n, err
}

// ListPlayers returns the members of a campaign in join order.
func (r *CampaignRepo) ListPlayers(ctx context.Context, campaignID string) ([]model.Player, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT campaign_id, player_id, player_name, joined_at
		 FROM campaign_players WHERE campaign_id = ?
		 ORDER BY joined_at ASC, player_id ASC`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Player{}
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.CampaignID, &p.PlayerID, &p.PlayerName, &p.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePlayers removes all memberships of a campaign.
func (r *CampaignRepo) DeletePlayers(ctx context.Context, campaignID string) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM campaign_players WHERE campaign_id = ?", campaignID)
	return err
}
