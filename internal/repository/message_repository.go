package repository // repository for campaign chat messages

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/model"
)

// MessageRepo provides data access to the chat_messages table.
type MessageRepo struct{ q database.Querier } // q is the store or the caller's transaction

func NewMessageRepo(q database.Querier) *MessageRepo { return &MessageRepo{q: q} }

const messageColumns = "id, campaign_id, sender_id, sender_name, content, message_type, sent_at, is_to_gm"

func scanMessage(row interface{ Scan(...any) error }, m *model.ChatMessage) error {
	return row.Scan(&m.ID, &m.CampaignID, &m.SenderID, &m.SenderName, &m.Content, &m.MessageType, &m.Timestamp, &m.IsToGM)
}

// Insert stores a message.
func (r *MessageRepo) Insert(ctx context.Context, m model.ChatMessage) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO chat_messages ("+messageColumns+") VALUES (?,?,?,?,?,?,?,?)",
		m.ID, m.CampaignID, m.SenderID, m.SenderName, m.Content, string(m.MessageType), m.Timestamp, m.IsToGM)
	return translate(err)
}

// LastTimestamp returns the newest timestamp in a campaign, or 0.
func (r *MessageRepo) LastTimestamp(ctx context.Context, campaignID string) (int64, error) {
	var ts sql.NullInt64 // MAX over no rows is NULL
	err := r.q.QueryRowContext(ctx,
		"SELECT MAX(sent_at) FROM chat_messages WHERE campaign_id = ?", campaignID).Scan(&ts)
	return ts.Int64, err
}

// Page selects one page of a campaign's messages.
type Page struct {
	CampaignID string
	ViewerID   string
	// SeeAll disables the GM-only filter; set for the campaign owner.
	SeeAll bool
	Limit  int
	// Before, when non-zero, excludes messages at or after this timestamp.
	Before int64
}

// List returns the newest Limit messages visible under p, oldest first.
// GM-only messages are included only for their sender unless SeeAll is set.
func (r *MessageRepo) List(ctx context.Context, p Page) ([]model.ChatMessage, error) {
	var (
		where = []string{"campaign_id = ?"}
		args  = []any{p.CampaignID}
	)
	if !p.SeeAll { // hide other players' GM-only messages
		where = append(where, "(is_to_gm = ? OR sender_id = ?)")
		args = append(args, false, p.ViewerID)
	}
	if p.Before > 0 { // cursor: strictly older than the oldest message already seen
		where = append(where, "sent_at < ?")
		args = append(args, p.Before)
	}
	args = append(args, p.Limit) // LIMIT is bound last

	rows, err := r.q.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM chat_messages WHERE "+strings.Join(where, " AND ")+
			" ORDER BY sent_at DESC, id DESC LIMIT ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		if err := scanMessage(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// newest-first for the cursor, chronological for the caller
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// GetByID loads a message that belongs to campaignID.
func (r *MessageRepo) GetByID(ctx context.Context, campaignID, id string) (model.ChatMessage, error) {
	var m model.ChatMessage
	err := scanMessage(r.q.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM chat_messages WHERE id = ? AND campaign_id = ?", id, campaignID), &m)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

// Delete removes a single message.
func (r *MessageRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM chat_messages WHERE id = ?", id)
	return err
}

// DeleteByCampaign removes every message of a campaign.
func (r *MessageRepo) DeleteByCampaign(ctx context.Context, campaignID string) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM chat_messages WHERE campaign_id = ?", campaignID)
	return err
}
