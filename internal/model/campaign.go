package model

// Campaign mirrors a row of the `campaigns` table.
//
// OwnerName is a snapshot of the owner's username taken at creation time and
// is never refreshed; the same holds for Player.PlayerName and
// ChatMessage.SenderName.
type Campaign struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
	OwnerName   string `json:"ownerName"`
	MaxPlayers  int    `json:"maxPlayers"`
	CreatedAt   int64  `json:"createdAt"`
}

// CampaignSummary is a campaign annotated with its live member count and
// whether the caller is a member.
type CampaignSummary struct {
	Campaign
	PlayerCount int  `json:"playerCount"`
	IsJoined    bool `json:"isJoined"`
}

// Player mirrors a row of the `campaign_players` table.
type Player struct {
	CampaignID string `json:"campaignId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	JoinedAt   int64  `json:"joinedAt"`
}
