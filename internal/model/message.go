package model

// MessageType distinguishes free chat from dice roll results.
type MessageType string

const (
	MessageChat MessageType = "CHAT"
	MessageRoll MessageType = "ROLL"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool { return t == MessageChat || t == MessageRoll }

// ChatMessage mirrors a row of the `chat_messages` table. Timestamp is in
// unix milliseconds and strictly increases per campaign, so it doubles as
// the pagination cursor.
type ChatMessage struct {
	ID          string      `json:"id"`
	CampaignID  string      `json:"campaignId"`
	SenderID    string      `json:"senderId"`
	SenderName  string      `json:"senderName"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType"`
	Timestamp   int64       `json:"timestamp"`
	IsToGM      bool        `json:"isToGM"`
}
