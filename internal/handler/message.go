package handler // HTTP handlers for the campaign message board

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campaign-companion/internal/model"
	"github.com/iliyamo/campaign-companion/internal/service"
)

// MessageHandler serves a campaign's message board.
type MessageHandler struct {
	Messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{Messages: messages}
}

type sendMessageReq struct {
	Content     string  `json:"content"`
	MessageType string  `json:"messageType"`
	IsToGM      bool    `json:"isToGM"`     // visible to the sender and the campaign owner only
	CampaignID  *string `json:"campaignId"` // optional, must equal the path id when present
}

// List returns one page of messages, oldest first. `before` is the
// timestamp of the oldest message already seen.
func (h *MessageHandler) List(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	campaignID, ok := pathString(c, "id")
	if !ok {
		return badRequest(c, "campaign id is required")
	}

	// paging parameters are optional; reject bad values instead of clamping them
	limit := service.DefaultMessageLimit
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > service.MaxMessageLimit {
			return badRequest(c, "limit must be between 1 and "+strconv.Itoa(service.MaxMessageLimit))
		}
		limit = n
	}
	var before int64 // zero means start from the newest message
	if s := c.QueryParam("before"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return badRequest(c, "before must be a positive timestamp")
		}
		before = n
	}

	msgs, err := h.Messages.List(c.Request().Context(), who.UserID, campaignID, limit, before)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// Send posts a chat or roll message to the campaign in the path.
func (h *MessageHandler) Send(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	campaignID, ok := pathString(c, "id")
	if !ok {
		return badRequest(c, "campaign id is required")
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.CampaignID != nil && strings.TrimSpace(*req.CampaignID) != campaignID {
		return badRequest(c, "campaignId does not match the path")
	}
	// sender name is taken from the token, never from the body
	m, err := h.Messages.Send(c.Request().Context(), who, campaignID, service.MessageInput{
		Content:     req.Content,
		MessageType: model.MessageType(req.MessageType),
		IsToGM:      req.IsToGM,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m) // echo the stored message with its server timestamp
}

// Delete removes a message sent by the caller, or any message when the
// caller owns the campaign.
func (h *MessageHandler) Delete(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	campaignID, ok := pathString(c, "id")
	if !ok {
		return badRequest(c, "campaign id is required")
	}
	messageID, ok := pathString(c, "mid") // message ids are UUID strings
	if !ok {
		return badRequest(c, "message id is required")
	}
	if err := h.Messages.Delete(c.Request().Context(), who.UserID, campaignID, messageID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
