package handler // HTTP handlers for the campaign registry

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campaign-companion/internal/service"
)

// CampaignHandler serves the campaign registry.
type CampaignHandler struct {
	Campaigns *service.CampaignService // lifecycle and membership rules
}

func NewCampaignHandler(campaigns *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{Campaigns: campaigns}
}

type createCampaignReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxPlayers  *int   `json:"maxPlayers"` // pointer so a missing field is told apart from 0
}

type joinCampaignReq struct {
	CampaignID string `json:"campaignId"`
}

// List returns every campaign annotated for the caller.
func (h *CampaignHandler) List(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.Campaigns.List(c.Request().Context(), who.UserID) // summaries with live member counts
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list) // newest campaign first
}

// Create stores a campaign owned by the caller.
func (h *CampaignHandler) Create(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req createCampaignReq
	if err := c.Bind(&req); err != nil { // malformed JSON
		return badRequest(c, "invalid body")
	}
	if req.MaxPlayers == nil { // capacity has no default
		return badRequest(c, "maxPlayers is required")
	}
	summary, err := h.Campaigns.Create(c.Request().Context(), who, service.CampaignInput{
		Name:        req.Name,
		Description: req.Description,
		MaxPlayers:  *req.MaxPlayers,
	}) // name and capacity are validated by the service
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, summary) // the owner is already counted as a player
}

// Join enrolls the caller in the campaign named in the body.
func (h *CampaignHandler) Join(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req joinCampaignReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	id := strings.TrimSpace(req.CampaignID) // the target comes from the body, not the path
	if id == "" {
		return badRequest(c, "campaignId is required")
	}
	if err := h.Campaigns.Join(c.Request().Context(), who, id); err != nil { // 404 missing, 409 full or already joined
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"joined": true, "campaignId": id})
}

// Delete removes a campaign owned by the caller.
func (h *CampaignHandler) Delete(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathString(c, "id")
	if !ok {
		return badRequest(c, "campaign id is required")
	}
	if err := h.Campaigns.Delete(c.Request().Context(), who.UserID, id); err != nil { // only the owner may delete
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// Players lists a campaign's members.
func (h *CampaignHandler) Players(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathString(c, "id")
	if !ok {
		return badRequest(c, "campaign id is required")
	}
	players, err := h.Campaigns.Players(c.Request().Context(), who.UserID, id) // members only
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, players)
}
