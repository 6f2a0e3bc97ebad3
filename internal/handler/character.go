package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campaign-companion/internal/service"
)

// CharacterHandler serves character sheets and campaign assignment.
type CharacterHandler struct {
	Characters *service.CharacterService
}

func NewCharacterHandler(characters *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{Characters: characters}
}

// Create stores a new character for the caller.
func (h *CharacterHandler) Create(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req service.SheetInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ch, err := h.Characters.Create(c.Request().Context(), who.UserID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

// ListMine returns the caller's characters.
func (h *CharacterHandler) ListMine(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.Characters.ListMine(c.Request().Context(), who.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Update replaces the sheet of one of the caller's characters.
func (h *CharacterHandler) Update(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid character id")
	}
	var req service.SheetInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ch, err := h.Characters.Update(c.Request().Context(), who.UserID, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

// Delete removes one of the caller's characters.
func (h *CharacterHandler) Delete(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid character id")
	}
	if err := h.Characters.Delete(c.Request().Context(), who.UserID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// Assign puts a character into a campaign.
func (h *CharacterHandler) Assign(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid character id")
	}
	campaignID, ok := pathString(c, "campaignId")
	if !ok {
		return badRequest(c, "campaign id is required")
	}
	if err := h.Characters.Assign(c.Request().Context(), who.UserID, id, campaignID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"assigned": true, "characterId": id, "campaignId": campaignID})
}

// Unassign takes a character out of its campaign.
func (h *CharacterHandler) Unassign(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid character id")
	}
	if err := h.Characters.Unassign(c.Request().Context(), who.UserID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unassigned": true, "characterId": id})
}

// ListForCampaign returns every character assigned to a campaign.
func (h *CharacterHandler) ListForCampaign(c echo.Context) error {
	return h.listInCampaign(c, false)
}

// ListMineForCampaign returns the caller's characters in a campaign.
func (h *CharacterHandler) ListMineForCampaign(c echo.Context) error {
	return h.listInCampaign(c, true)
}

func (h *CharacterHandler) listInCampaign(c echo.Context, mine bool) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	campaignID, ok := pathString(c, "id")
	if !ok {
		return badRequest(c, "campaign id is required")
	}
	list := h.Characters.ListForCampaign
	if mine {
		list = h.Characters.ListMineForCampaign
	}
	out, err := list(c.Request().Context(), who.UserID, campaignID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// LevelUp raises every character in the campaign by one level.
func (h *CharacterHandler) LevelUp(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	campaignID, ok := pathString(c, "id")
	if !ok {
		return badRequest(c, "campaign id is required")
	}
	n, err := h.Characters.LevelUp(c.Request().Context(), who.UserID, campaignID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}
