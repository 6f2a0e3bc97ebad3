package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campaign-companion/internal/handler"
)

// RegisterCharacters registers the caller's character sheets and their
// campaign assignment. mw runs on every route and must include
// authentication.
func RegisterCharacters(e *echo.Echo, h *handler.CharacterHandler, mw ...echo.MiddlewareFunc) {
	e.POST("/characters", h.Create, mw...)
	e.GET("/characters", h.ListMine, mw...)
	e.PUT("/characters/:id", h.Update, mw...)
	e.DELETE("/characters/:id", h.Delete, mw...)
	e.PUT("/characters/:id/assign/:campaignId", h.Assign, mw...)
	e.PUT("/characters/:id/unassign", h.Unassign, mw...)
}
