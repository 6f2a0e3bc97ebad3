package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campaign-companion/internal/handler"
)

// RegisterCampaigns registers the campaign registry and everything scoped
// to one campaign: its message board, its characters and level-up. mw runs on
// every route and must include authentication.
func RegisterCampaigns(e *echo.Echo, c *handler.CampaignHandler, ch *handler.CharacterHandler, m *handler.MessageHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/campaigns", c.List, mw...)
	e.POST("/campaigns", c.Create, mw...)
	e.POST("/campaigns/join", c.Join, mw...)
	e.DELETE("/campaigns/:id", c.Delete, mw...)
	e.GET("/campaigns/:id/players", c.Players, mw...)

	e.GET("/campaigns/:id/messages", m.List, mw...)
	e.POST("/campaigns/:id/messages", m.Send, mw...)
	e.DELETE("/campaigns/:id/messages/:mid", m.Delete, mw...)

	e.GET("/campaigns/:id/characters", ch.ListForCampaign, mw...)
	e.GET("/campaigns/:id/characters/mine", ch.ListMineForCampaign, mw...)
	e.POST("/campaigns/:id/levelup", ch.LevelUp, mw...)
}
