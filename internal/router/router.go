package router // package router wires handlers and middleware onto the echo instance

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/campaign-companion/internal/config"
	"github.com/iliyamo/campaign-companion/internal/handler"
	"github.com/iliyamo/campaign-companion/internal/logging"
	"github.com/iliyamo/campaign-companion/internal/metrics"
	"github.com/iliyamo/campaign-companion/internal/middleware"
	"github.com/iliyamo/campaign-companion/internal/utils"
)

// Deps is everything the HTTP layer needs. Redis may be nil.
type Deps struct {
	DB             handler.Pinger
	Tokens         *utils.TokenIssuer
	Redis          *redis.Client
	RateLimit      config.RateLimitConfig
	RequestTimeout time.Duration

	Auth       *handler.AuthHandler
	Campaigns  *handler.CampaignHandler
	Characters *handler.CharacterHandler
	Messages   *handler.MessageHandler
}

// New builds the echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(metrics.Middleware())
	e.Use(logging.AccessLog(middleware.UserID))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(d.RequestTimeout))

	RegisterRoutes(e, d.DB)
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	RegisterAuth(e, d.Auth, d.Tokens, limit)
	auth := []echo.MiddlewareFunc{middleware.JWTAuth(d.Tokens), limit}
	RegisterCampaigns(e, d.Campaigns, d.Characters, d.Messages, auth...)
	RegisterCharacters(e, d.Characters, auth...)
	return e
}

// RegisterRoutes registers the operational endpoints that need no
// authentication: the health check and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", metrics.Handler())
}

// RegisterAuth registers registration, login and the identity echo. Only
// /me requires a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *utils.TokenIssuer, limit echo.MiddlewareFunc) {
	e.POST("/register", a.Register, limit)
	e.POST("/login", a.Login, limit)
	e.GET("/me", a.Me, middleware.JWTAuth(tokens), limit)
}
