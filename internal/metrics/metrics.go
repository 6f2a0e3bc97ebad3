package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	CampaignJoinsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_joins_total",
		Help: "Campaign join attempts by outcome",
	}, []string{"result"})
	MessagesSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_messages_sent_total",
		Help: "Chat and roll messages stored",
	}, []string{"type"})
	LevelUpsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campaign_character_levelups_total",
		Help: "Characters levelled up by campaign owners",
	})
	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_events_total",
		Help: "Campaign events handed to the broker by outcome",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, CampaignJoinsTotal, MessagesSentTotal, LevelUpsTotal, EventsTotal)
}

// Middleware records request count and latency per route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error so the recorded status is final
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			labels := prometheus.Labels{
				"method": c.Request().Method,
				"path":   path,
				"status": strconv.Itoa(c.Response().Status),
			}
			HTTPRequestsTotal.With(labels).Inc()
			HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Handler exposes the default registry.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
