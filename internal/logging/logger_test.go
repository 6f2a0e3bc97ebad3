package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAccessLogWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	InitWriter("prod", &buf)

	e := echo.New()
	e.Use(AccessLog(func(echo.Context) string { return "user-1" }))
	e.GET("/campaigns/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campaigns/abc", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["route"] != "/campaigns/:id" || line["status"] != float64(http.StatusTeapot) || line["user_id"] != "user-1" {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestAccessLogRecordsErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	InitWriter("prod", &buf)

	e := echo.New()
	e.Use(AccessLog(nil))
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "down")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["level"] != "error" || line["status"] != float64(http.StatusServiceUnavailable) {
		t.Fatalf("unexpected log line %v", line)
	}
}
