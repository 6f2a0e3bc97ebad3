package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/campaign-companion/internal/config"
	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/handler"
	"github.com/iliyamo/campaign-companion/internal/service"
	"github.com/iliyamo/campaign-companion/internal/utils"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	tokens := utils.NewTokenIssuer("test-secret", "campaign-companion", "clients", time.Hour)
	auth, err := service.NewAuthService(db, tokens, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	return New(Deps{
		DB:             db,
		Tokens:         tokens,
		RateLimit:      config.RateLimitConfig{Enabled: false},
		RequestTimeout: 5 * time.Second,
		Auth:           handler.NewAuthHandler(auth),
		Campaigns:      handler.NewCampaignHandler(service.NewCampaignService(db, nil)),
		Characters:     handler.NewCharacterHandler(service.NewCharacterService(db, nil)),
		Messages:       handler.NewMessageHandler(service.NewMessageService(db, nil)),
	})
}

type client struct {
	t     *testing.T
	e     *echo.Echo
	token string
}

func (c client) do(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func (c client) expect(method, path string, body any, status int, out any) {
	c.t.Helper()
	code, raw := c.do(method, path, body)
	if code != status {
		c.t.Fatalf("%s %s: status %d, want %d (body %s)", method, path, code, status, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			c.t.Fatalf("%s %s: decode %s: %v", method, path, raw, err)
		}
	}
}

func register(t *testing.T, e *echo.Echo, name string) (client, string) {
	t.Helper()
	var s struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	client{t: t, e: e}.expect(http.MethodPost, "/register", map[string]string{"username": name, "password": "pw-" + name}, http.StatusOK, &s)
	return client{t: t, e: e, token: s.Token}, s.UserID
}

func TestAuthEndpoints(t *testing.T) {
	e := newTestServer(t)
	anon := client{t: t, e: e}

	alice, aliceID := register(t, e, "alice")
	anon.expect(http.MethodPost, "/register", map[string]string{"username": "alice", "password": "x"}, http.StatusConflict, nil)
	anon.expect(http.MethodPost, "/register", map[string]string{"username": "bob"}, http.StatusBadRequest, nil)

	var wrong, unknown map[string]string
	anon.expect(http.MethodPost, "/login", map[string]string{"username": "alice", "password": "bad"}, http.StatusUnauthorized, &wrong)
	anon.expect(http.MethodPost, "/login", map[string]string{"username": "nobody", "password": "bad"}, http.StatusUnauthorized, &unknown)
	if wrong["error"] != unknown["error"] {
		t.Fatalf("login errors differ: %q vs %q", wrong["error"], unknown["error"])
	}
	anon.expect(http.MethodPost, "/login", map[string]string{"username": "alice", "password": "pw-alice"}, http.StatusOK, nil)

	var me map[string]string
	alice.expect(http.MethodGet, "/me", nil, http.StatusOK, &me)
	if me["userId"] != aliceID || me["username"] != "alice" {
		t.Fatalf("me = %v", me)
	}
	anon.expect(http.MethodGet, "/me", nil, http.StatusUnauthorized, nil)
	anon.expect(http.MethodGet, "/campaigns", nil, http.StatusUnauthorized, nil)
	client{t: t, e: e, token: "garbage"}.expect(http.MethodGet, "/campaigns", nil, http.StatusUnauthorized, nil)
}

func TestCampaignFlow(t *testing.T) {
	e := newTestServer(t)
	gm, _ := register(t, e, "gm")
	player, _ := register(t, e, "player")
	third, _ := register(t, e, "third")

	var created struct {
		ID          string `json:"id"`
		PlayerCount int    `json:"playerCount"`
		IsJoined    bool   `json:"isJoined"`
	}
	gm.expect(http.MethodPost, "/campaigns", map[string]any{"name": "Tomb", "maxPlayers": 2}, http.StatusOK, &created)
	if created.ID == "" || created.PlayerCount != 1 || !created.IsJoined {
		t.Fatalf("created = %+v", created)
	}
	gm.expect(http.MethodPost, "/campaigns", map[string]any{"name": "No cap"}, http.StatusBadRequest, nil)

	join := map[string]string{"campaignId": created.ID}
	player.expect(http.MethodPost, "/campaigns/join", join, http.StatusOK, nil)
	player.expect(http.MethodPost, "/campaigns/join", join, http.StatusConflict, nil)
	var full map[string]string
	third.expect(http.MethodPost, "/campaigns/join", join, http.StatusConflict, &full)
	if full["error"] != "campaign is full" {
		t.Fatalf("full error = %q", full["error"])
	}
	third.expect(http.MethodPost, "/campaigns/join", map[string]string{"campaignId": "missing"}, http.StatusNotFound, nil)
	third.expect(http.MethodPost, "/campaigns/join", map[string]string{}, http.StatusBadRequest, nil)

	var players []map[string]any
	player.expect(http.MethodGet, "/campaigns/"+created.ID+"/players", nil, http.StatusOK, &players)
	if len(players) != 2 {
		t.Fatalf("players = %v", players)
	}

	player.expect(http.MethodDelete, "/campaigns/"+created.ID, nil, http.StatusForbidden, nil)
	gm.expect(http.MethodDelete, "/campaigns/"+created.ID, nil, http.StatusOK, nil)
	gm.expect(http.MethodDelete, "/campaigns/"+created.ID, nil, http.StatusNotFound, nil)
}

func TestMessageFlow(t *testing.T) {
	e := newTestServer(t)
	gm, _ := register(t, e, "gm")
	player, _ := register(t, e, "player")
	outsider, _ := register(t, e, "outsider")

	var c struct {
		ID string `json:"id"`
	}
	gm.expect(http.MethodPost, "/campaigns", map[string]any{"name": "Tomb", "maxPlayers": 4}, http.StatusOK, &c)
	player.expect(http.MethodPost, "/campaigns/join", map[string]string{"campaignId": c.ID}, http.StatusOK, nil)
	path := "/campaigns/" + c.ID + "/messages"

	player.expect(http.MethodPost, path, map[string]any{"content": "hi", "messageType": "CHAT", "campaignId": "other"}, http.StatusBadRequest, nil)
	outsider.expect(http.MethodPost, path, map[string]any{"content": "hi", "messageType": "CHAT"}, http.StatusForbidden, nil)
	outsider.expect(http.MethodGet, path, nil, http.StatusForbidden, nil)

	var sent struct {
		ID        string `json:"id"`
		Timestamp int64  `json:"timestamp"`
		IsToGM    bool   `json:"isToGM"`
	}
	for i := 0; i < 3; i++ {
		player.expect(http.MethodPost, path, map[string]any{"content": "m" + strconv.Itoa(i), "messageType": "ROLL", "campaignId": c.ID}, http.StatusOK, &sent)
	}

	var page []struct {
		Content   string `json:"content"`
		Timestamp int64  `json:"timestamp"`
	}
	gm.expect(http.MethodGet, path+"?limit=2", nil, http.StatusOK, &page)
	if len(page) != 2 || page[0].Content != "m1" || page[1].Content != "m2" {
		t.Fatalf("page = %+v", page)
	}
	gm.expect(http.MethodGet, path+"?limit=2&before="+strconv.FormatInt(page[0].Timestamp, 10), nil, http.StatusOK, &page)
	if len(page) != 1 || page[0].Content != "m0" {
		t.Fatalf("older page = %+v", page)
	}
	gm.expect(http.MethodGet, path+"?limit=0", nil, http.StatusBadRequest, nil)
	gm.expect(http.MethodGet, path+"?before=abc", nil, http.StatusBadRequest, nil)

	gm.expect(http.MethodDelete, path+"/"+sent.ID, nil, http.StatusOK, nil)
	gm.expect(http.MethodDelete, path+"/"+sent.ID, nil, http.StatusNotFound, nil)
}

func TestCharacterFlow(t *testing.T) {
	e := newTestServer(t)
	gm, _ := register(t, e, "gm")
	player, _ := register(t, e, "player")

	var c struct {
		ID string `json:"id"`
	}
	gm.expect(http.MethodPost, "/campaigns", map[string]any{"name": "Tomb", "maxPlayers": 4}, http.StatusOK, &c)
	player.expect(http.MethodPost, "/campaigns/join", map[string]string{"campaignId": c.ID}, http.StatusOK, nil)

	type character struct {
		ID         int64   `json:"id"`
		Level      int     `json:"level"`
		CampaignID *string `json:"campaignId"`
		MaxHP      int     `json:"maxHp"`
	}
	var x, y character
	player.expect(http.MethodPost, "/characters", map[string]any{"name": "X", "charClass": "Bard"}, http.StatusOK, &x)
	player.expect(http.MethodPost, "/characters", map[string]any{"name": "Y", "charClass": "Monk", "maxHp": 12}, http.StatusOK, &y)
	player.expect(http.MethodPost, "/characters", map[string]any{"name": "Z"}, http.StatusBadRequest, nil)
	if x.Level != 1 || x.CampaignID != nil || y.MaxHP != 12 {
		t.Fatalf("created x=%+v y=%+v", x, y)
	}

	xPath := "/characters/" + strconv.FormatInt(x.ID, 10)
	yPath := "/characters/" + strconv.FormatInt(y.ID, 10)
	player.expect(http.MethodPut, xPath+"/assign/"+c.ID, nil, http.StatusOK, nil)
	player.expect(http.MethodPut, xPath+"/assign/"+c.ID, nil, http.StatusOK, nil)
	player.expect(http.MethodPut, yPath+"/assign/"+c.ID, nil, http.StatusConflict, nil)
	gm.expect(http.MethodPut, xPath+"/assign/"+c.ID, nil, http.StatusNotFound, nil)
	gm.expect(http.MethodPut, xPath+"/unassign", nil, http.StatusForbidden, nil)
	player.expect(http.MethodPut, "/characters/abc/unassign", nil, http.StatusBadRequest, nil)

	var inCampaign []character
	gm.expect(http.MethodGet, "/campaigns/"+c.ID+"/characters", nil, http.StatusOK, &inCampaign)
	if len(inCampaign) != 1 || inCampaign[0].ID != x.ID {
		t.Fatalf("campaign characters = %+v", inCampaign)
	}
	var mine []character
	gm.expect(http.MethodGet, "/campaigns/"+c.ID+"/characters/mine", nil, http.StatusOK, &mine)
	if len(mine) != 0 {
		t.Fatalf("gm characters in campaign = %+v", mine)
	}

	var updated map[string]int64
	player.expect(http.MethodPost, "/campaigns/"+c.ID+"/levelup", nil, http.StatusForbidden, nil)
	gm.expect(http.MethodPost, "/campaigns/"+c.ID+"/levelup", nil, http.StatusOK, &updated)
	if updated["updated"] != 1 {
		t.Fatalf("updated = %v", updated)
	}

	var edited character
	player.expect(http.MethodPut, xPath, map[string]any{"name": "X2", "charClass": "Bard", "level": 5}, http.StatusOK, &edited)
	if edited.Level != 5 || edited.CampaignID == nil || *edited.CampaignID != c.ID {
		t.Fatalf("edited = %+v", edited)
	}
	gm.expect(http.MethodPut, xPath, map[string]any{"name": "X3", "charClass": "Bard"}, http.StatusForbidden, nil)

	gm.expect(http.MethodDelete, xPath, nil, http.StatusForbidden, nil)
	player.expect(http.MethodDelete, xPath, nil, http.StatusOK, nil)
	player.expect(http.MethodDelete, xPath, nil, http.StatusNotFound, nil)

	var list []character
	player.expect(http.MethodGet, "/characters", nil, http.StatusOK, &list)
	if len(list) != 1 || list[0].ID != y.ID {
		t.Fatalf("remaining = %+v", list)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	e := newTestServer(t)
	anon := client{t: t, e: e}

	var health map[string]string
	anon.expect(http.MethodGet, "/healthz", nil, http.StatusOK, &health)
	if health["status"] != "ok" {
		t.Fatalf("health = %v", health)
	}
	if code, _ := anon.do(http.MethodGet, "/metrics", nil); code != http.StatusOK {
		t.Fatalf("metrics status = %d", code)
	}
	var notFound map[string]string
	anon.expect(http.MethodGet, "/nope", nil, http.StatusNotFound, &notFound)
	if notFound["error"] == "" {
		t.Fatalf("not found body = %v", notFound)
	}
}
