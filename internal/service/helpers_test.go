package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/model"
	"github.com/iliyamo/campaign-companion/internal/queue"
	"github.com/iliyamo/campaign-companion/internal/utils"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.CampaignEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.CampaignEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// blockingPublisher stands in for a broker that accepts connections but
// never answers.
type blockingPublisher struct {
	release chan struct{}
}

func (p *blockingPublisher) Publish(ctx context.Context, _ queue.CampaignEvent) error {
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type testEnv struct {
	db         *database.DB
	events     *recordingPublisher
	auth       *AuthService
	campaigns  *CampaignService
	characters *CharacterService
	messages   *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvDSN(t, ":memory:")
}

// newFileTestEnv backs the services with a SQLite file so concurrent
// requests get their own connections and race on the store's locks.
func newFileTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvDSN(t, filepath.Join(t.TempDir(), "campaigns.db"))
}

func newTestEnvDSN(t *testing.T, dsn string) *testEnv {
	t.Helper()
	db, err := database.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	events := &recordingPublisher{}
	tokens := utils.NewTokenIssuer("test-secret", "campaign-companion", "campaign-companion-clients", time.Hour)
	auth, err := NewAuthService(db, tokens, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	return &testEnv{
		db:         db,
		events:     events,
		auth:       auth,
		campaigns:  NewCampaignService(db, events),
		characters: NewCharacterService(db, events),
		messages:   NewMessageService(db, events),
	}
}

func (e *testEnv) user(t *testing.T, name string) model.Identity {
	t.Helper()
	s, err := e.auth.Register(context.Background(), name, "password-"+name)
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return model.Identity{UserID: s.UserID, Username: s.Username}
}

func (e *testEnv) campaign(t *testing.T, owner model.Identity, maxPlayers int) string {
	t.Helper()
	c, err := e.campaigns.Create(context.Background(), owner, CampaignInput{Name: "Lost Mine", MaxPlayers: maxPlayers})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return c.ID
}

func (e *testEnv) join(t *testing.T, who model.Identity, campaignID string) {
	t.Helper()
	if err := e.campaigns.Join(context.Background(), who, campaignID); err != nil {
		t.Fatalf("join %s: %v", who.Username, err)
	}
}

func (e *testEnv) character(t *testing.T, owner model.Identity, name string) model.Character {
	t.Helper()
	class := "Fighter"
	c, err := e.characters.Create(context.Background(), owner.UserID, SheetInput{Name: &name, CharClass: &class})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	return c
}

func ptr[T any](v T) *T { return &v }
