package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/iliyamo/campaign-companion/internal/access"
	"github.com/iliyamo/campaign-companion/internal/queue"
	"github.com/iliyamo/campaign-companion/internal/repository"
)

func TestCreateCampaignJoinsOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.user(t, "gm")

	c, err := env.campaigns.Create(ctx, gm, CampaignInput{Name: "  Curse of Strahd ", Description: "gothic", MaxPlayers: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Name != "Curse of Strahd" || c.OwnerName != "gm" || c.PlayerCount != 1 || !c.IsJoined {
		t.Fatalf("unexpected summary %+v", c)
	}
	member, err := access.IsMember(ctx, env.db, gm.UserID, c.ID, false)
	if err != nil || !member {
		t.Fatalf("owner membership = %v, %v", member, err)
	}

	list, err := env.campaigns.List(ctx, gm.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].PlayerCount != 1 || !list[0].IsJoined {
		t.Fatalf("list = %+v", list)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	env := newTestEnv(t)
	gm := env.user(t, "gm")
	tests := []struct {
		name string
		in   CampaignInput
	}{
		{"blank name", CampaignInput{Name: "  ", MaxPlayers: 3}},
		{"zero players", CampaignInput{Name: "x", MaxPlayers: 0}},
		{"name too long", CampaignInput{Name: strings.Repeat("n", 256), MaxPlayers: 3}},
		{"description too long", CampaignInput{Name: "x", Description: strings.Repeat("d", 10001), MaxPlayers: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.campaigns.Create(context.Background(), gm, tt.in); !errors.Is(err, repository.ErrBadRequest) {
				t.Fatalf("got %v, want bad request", err)
			}
		})
	}
}

func TestListCampaignsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.user(t, "gm")
	player := env.user(t, "player")

	first := env.campaign(t, gm, 3)
	second := env.campaign(t, gm, 3)
	env.join(t, player, first)

	list, err := env.campaigns.List(ctx, player.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != second || list[1].ID != first {
		t.Fatalf("order = %s,%s, want %s,%s", list[0].ID, list[1].ID, second, first)
	}
	if list[0].IsJoined || !list[1].IsJoined || list[1].PlayerCount != 2 {
		t.Fatalf("annotations = %+v", list)
	}
}

func TestJoinFullCampaign(t *testing.T) {
	env := newTestEnv(t)
	gm := env.user(t, "gm")
	player := env.user(t, "player")
	id := env.campaign(t, gm, 1)

	err := env.campaigns.Join(context.Background(), player, id)
	if !errors.Is(err, ErrCampaignFull) || !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("got %v, want campaign full", err)
	}
}

func TestJoinMissingCampaign(t *testing.T) {
	env := newTestEnv(t)
	player := env.user(t, "player")
	if err := env.campaigns.Join(context.Background(), player, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestRepeatedJoinKeepsOneMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.user(t, "gm")
	player := env.user(t, "player")
	id := env.campaign(t, gm, 5)

	env.join(t, player, id)
	for i := 0; i < 3; i++ {
		if err := env.campaigns.Join(ctx, player, id); !errors.Is(err, ErrAlreadyJoined) {
			t.Fatalf("attempt %d: got %v, want already joined", i, err)
		}
	}

	players, err := env.campaigns.Players(ctx, gm.UserID, id)
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	seen := 0
	for _, p := range players {
		if p.PlayerID == player.UserID {
			seen++
		}
	}
	if seen != 1 || len(players) != 2 {
		t.Fatalf("players = %+v", players)
	}
}

func TestConcurrentJoinForLastSlot(t *testing.T) {
	env := newFileTestEnv(t)
	ctx := context.Background()
	gm := env.user(t, "gm")
	id := env.campaign(t, gm, 2)

	const racers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		joined   int
		rejected int
	)
	for i := 0; i < racers; i++ {
		who := env.user(t, fmt.Sprintf("racer%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := env.campaigns.Join(ctx, who, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case errors.Is(err, ErrCampaignFull):
				rejected++
			default:
				t.Errorf("join: %v", err)
			}
		}()
	}
	wg.Wait()

	if joined != 1 || rejected != racers-1 {
		t.Fatalf("joined=%d rejected=%d", joined, rejected)
	}
	n, err := repository.NewCampaignRepo(env.db).CountPlayers(ctx, id)
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestPlayersRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	gm := env.user(t, "gm")
	outsider := env.user(t, "outsider")
	id := env.campaign(t, gm, 3)

	if _, err := env.campaigns.Players(context.Background(), outsider.UserID, id); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestDeleteCampaign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.user(t, "gm")
	player := env.user(t, "player")
	id := env.campaign(t, gm, 4)
	env.join(t, player, id)

	hero := env.character(t, player, "Hero")
	if err := env.characters.Assign(ctx, player.UserID, hero.ID, id); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := env.messages.Send(ctx, player, id, MessageInput{Content: "hello", MessageType: "CHAT"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := env.campaigns.Delete(ctx, player.UserID, id); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("delete by player: got %v, want forbidden", err)
	}
	if err := env.campaigns.Delete(ctx, gm.UserID, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.campaigns.Delete(ctx, gm.UserID, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: got %v, want not found", err)
	}

	n, err := repository.NewCampaignRepo(env.db).CountPlayers(ctx, id)
	if err != nil || n != 0 {
		t.Fatalf("memberships left = %d, %v", n, err)
	}
	last, err := repository.NewMessageRepo(env.db).LastTimestamp(ctx, id)
	if err != nil || last != 0 {
		t.Fatalf("messages left, last = %d, %v", last, err)
	}
	mine, err := env.characters.ListMine(ctx, player.UserID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 || mine[0].CampaignID != nil || mine[0].CampaignName != nil {
		t.Fatalf("character after delete = %+v", mine)
	}

	types := env.events.types()
	if types[len(types)-1] != queue.EventCampaignDeleted {
		t.Fatalf("events = %v", types)
	}
}
