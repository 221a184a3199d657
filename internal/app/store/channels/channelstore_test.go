package channelstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	channelstore "github.com/enidea/slack-clone/internal/app/store/channels"
	"github.com/enidea/slack-clone/internal/app/store/docstore/memdocs"
	"github.com/enidea/slack-clone/internal/domain/models"
)

func TestStore_PostGet(t *testing.T) {
	store := channelstore.New(memdocs.New())
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := store.Post(ctx, channelstore.NewChannel("general", "ws1", at))
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	c, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if c.Name != "general" || c.WorkspaceID != "ws1" || !c.CreatedAt.Equal(at) {
		t.Errorf("unexpected channel: %+v", c)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, channelstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SubscribeOrdersByCreation(t *testing.T) {
	gw := memdocs.New()
	store := channelstore.New(gw)
	ctx := context.Background()
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	late, _ := store.Post(ctx, channelstore.NewChannel("random", "ws1", t0.Add(time.Hour)))
	early, _ := store.Post(ctx, channelstore.NewChannel("general", "ws1", t0))
	if _, err := store.Post(ctx, channelstore.NewChannel("other", "ws2", t0)); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	got := make(chan []models.ChannelRef, 4)
	unsub, err := store.Subscribe(ctx, "ws1", func(refs []models.ChannelRef) { got <- refs }, nil)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsub()

	select {
	case refs := <-got:
		if len(refs) != 2 {
			t.Fatalf("expected 2 channels, got %d", len(refs))
		}
		if refs[0].ID != early || refs[1].ID != late {
			t.Errorf("order: got %s,%s want %s,%s", refs[0].ID, refs[1].ID, early, late)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}
