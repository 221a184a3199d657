package workspacestore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/app/store/docstore/memdocs"
	workspacestore "github.com/enidea/slack-clone/internal/app/store/workspaces"
	"github.com/enidea/slack-clone/internal/domain/models"
	"github.com/enidea/slack-clone/internal/testutil"
)

func TestStore_PostGet(t *testing.T) {
	store := workspacestore.New(memdocs.New())
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	ws := workspacestore.NewWorkspace("  Acme ", "", "u1", at)
	id, err := store.Post(ctx, ws)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Acme" || got.OwnerID != "u1" {
		t.Errorf("unexpected workspace: %+v", got)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != "u1" {
		t.Errorf("MemberIDs: got %v", got.MemberIDs)
	}
}

func TestStore_AppendMember(t *testing.T) {
	gw := memdocs.New()
	clock := testutil.NewClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := workspacestore.New(gw).WithClock(clock.Now)
	ctx := context.Background()

	id, err := store.Post(ctx, workspacestore.NewWorkspace("Acme", "", "u1", clock.Now()))
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	clock.Advance(time.Hour)
	if err := store.AppendMember(ctx, id, "u2"); err != nil {
		t.Fatalf("AppendMember failed: %v", err)
	}
	if err := store.AppendMember(ctx, id, "u2"); err != nil {
		t.Fatalf("second AppendMember failed: %v", err)
	}

	ws, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(ws.MemberIDs) != 2 || ws.MemberIDs[1] != "u2" {
		t.Errorf("MemberIDs: got %v", ws.MemberIDs)
	}
	if !ws.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("UpdatedAt: got %v, want %v", ws.UpdatedAt, clock.Now())
	}
}

func TestStore_AppendMemberNotFound(t *testing.T) {
	store := workspacestore.New(memdocs.New())
	err := store.AppendMember(context.Background(), "missing", "u1")
	if !errors.Is(err, workspacestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SubscribeUserWorkspaces(t *testing.T) {
	gw := memdocs.New()
	store := workspacestore.New(gw)
	fixtures := testutil.NewFixtures(t, gw)
	ctx := context.Background()

	zeta := fixtures.CreateWorkspace(ctx, "zeta", "u1")
	alpha := fixtures.CreateWorkspace(ctx, "Alpha", "u2")
	fixtures.CreateMembership(ctx, "u1", zeta.ID, models.RoleOwner)
	// Membership whose workspace is gone is skipped.
	fixtures.CreateMembership(ctx, "u1", "deleted-workspace", models.RoleMember)

	got := make(chan []models.WorkspaceRef, 8)
	unsub, err := store.SubscribeUserWorkspaces(ctx, "u1", func(refs []models.WorkspaceRef) { got <- refs }, nil)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsub()

	first := wait(t, got)
	if len(first) != 1 || first[0].ID != zeta.ID {
		t.Fatalf("initial list: %+v", first)
	}

	fixtures.CreateMembership(ctx, "u1", alpha.ID, models.RoleMember)

	second := wait(t, got)
	if len(second) != 2 {
		t.Fatalf("expected 2 workspaces, got %d", len(second))
	}
	if second[0].ID != alpha.ID || second[1].ID != zeta.ID {
		t.Errorf("expected case-insensitive name order, got %s,%s", second[0].Workspace.Name, second[1].Workspace.Name)
	}
}

func TestStore_SubscribeUserWorkspacesReadFailure(t *testing.T) {
	gw := memdocs.New()
	store := workspacestore.New(gw)
	fixtures := testutil.NewFixtures(t, gw)
	ctx := context.Background()

	ws := fixtures.CreateWorkspace(ctx, "Acme", "u1")

	got := make(chan []models.WorkspaceRef, 8)
	errs := make(chan error, 8)
	unsub, err := store.SubscribeUserWorkspaces(ctx, "u1",
		func(refs []models.WorkspaceRef) { got <- refs },
		func(err error) { errs <- err })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsub()
	wait(t, got)

	gw.FailNext("get", docstore.Workspaces, errors.New("offline"))
	fixtures.CreateMembership(ctx, "u1", ws.ID, models.RoleOwner)

	select {
	case err := <-errs:
		if !errors.Is(err, docstore.ErrTransport) {
			t.Errorf("expected transport error, got %v", err)
		}
	case refs := <-got:
		t.Fatalf("expected no list on read failure, got %+v", refs)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func wait(t *testing.T, ch <-chan []models.WorkspaceRef) []models.WorkspaceRef {
	t.Helper()
	select {
	case refs := <-ch:
		return refs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for workspace list")
		return nil
	}
}
