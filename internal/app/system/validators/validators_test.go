package validators_test

import (
	"testing"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/app/store/docstore/mongodocs"
	"github.com/enidea/slack-clone/internal/app/system/validators"
	"github.com/enidea/slack-clone/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
			t.Fatalf("EnsureAll #%d failed: %v", i+1, err)
		}
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{
		docstore.Users, docstore.Workspaces, docstore.WorkspaceMembers,
		docstore.WorkspaceInvites, docstore.Channels, docstore.Messages,
	} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

// The stores' own documents must pass the validators.
func TestEnsureAll_AcceptsStoreDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	fx := testutil.NewFixtures(t, mongodocs.New(db, zap.NewNop()))
	now := time.Now().UTC()
	fx.CreateUser(ctx, "u1", "Ann", "ann@example.com")
	ws := fx.CreateWorkspace(ctx, "Acme", "u1")
	fx.CreateMembership(ctx, "u1", ws.ID, "owner")
	fx.CreateInvite(ctx, ws.ID, "abc123", now.Add(time.Hour), true)
	ch := fx.CreateChannel(ctx, ws.ID, "general")
	fx.CreateMessage(ctx, "u1", ch, "hello", now)
}

func TestEnsureAll_RejectsInvalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	tests := []struct {
		name string
		coll string
		doc  bson.M
	}{
		{"workspace blank name", docstore.Workspaces, bson.M{"name": "  ", "owner_id": "u1", "member_ids": bson.A{"u1"}, "created_at": now}},
		{"member bad role", docstore.WorkspaceMembers, bson.M{"user_id": "u1", "workspace_id": "w1", "role": "superadmin", "joined_at": now}},
		{"invite missing expiry", docstore.WorkspaceInvites, bson.M{"workspace_id": "w1", "invite_code": "x", "created_at": now, "is_active": true}},
		{"channel missing workspace", docstore.Channels, bson.M{"name": "general", "created_at": now}},
		{"message empty text", docstore.Messages, bson.M{"user_id": "u1", "channel_id": "c1", "text": "", "created_at": now}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := db.Collection(tc.coll).InsertOne(ctx, tc.doc); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
