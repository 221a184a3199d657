package indexes_test

import (
	"testing"

	"github.com/enidea/slack-clone/internal/app/system/indexes"
	"github.com/enidea/slack-clone/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesNamedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		coll string
		name string
	}{
		{"workspace_members", "idx_wsmember_user_ws"},
		{"workspace_members", "idx_wsmember_ws"},
		{"workspace_invites", "idx_invite_code_active"},
		{"channels", "idx_channel_ws_created"},
		{"messages", "idx_message_channel_created"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, err := db.Collection(tt.coll).Indexes().List(ctx)
			if err != nil {
				t.Fatalf("List indexes failed: %v", err)
			}
			defer cur.Close(ctx)

			found := false
			for cur.Next(ctx) {
				var idx bson.M
				if err := cur.Decode(&idx); err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if idx["name"] == tt.name {
					found = true
					if u, ok := idx["unique"].(bool); ok && u {
						t.Errorf("%s should not be unique", tt.name)
					}
				}
			}
			if !found {
				t.Errorf("index %s missing on %s", tt.name, tt.coll)
			}
		})
	}
}
