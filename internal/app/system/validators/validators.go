// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
//
// Validation level is "moderate": documents written before a validator
// existed are left alone until they are next updated.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(docstore.Users, usersSchema())
	ensure(docstore.Workspaces, workspacesSchema())
	ensure(docstore.WorkspaceMembers, membersSchema())
	ensure(docstore.WorkspaceInvites, invitesSchema())
	ensure(docstore.Channels, channelsSchema())
	ensure(docstore.Messages, messagesSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Debug("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandError(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandError(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandError(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandError(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	idRef    = bson.M{"bsonType": "string", "minLength": 1}
	date     = bson.M{"bsonType": "date"}
)

func schema(required bson.A, props bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

func usersSchema() bson.M {
	return schema(bson.A{"display_name"}, bson.M{
		"display_name":    bson.M{"bsonType": "string"},
		"email":           bson.M{"bsonType": "string"},
		"profile_picture": bson.M{"bsonType": "string"},
	})
}

func workspacesSchema() bson.M {
	return schema(bson.A{"name", "owner_id", "member_ids", "created_at"}, bson.M{
		"name":        nonBlank,
		"description": bson.M{"bsonType": "string"},
		"owner_id":    idRef,
		"member_ids":  bson.M{"bsonType": "array", "items": idRef},
		"created_at":  date,
		"updated_at":  date,
	})
}

func membersSchema() bson.M {
	return schema(bson.A{"user_id", "workspace_id", "role", "joined_at"}, bson.M{
		"user_id":      idRef,
		"workspace_id": idRef,
		"role":         bson.M{"enum": bson.A{models.RoleOwner, models.RoleAdmin, models.RoleMember}},
		"joined_at":    date,
	})
}

func invitesSchema() bson.M {
	return schema(bson.A{"workspace_id", "invite_code", "created_at", "expires_at", "is_active"}, bson.M{
		"workspace_id": idRef,
		"invite_code":  nonBlank,
		"created_at":   date,
		"expires_at":   date,
		"is_active":    bson.M{"bsonType": "bool"},
	})
}

func channelsSchema() bson.M {
	return schema(bson.A{"name", "workspace_id", "created_at"}, bson.M{
		"name":         nonBlank,
		"workspace_id": idRef,
		"created_at":   date,
	})
}

func messagesSchema() bson.M {
	return schema(bson.A{"user_id", "channel_id", "text", "created_at"}, bson.M{
		"user_id":    idRef,
		"channel_id": idRef,
		"text":       nonBlank,
		"created_at": date,
		"updated_at": date,
		"is_edited":  bson.M{"bsonType": "bool"},
	})
}
