// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// The Mongo fields are nil on the memory backend. Runtime is allocated in
// ConnectDB and filled in by Startup, so every later hook sees the same
// engine even though DBDeps travels by value.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Gateway       docstore.Gateway
	Runtime       *Runtime
}
