package mongodb

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/aanand-mishra/chapter-api/internal/config"
	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/storage/storagetest"
	"github.com/aanand-mishra/chapter-api/internal/types"
)

// newTestStore connects to MONGODB_TEST_URI and gives each test its own
// database. The store under test may already be closed when cleanup runs,
// so the drop goes through a second connection.
func newTestStore(t *testing.T) *MongoDB {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	cfg := &config.Config{Storage: config.Storage{
		Driver:         config.DriverMongo,
		MongoURI:       uri,
		MongoDatabase:  "chapter_test_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		ConnectTimeout: 5 * time.Second,
	}}

	m, err := New(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		admin, err := New(ctx, cfg)
		if err != nil {
			return
		}
		defer admin.Close()
		_ = admin.Database().Drop(ctx)
	})
	return m
}

func TestMongoDB(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return newTestStore(t)
	})
}

func TestMongoDB_KeyIsDocumentID(t *testing.T) {
	m := newTestStore(t)
	t.Cleanup(func() { _ = m.Close() })
	ctx := context.Background()
	c := storagetest.Catalog.Users

	require.NoError(t, m.PutItem(ctx, c, types.Record{"username": "ada", "isAdmin": false}))

	var raw bson.M
	require.NoError(t, m.Database().Collection(c.Name).FindOne(ctx, bson.M{"_id": "ada"}).Decode(&raw))
	assert.Equal(t, "ada", raw["username"])

	got, err := m.GetItem(ctx, c, "ada")
	require.NoError(t, err)
	_, hasID := got["_id"]
	assert.False(t, hasID)
}

func TestToRecord(t *testing.T) {
	rec := toRecord(bson.M{"_id": "k", "id": "k", "name": "Ada"})
	assert.Equal(t, types.Record{"id": "k", "name": "Ada"}, rec)
}
