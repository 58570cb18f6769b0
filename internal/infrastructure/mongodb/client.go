package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection       = "users"
	communitiesCollection = "communities"
)

// Store owns the client and the database handle both repositories share.
type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials uri, pings the primary and selects dbName.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	opts := options.Client().ApplyURI(uri).SetTimeout(timeout)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{Client: client, DB: client.Database(dbName)}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique index on community names.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.DB.Collection(communitiesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create communities.name index: %w", err)
	}
	return nil
}

func (s *Store) Users() *UserRepository {
	return NewUserRepository(s.DB)
}

func (s *Store) Communities() *CommunityRepository {
	return NewCommunityRepository(s.DB)
}

// objectID parses a hex id; callers validate ids before reaching the store,
// so a parse failure is reported as not found.
func objectID(id string) (bson.ObjectID, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	return oid, err == nil
}
