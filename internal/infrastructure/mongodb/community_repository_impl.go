package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
)

type CommunityRepository struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func NewCommunityRepository(db *mongo.Database) *CommunityRepository {
	return &CommunityRepository{
		coll:  db.Collection(communitiesCollection),
		users: db.Collection(usersCollection),
	}
}

func (r *CommunityRepository) Create(ctx context.Context, c *entity.Community) error {
	doc, err := toCommunityDocument(c)
	if err != nil {
		return fmt.Errorf("encode community: %w", err)
	}
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert community: %w", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (r *CommunityRepository) Replace(ctx context.Context, c *entity.Community) error {
	doc, err := toCommunityDocument(c)
	if err != nil {
		return fmt.Errorf("encode community: %w", err)
	}
	_, err = r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("replace community: %w", err)
	}
	return nil
}

func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*entity.Community, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var doc communityDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find community: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *CommunityRepository) List(ctx context.Context) ([]entity.Community, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find communities: %w", err)
	}
	var docs []communityDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode communities: %w", err)
	}
	out := make([]entity.Community, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toEntity())
	}
	return out, nil
}

// leaderboardPipeline runs over the users collection. Grouping by a null
// community and the inner $unwind of the lookup drop unaffiliated users and
// empty communities.
func leaderboardPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$experiencePoints"}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "totalExperience", Value: bson.D{{Key: "$sum", Value: "$experiencePoints.points"}}},
			{Key: "community", Value: bson.D{{Key: "$first", Value: "$community"}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$community"},
			{Key: "totalPoints", Value: bson.D{{Key: "$sum", Value: "$totalExperience"}}},
			{Key: "userCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: communitiesCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "communityDetails"},
		}}},
		{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$communityDetails"}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "communityId", Value: "$communityDetails._id"},
			{Key: "totalPoints", Value: 1},
			{Key: "logo", Value: "$communityDetails.logo"},
			{Key: "name", Value: "$communityDetails.name"},
			{Key: "userCount", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "totalPoints", Value: -1},
			{Key: "communityId", Value: 1},
		}}},
	}
}

func (r *CommunityRepository) Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error) {
	cur, err := r.users.Aggregate(ctx, leaderboardPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate leaderboard: %w", err)
	}
	var docs []leaderboardDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	out := make([]entity.LeaderboardEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, entity.LeaderboardEntry{
			CommunityID: d.CommunityID.Hex(),
			TotalPoints: d.TotalPoints,
			Logo:        d.Logo,
			Name:        d.Name,
			UserCount:   d.UserCount,
		})
	}
	return out, nil
}

var _ repository.CommunityRepository = (*CommunityRepository)(nil)
