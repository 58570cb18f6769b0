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

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	doc, err := toUserDocument(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepository) Replace(ctx context.Context, u *entity.User) error {
	doc, err := toUserDocument(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toEntity(), nil
}

// usersWithPointsPipeline drops users without awards ($unwind) and never
// projects passwordHash.
func usersWithPointsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$experiencePoints"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "email", Value: bson.D{{Key: "$first", Value: "$email"}}},
			{Key: "profilePicture", Value: bson.D{{Key: "$first", Value: "$profilePicture"}}},
			{Key: "community", Value: bson.D{{Key: "$first", Value: "$community"}}},
			{Key: "totalExperience", Value: bson.D{{Key: "$sum", Value: "$experiencePoints.points"}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: communitiesCollection},
			{Key: "localField", Value: "community"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "communityDetails"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "email", Value: 1},
			{Key: "profilePicture", Value: 1},
			{Key: "totalExperience", Value: 1},
			{Key: "community", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$communityDetails", 0}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func (r *UserRepository) ListWithPoints(ctx context.Context) ([]entity.UserWithPoints, error) {
	cur, err := r.coll.Aggregate(ctx, usersWithPointsPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate users with points: %w", err)
	}
	var docs []userWithPointsDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users with points: %w", err)
	}

	out := make([]entity.UserWithPoints, 0, len(docs))
	for _, d := range docs {
		row := entity.UserWithPoints{
			ID:              d.ID.Hex(),
			Email:           d.Email,
			ProfilePicture:  d.ProfilePicture,
			TotalExperience: d.TotalExperience,
		}
		if d.Community != nil {
			row.Community = d.Community.toEntity()
		}
		out = append(out, row)
	}
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
