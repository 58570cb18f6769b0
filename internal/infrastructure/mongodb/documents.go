package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
)

// Field names match the collections written by the original service, so
// existing data loads unchanged.

type experienceDocument struct {
	Points    int       `bson:"points"`
	Timestamp time.Time `bson:"timestamp"`
}

type userDocument struct {
	ID               bson.ObjectID        `bson:"_id,omitempty"`
	Email            string               `bson:"email"`
	PasswordHash     string               `bson:"passwordHash"`
	ProfilePicture   string               `bson:"profilePicture,omitempty"`
	ExperiencePoints []experienceDocument `bson:"experiencePoints"`
	Community        *bson.ObjectID       `bson:"community"`
}

type communityDocument struct {
	ID   bson.ObjectID `bson:"_id,omitempty"`
	Name string        `bson:"name"`
	Logo string        `bson:"logo,omitempty"`
}

type userWithPointsDocument struct {
	ID              bson.ObjectID      `bson:"_id"`
	Email           string             `bson:"email"`
	ProfilePicture  string             `bson:"profilePicture"`
	Community       *communityDocument `bson:"community"`
	TotalExperience int                `bson:"totalExperience"`
}

type leaderboardDocument struct {
	CommunityID bson.ObjectID `bson:"communityId"`
	TotalPoints int           `bson:"totalPoints"`
	Logo        string        `bson:"logo"`
	Name        string        `bson:"name"`
	UserCount   int           `bson:"userCount"`
}

func toUserDocument(u *entity.User) (userDocument, error) {
	doc := userDocument{
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		ProfilePicture:   u.ProfilePicture,
		ExperiencePoints: make([]experienceDocument, 0, len(u.ExperiencePoints)),
	}
	if u.ID != "" {
		oid, err := bson.ObjectIDFromHex(u.ID)
		if err != nil {
			return userDocument{}, err
		}
		doc.ID = oid
	}
	if u.CommunityID != "" {
		oid, err := bson.ObjectIDFromHex(u.CommunityID)
		if err != nil {
			return userDocument{}, err
		}
		doc.Community = &oid
	}
	for _, xp := range u.ExperiencePoints {
		doc.ExperiencePoints = append(doc.ExperiencePoints, experienceDocument{Points: xp.Points, Timestamp: xp.Timestamp})
	}
	return doc, nil
}

func (d userDocument) toEntity() *entity.User {
	u := &entity.User{
		ID:               d.ID.Hex(),
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		ProfilePicture:   d.ProfilePicture,
		ExperiencePoints: make([]entity.ExperiencePoint, 0, len(d.ExperiencePoints)),
	}
	if d.Community != nil && !d.Community.IsZero() {
		u.CommunityID = d.Community.Hex()
	}
	for _, xp := range d.ExperiencePoints {
		u.ExperiencePoints = append(u.ExperiencePoints, entity.ExperiencePoint{Points: xp.Points, Timestamp: xp.Timestamp})
	}
	return u
}

func toCommunityDocument(c *entity.Community) (communityDocument, error) {
	doc := communityDocument{Name: c.Name, Logo: c.Logo}
	if c.ID != "" {
		oid, err := bson.ObjectIDFromHex(c.ID)
		if err != nil {
			return communityDocument{}, err
		}
		doc.ID = oid
	}
	return doc, nil
}

func (d communityDocument) toEntity() *entity.Community {
	return &entity.Community{ID: d.ID.Hex(), Name: d.Name, Logo: d.Logo}
}
