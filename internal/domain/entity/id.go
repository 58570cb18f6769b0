package entity

import "go.mongodb.org/mongo-driver/v2/bson"

// ValidIDs reports whether every id is a 24-character hex ObjectID.
// It returns false for an empty argument list.
func ValidIDs(ids ...string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if _, err := bson.ObjectIDFromHex(id); err != nil {
			return false
		}
	}
	return true
}

// NewID mints a fresh ObjectID in hex form, for stores that do not assign ids.
func NewID() string {
	return bson.NewObjectID().Hex()
}
