package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a single document in the users collection. The password hash is
// never serialized to JSON; every response built from this struct already has
// the credential stripped.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password" json:"-"`
	ProfilePicture string               `bson:"profilepicture" json:"profilepicture"`
	Bio            string               `bson:"bio" json:"bio"`
	Gender         string               `bson:"gender,omitempty" json:"gender,omitempty"`
	College        string               `bson:"college" json:"college"`
	Club           string               `bson:"club" json:"club"`
	Interests      []string             `bson:"interests" json:"interests"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	Followers      []primitive.ObjectID `bson:"followers" json:"followers"`
	Posts          []primitive.ObjectID `bson:"posts" json:"posts"`
	Bookmarks      []primitive.ObjectID `bson:"bookmarks" json:"bookmarks"`
	Type           string               `bson:"type" json:"type"`
	IsAdmin        bool                 `bson:"isAdmin" json:"isAdmin"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}
