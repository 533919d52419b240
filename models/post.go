package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post references its author and comments by id; likes is a set of user ids.
type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Caption   string               `bson:"caption" json:"caption"`
	Image     string               `bson:"image" json:"image"`
	Author    primitive.ObjectID   `bson:"author" json:"author"`
	Content   string               `bson:"content,omitempty" json:"content,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []primitive.ObjectID `bson:"comments" json:"comments"`
}

// Comment belongs to exactly one post. There is no update or standalone
// delete path; comments are removed only when their post is deleted.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text      string             `bson:"text" json:"text"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
