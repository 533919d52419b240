package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation holds the message ids exchanged between exactly two users.
type Conversation struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Messages     []primitive.ObjectID `bson:"messages" json:"messages"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
}

// Message is a single direct message.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SenderID   primitive.ObjectID `bson:"senderId" json:"senderId"`
	ReceiverID primitive.ObjectID `bson:"receiverId" json:"receiverId"`
	Message    string             `bson:"message" json:"message"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
