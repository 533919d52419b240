package models

import (
	webpush "github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushSubscription stores a browser push subscription for one user.
type PushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID   `bson:"userId" json:"userId"`
	Sub    webpush.Subscription `bson:"sub" json:"sub"`
}
