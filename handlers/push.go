package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vitclubs/config"
	"vitclubs/database"
	"vitclubs/models"
	"vitclubs/utils"
)

func GetVapidPublicKey(c *gin.Context) {
	if vapidPublicKey == "" {
		utils.Error(c, http.StatusNotFound, "Push notifications not configured")
		return
	}
	utils.Success(c, http.StatusOK, "VAPID public key", gin.H{"publicKey": vapidPublicKey})
}

// SubscribePush upserts the caller's browser push subscription.
func SubscribePush(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid subscription payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub := models.PushSubscription{
		UserID: userID,
		Sub: webpush.Subscription{
			Endpoint: req.Endpoint,
			Keys: webpush.Keys{
				P256dh: req.Keys.P256dh,
				Auth:   req.Keys.Auth,
			},
		},
	}

	_, err := database.Subscriptions.UpdateOne(
		ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"sub": sub.Sub}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		utils.Sugar.Errorw("subscription upsert failed", "userId", userID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusCreated, "Subscribed to push notifications", nil)
}

// notifyNewMessage sends a web push to the receiver when they have a stored
// subscription. Failures are logged and swallowed; delivery is best effort.
func notifyNewMessage(senderID, receiverID primitive.ObjectID, text string) {
	defer func() {
		if r := recover(); r != nil {
			utils.Sugar.Errorw("panic in push notification", "recover", r)
		}
	}()

	if vapidPrivateKey == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var sub models.PushSubscription
	err := database.Subscriptions.FindOne(ctx, bson.M{"userId": receiverID}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return
	}
	if err != nil {
		utils.Sugar.Errorw("subscription lookup failed", "userId", receiverID.Hex(), "error", err)
		return
	}

	var sender models.User
	_ = database.Users.FindOne(ctx, bson.M{"_id": senderID}).Decode(&sender)

	payload, _ := json.Marshal(map[string]string{
		"title": sender.Username + " sent you a message",
		"body":  text,
		"icon":  sender.ProfilePicture,
	})

	resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
		Subscriber:      config.Get().VapidSubscriber,
		VAPIDPublicKey:  vapidPublicKey,
		VAPIDPrivateKey: vapidPrivateKey,
		TTL:             30,
	})
	if err != nil {
		utils.Sugar.Warnw("push send failed", "userId", receiverID.Hex(), "error", err)
		return
	}
	resp.Body.Close()
}
