package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vitclubs/database"
	"vitclubs/models"
	"vitclubs/utils"
	"vitclubs/websocket"
)

// SendMessage inserts a direct message into the sender/receiver conversation
// (created on first contact). Online receivers get the message pushed over
// their websocket; offline ones get a best-effort web push notification.
func SendMessage(c *gin.Context) {
	senderID, ok := callerID(c)
	if !ok {
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}

	var req struct {
		TextMessage string `json:"textMessage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.TextMessage == "" {
		utils.Error(c, http.StatusBadRequest, "Message text is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.Users.FindOne(ctx, bson.M{"_id": receiverID}).Err(); err != nil {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}

	participants := []primitive.ObjectID{senderID, receiverID}

	var conversation models.Conversation
	err = database.Conversations.FindOne(ctx, bson.M{"participants": bson.M{"$all": participants}}).Decode(&conversation)
	if err == mongo.ErrNoDocuments {
		conversation = models.Conversation{
			ID:           primitive.NewObjectID(),
			Participants: participants,
			Messages:     []primitive.ObjectID{},
			CreatedAt:    time.Now(),
		}
		if _, err := database.Conversations.InsertOne(ctx, conversation); err != nil {
			utils.Sugar.Errorw("conversation create failed", "error", err)
			utils.Error(c, http.StatusInternalServerError, "Server error")
			return
		}
	} else if err != nil {
		utils.Sugar.Errorw("conversation lookup failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	message := models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    utils.Sanitize(req.TextMessage),
		CreatedAt:  time.Now(),
	}

	if _, err := database.Messages.InsertOne(ctx, message); err != nil {
		utils.Sugar.Errorw("message insert failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	if _, err := database.Conversations.UpdateOne(ctx, bson.M{"_id": conversation.ID}, bson.M{"$push": bson.M{"messages": message.ID}}); err != nil {
		utils.Sugar.Errorw("conversation update failed", "conversation", conversation.ID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	delivered := false
	if wsManager != nil {
		delivered = wsManager.SendToUser(receiverID.Hex(), websocket.Event{
			Type:    "newMessage",
			Payload: message,
		})
	}
	if !delivered {
		go notifyNewMessage(senderID, receiverID, message.Message)
	}

	utils.Success(c, http.StatusCreated, "Message sent", gin.H{"newMessage": message})
}

// GetMessages returns every message of the caller's conversation with the
// given partner, oldest first. No conversation yet means an empty list.
func GetMessages(c *gin.Context) {
	senderID, ok := callerID(c)
	if !ok {
		return
	}

	partnerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var conversation models.Conversation
	err = database.Conversations.FindOne(ctx, bson.M{"participants": bson.M{"$all": []primitive.ObjectID{senderID, partnerID}}}).Decode(&conversation)
	if err == mongo.ErrNoDocuments {
		utils.Success(c, http.StatusOK, "Messages fetched", gin.H{"messages": []models.Message{}})
		return
	}
	if err != nil {
		utils.Sugar.Errorw("conversation lookup failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	messages := []models.Message{}
	if len(conversation.Messages) > 0 {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		cursor, err := database.Messages.Find(ctx, bson.M{"_id": bson.M{"$in": conversation.Messages}}, opts)
		if err != nil {
			utils.Sugar.Errorw("messages fetch failed", "conversation", conversation.ID.Hex(), "error", err)
			utils.Error(c, http.StatusInternalServerError, "Server error")
			return
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &messages); err != nil {
			utils.Sugar.Errorw("messages decode failed", "conversation", conversation.ID.Hex(), "error", err)
			utils.Error(c, http.StatusInternalServerError, "Server error")
			return
		}
	}

	utils.Success(c, http.StatusOK, "Messages fetched", gin.H{"messages": messages})
}
