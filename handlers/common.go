package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vitclubs/models"
	"vitclubs/utils"
	"vitclubs/websocket"
)

var wsManager *websocket.Manager

var (
	vapidPublicKey  string
	vapidPrivateKey string
)

// SetWebSocketManager wires the presence manager into the handlers.
func SetWebSocketManager(manager *websocket.Manager) {
	wsManager = manager
}

// SetVapidKeys stores the web push key pair for this process.
func SetVapidKeys(publicKey, privateKey string) {
	vapidPublicKey = publicKey
	vapidPrivateKey = privateKey
}

// callerID resolves the authenticated user's ObjectID from the gin context.
// A second return of false means the response has already been written.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "User not authenticated")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// authorFields is the projection of a user embedded in post and comment
// responses.
func authorFields(u *models.User) gin.H {
	if u == nil {
		return gin.H{
			"_id":            "",
			"username":       "",
			"profilepicture": "",
		}
	}
	return gin.H{
		"_id":            u.ID.Hex(),
		"username":       u.Username,
		"profilepicture": u.ProfilePicture,
	}
}
