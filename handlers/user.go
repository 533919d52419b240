package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vitclubs/database"
	"vitclubs/models"
	"vitclubs/utils"
)

const tokenTTL = 24 * time.Hour

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	College  string `json:"college"`
	IsAdmin  bool   `json:"isAdmin"`
	Type     string `json:"type"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "All fields are required")
		return
	}

	if req.Username == "" || req.Password == "" || req.Email == "" || req.College == "" {
		utils.Error(c, http.StatusBadRequest, "All fields are required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var existing models.User
	err := database.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&existing)
	if err == nil {
		utils.Error(c, http.StatusBadRequest, "Email already exists")
		return
	}
	if err != mongo.ErrNoDocuments {
		utils.Sugar.Errorw("register lookup failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Sugar.Errorw("password hash failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	if req.Type == "" {
		req.Type = "student"
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  strings.TrimSpace(req.Username),
		Email:     req.Email,
		Password:  hashed,
		College:   req.College,
		Interests: []string{},
		Following: []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		Posts:     []primitive.ObjectID{},
		Bookmarks: []primitive.ObjectID{},
		Type:      req.Type,
		IsAdmin:   req.IsAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Username uniqueness rides on the store's unique index; a collision
	// surfaces here as a generic failure.
	if _, err := database.Users.InsertOne(ctx, user); err != nil {
		utils.Sugar.Errorw("register insert failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusCreated, "Account created successfully", nil)
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		utils.Error(c, http.StatusUnauthorized, "Something is missing, please check!")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unknown email and wrong password share one message so the endpoint
	// can't be used to enumerate accounts.
	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.Error(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if err != nil {
		utils.Sugar.Errorw("login lookup failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		utils.Error(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex(), tokenTTL)
	if err != nil {
		utils.Sugar.Errorw("token sign failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", token, int(tokenTTL.Seconds()), "/", "", false, true)

	utils.Success(c, http.StatusOK, "Welcome back "+user.Username, gin.H{
		"user": user,
	})
}

func Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", "", -1, "/", "", false, true)
	utils.Success(c, http.StatusOK, "Logged Out Successfully", nil)
}

func GetProfile(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.Sugar.Errorw("profile lookup failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	posts, err := findPostsByIDs(ctx, user.Posts)
	if err != nil {
		utils.Sugar.Errorw("profile posts lookup failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}
	bookmarks, err := findPostsByIDs(ctx, user.Bookmarks)
	if err != nil {
		utils.Sugar.Errorw("profile bookmarks lookup failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusOK, "Profile fetched", gin.H{
		"user": gin.H{
			"_id":            user.ID.Hex(),
			"username":       user.Username,
			"email":          user.Email,
			"profilepicture": user.ProfilePicture,
			"bio":            user.Bio,
			"gender":         user.Gender,
			"college":        user.College,
			"club":           user.Club,
			"interests":      user.Interests,
			"following":      user.Following,
			"followers":      user.Followers,
			"posts":          posts,
			"bookmarks":      bookmarks,
			"type":           user.Type,
			"isAdmin":        user.IsAdmin,
			"createdAt":      user.CreatedAt,
		},
	})
}

// findPostsByIDs resolves a reference list into post documents, newest first.
func findPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	posts := []models.Post{}
	if len(ids) == 0 {
		return posts, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := database.Posts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func EditProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	set := bson.M{}
	if bio := c.PostForm("bio"); bio != "" {
		set["bio"] = utils.Sanitize(bio)
	}
	if gender := c.PostForm("gender"); gender != "" {
		set["gender"] = gender
	}
	if club := c.PostForm("club"); club != "" {
		set["club"] = utils.Sanitize(club)
	}

	file, _, err := c.Request.FormFile("profilepicture")
	if err == nil {
		defer file.Close()

		url, err := utils.UploadImage(ctx, file, "vitclubs/avatars", userID.Hex(), utils.ProfileTransformation)
		if err != nil {
			utils.Sugar.Errorw("avatar upload failed", "userId", userID.Hex(), "error", err)
			utils.Error(c, http.StatusInternalServerError, "Error uploading profile picture")
			return
		}
		set["profilepicture"] = url
	}

	if len(set) == 0 {
		utils.Success(c, http.StatusOK, "No changes to update", nil)
		return
	}
	set["updatedAt"] = time.Now()

	result := database.Users.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var user models.User
	if err := result.Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Error(c, http.StatusNotFound, "User not found")
			return
		}
		utils.Sugar.Errorw("profile update failed", "userId", userID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

func GetSuggestedUsers(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$ne": userID}})
	if err != nil {
		utils.Sugar.Errorw("suggested users lookup failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.Sugar.Errorw("suggested users decode failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusOK, "Suggested users", gin.H{"users": users})
}

func FollowOrUnfollow(c *gin.Context) {
	followerID, ok := callerID(c)
	if !ok {
		return
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}

	if followerID == targetID {
		utils.Error(c, http.StatusBadRequest, "You cannot follow yourself")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var follower models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": followerID}).Decode(&follower); err != nil {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}
	if err := database.Users.FindOne(ctx, bson.M{"_id": targetID}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err(); err != nil {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}

	following := false
	for _, id := range follower.Following {
		if id == targetID {
			following = true
			break
		}
	}

	op := "$addToSet"
	message := "Successfully followed"
	if following {
		op = "$pull"
		message = "Successfully unfollowed"
	}

	// Both edge updates are fired concurrently with no transaction spanning
	// them; a crash in between leaves the graph asymmetric.
	errs := make(chan error, 2)
	go func() {
		_, err := database.Users.UpdateOne(ctx, bson.M{"_id": followerID}, bson.M{op: bson.M{"following": targetID}})
		errs <- err
	}()
	go func() {
		_, err := database.Users.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{op: bson.M{"followers": followerID}})
		errs <- err
	}()

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			utils.Sugar.Errorw("follow edge update failed", "follower", followerID.Hex(), "target", targetID.Hex(), "error", err)
			utils.Error(c, http.StatusInternalServerError, "Server error")
			return
		}
	}

	utils.Success(c, http.StatusOK, message, nil)
}

func SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		utils.Error(c, http.StatusBadRequest, "Search query is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"username": pattern},
		{"college": pattern},
		{"club": pattern},
		{"interests": bson.M{"$elemMatch": bson.M{"$regex": pattern}}},
	}}

	cursor, err := database.Users.Find(ctx, filter, options.Find().SetLimit(20))
	if err != nil {
		utils.Sugar.Errorw("user search failed", "query", query, "error", err)
		utils.Error(c, http.StatusInternalServerError, "Failed to fetch search results")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.Sugar.Errorw("user search decode failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Failed to fetch search results")
		return
	}

	message := "Search results"
	if len(users) == 0 {
		message = "No users found matching your search criteria"
	}

	utils.Success(c, http.StatusOK, message, gin.H{
		"results": users,
		"count":   len(users),
	})
}
