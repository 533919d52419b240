package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vitclubs/database"
	"vitclubs/models"
	"vitclubs/utils"
)

// embeddedCommentLimit caps how many recent comments ride along with each
// post in feed responses.
const embeddedCommentLimit = 10

type commentRow struct {
	models.Comment `bson:",inline"`
	AuthorDoc      *models.User `bson:"authorDoc"`
}

type postRow struct {
	models.Post `bson:",inline"`
	AuthorDoc   *models.User `bson:"authorDoc"`
	CommentRows []commentRow `bson:"commentDocs"`
}

// feedPipeline joins author profiles and the most recent comments (with
// their authors) onto posts matching the filter, newest post first.
func feedPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "authorDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$authorDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "comments"},
			{Key: "let", Value: bson.D{{Key: "postId", Value: "$_id"}}},
			{Key: "pipeline", Value: mongo.Pipeline{
				{{Key: "$match", Value: bson.D{
					{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$post", "$$postId"}}}},
				}}},
				{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
				{{Key: "$limit", Value: embeddedCommentLimit}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "users"},
					{Key: "localField", Value: "author"},
					{Key: "foreignField", Value: "_id"},
					{Key: "as", Value: "authorDoc"},
				}}},
				{{Key: "$unwind", Value: bson.D{
					{Key: "path", Value: "$authorDoc"},
					{Key: "preserveNullAndEmptyArrays", Value: true},
				}}},
			}},
			{Key: "as", Value: "commentDocs"},
		}}},
	}
}

func shapeComment(row commentRow) gin.H {
	return gin.H{
		"_id":       row.ID.Hex(),
		"text":      row.Text,
		"post":      row.Post.Hex(),
		"createdAt": row.CreatedAt,
		"author":    authorFields(row.AuthorDoc),
	}
}

func shapePost(row postRow) gin.H {
	likes := row.Likes
	if likes == nil {
		likes = []primitive.ObjectID{}
	}
	comments := make([]gin.H, len(row.CommentRows))
	for i, cr := range row.CommentRows {
		comments[i] = shapeComment(cr)
	}
	return gin.H{
		"_id":       row.ID.Hex(),
		"caption":   row.Caption,
		"image":     row.Image,
		"content":   row.Content,
		"createdAt": row.CreatedAt,
		"likes":     likes,
		"author":    authorFields(row.AuthorDoc),
		"comments":  comments,
	}
}

func fetchFeed(ctx context.Context, match bson.M) ([]gin.H, error) {
	cursor, err := database.Posts.Aggregate(ctx, feedPipeline(match))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []postRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	shaped := make([]gin.H, len(rows))
	for i, row := range rows {
		shaped[i] = shapePost(row)
	}
	return shaped, nil
}

func AddNewPost(c *gin.Context) {
	authorID, ok := callerID(c)
	if !ok {
		return
	}

	caption := c.PostForm("caption")
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Image is required")
		return
	}
	defer file.Close()

	if caption == "" {
		utils.Error(c, http.StatusBadRequest, "Caption is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	postID := primitive.NewObjectID()

	// Cloudinary constrains the image to 800x800 and re-encodes it, so the
	// stored URL is already the optimized variant.
	imageURL, err := utils.UploadImage(ctx, file, "vitclubs/posts", postID.Hex(), utils.PostTransformation)
	if err != nil {
		utils.Sugar.Errorw("post image upload failed", "author", authorID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Error uploading image")
		return
	}

	var author models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": authorID}).Decode(&author); err != nil {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}

	post := models.Post{
		ID:        postID,
		Caption:   utils.Sanitize(caption),
		Image:     imageURL,
		Author:    authorID,
		Content:   utils.Sanitize(c.PostForm("content")),
		CreatedAt: time.Now(),
		Likes:     []primitive.ObjectID{},
		Comments:  []primitive.ObjectID{},
	}

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		utils.Sugar.Errorw("post insert failed", "author", authorID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	if _, err := database.Users.UpdateOne(ctx, bson.M{"_id": authorID}, bson.M{"$push": bson.M{"posts": post.ID}}); err != nil {
		utils.Sugar.Errorw("author posts update failed", "author", authorID.Hex(), "post", post.ID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusCreated, "Post created successfully", gin.H{
		"post": shapePost(postRow{Post: post, AuthorDoc: &author}),
	})
}

func GetAllPost(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, err := fetchFeed(ctx, bson.M{})
	if err != nil {
		utils.Sugar.Errorw("feed fetch failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusOK, "Posts fetched", gin.H{"posts": posts})
}

func GetUserPost(c *gin.Context) {
	authorID, ok := callerID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, err := fetchFeed(ctx, bson.M{"author": authorID})
	if err != nil {
		utils.Sugar.Errorw("user feed fetch failed", "author", authorID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusOK, "Posts fetched", gin.H{"posts": posts})
}

// LikePost toggles the caller's membership in the post's likes set. Liking
// an already-liked post removes the like.
func LikePost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		utils.Sugar.Errorw("post lookup failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	liked := false
	for _, id := range post.Likes {
		if id == userID {
			liked = true
			break
		}
	}

	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	message := "Post liked"
	if liked {
		update = bson.M{"$pull": bson.M{"likes": userID}}
		message = "Post disliked"
	}

	if _, err := database.Posts.UpdateOne(ctx, bson.M{"_id": postID}, update); err != nil {
		utils.Sugar.Errorw("like toggle failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusOK, message, nil)
}

// DislikePost always removes the caller from the likes set.
func DislikePost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.Posts.FindOne(ctx, bson.M{"_id": postID}).Err(); err != nil {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}

	if _, err := database.Posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$pull": bson.M{"likes": userID}}); err != nil {
		utils.Sugar.Errorw("dislike failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusOK, "Post disliked", nil)
}

func AddComment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		utils.Error(c, http.StatusBadRequest, "Comment text is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.Posts.FindOne(ctx, bson.M{"_id": postID}).Err(); err != nil {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      utils.Sanitize(req.Text),
		Author:    userID,
		Post:      postID,
		CreatedAt: time.Now(),
	}

	if _, err := database.Comments.InsertOne(ctx, comment); err != nil {
		utils.Sugar.Errorw("comment insert failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	if _, err := database.Posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"comments": comment.ID}}); err != nil {
		utils.Sugar.Errorw("post comments update failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	var author models.User
	authorDoc := &author
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&author); err != nil {
		utils.Sugar.Errorw("comment author lookup failed", "author", userID.Hex(), "error", err)
		authorDoc = nil
	}

	utils.Success(c, http.StatusCreated, "Comment added", gin.H{
		"comment": shapeComment(commentRow{Comment: comment, AuthorDoc: authorDoc}),
	})
}

func GetCommentsOfPost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "post", Value: postID}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "authorDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$authorDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := database.Comments.Aggregate(ctx, pipeline)
	if err != nil {
		utils.Sugar.Errorw("comments fetch failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}
	defer cursor.Close(ctx)

	var rows []commentRow
	if err := cursor.All(ctx, &rows); err != nil {
		utils.Sugar.Errorw("comments decode failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	comments := make([]gin.H, len(rows))
	for i, row := range rows {
		comments[i] = shapeComment(row)
	}

	utils.Success(c, http.StatusOK, "Comments fetched", gin.H{"comments": comments})
}

// DeletePost removes the post, pulls its id from the author's posts list and
// deletes every comment referencing it. The cascade is best effort: a failure
// partway through is logged and surfaced as a single 500 with no rollback.
func DeletePost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		utils.Sugar.Errorw("post lookup failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	if post.Author != userID {
		utils.Error(c, http.StatusForbidden, "Unauthorized")
		return
	}

	if _, err := database.Posts.DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
		utils.Sugar.Errorw("post delete failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	if _, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$pull": bson.M{"posts": postID}}); err != nil {
		utils.Sugar.Errorw("author posts cleanup failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	if _, err := database.Comments.DeleteMany(ctx, bson.M{"post": postID}); err != nil {
		utils.Sugar.Errorw("comment cascade failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusOK, "Post deleted", nil)
}

// BookmarkPost toggles the post id in the caller's bookmarks list.
func BookmarkPost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.Posts.FindOne(ctx, bson.M{"_id": postID}).Err(); err != nil {
		utils.Error(c, http.StatusNotFound, "Post not found")
		return
	}

	var user models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.Error(c, http.StatusNotFound, "User not found")
		return
	}

	bookmarked := false
	for _, id := range user.Bookmarks {
		if id == postID {
			bookmarked = true
			break
		}
	}

	update := bson.M{"$addToSet": bson.M{"bookmarks": postID}}
	kind := "saved"
	message := "Post bookmarked"
	if bookmarked {
		update = bson.M{"$pull": bson.M{"bookmarks": postID}}
		kind = "unsaved"
		message = "Post removed from bookmark"
	}

	if _, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		utils.Sugar.Errorw("bookmark toggle failed", "post", postID.Hex(), "error", err)
		utils.Error(c, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(c, http.StatusOK, message, gin.H{"type": kind})
}
