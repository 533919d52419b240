package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vitclubs/models"
)

func TestAuthorFieldsFallback(t *testing.T) {
	got := authorFields(nil)
	if got["username"] != "" || got["profilepicture"] != "" {
		t.Errorf("nil author should produce empty fields, got %v", got)
	}
}

func TestAuthorFieldsProjection(t *testing.T) {
	u := &models.User{
		ID:             primitive.NewObjectID(),
		Username:       "alice",
		Email:          "alice@x.com",
		ProfilePicture: "https://img/x.jpg",
	}
	got := authorFields(u)
	if got["username"] != "alice" || got["profilepicture"] != "https://img/x.jpg" {
		t.Errorf("authorFields = %v", got)
	}
	if _, leaked := got["email"]; leaked {
		t.Error("email must not appear in the author projection")
	}
}

func TestShapePostDefaults(t *testing.T) {
	post := models.Post{
		ID:        primitive.NewObjectID(),
		Caption:   "hello",
		Image:     "https://img/p.jpg",
		Author:    primitive.NewObjectID(),
		CreatedAt: time.Now(),
	}

	shaped := shapePost(postRow{Post: post})

	likes, ok := shaped["likes"].([]primitive.ObjectID)
	if !ok || len(likes) != 0 {
		t.Errorf("likes should default to an empty set, got %v", shaped["likes"])
	}
	comments, ok := shaped["comments"].([]gin.H)
	if !ok || len(comments) != 0 {
		t.Errorf("comments should default to empty, got %v", shaped["comments"])
	}
	if shaped["caption"] != "hello" {
		t.Errorf("caption = %v", shaped["caption"])
	}
}

func TestShapePostEmbedsComments(t *testing.T) {
	author := &models.User{ID: primitive.NewObjectID(), Username: "bob"}
	post := models.Post{ID: primitive.NewObjectID(), Caption: "c", Author: author.ID}
	comment := models.Comment{
		ID:     primitive.NewObjectID(),
		Text:   "nice",
		Author: author.ID,
		Post:   post.ID,
	}

	shaped := shapePost(postRow{
		Post:        post,
		AuthorDoc:   author,
		CommentRows: []commentRow{{Comment: comment, AuthorDoc: author}},
	})

	comments := shaped["comments"].([]gin.H)
	if len(comments) != 1 {
		t.Fatalf("comments = %v", comments)
	}
	if comments[0]["text"] != "nice" {
		t.Errorf("comment text = %v", comments[0]["text"])
	}
	cauthor := comments[0]["author"].(gin.H)
	if cauthor["username"] != "bob" {
		t.Errorf("comment author = %v", cauthor)
	}
}

func TestCallerIDRejectsMissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if _, ok := callerID(c); ok {
		t.Fatal("callerID accepted a context without identity")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestCallerIDParsesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	id := primitive.NewObjectID()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("userId", id.Hex())

	got, ok := callerID(c)
	if !ok {
		t.Fatal("callerID rejected a valid identity")
	}
	if got != id {
		t.Errorf("callerID = %s, want %s", got.Hex(), id.Hex())
	}
}
