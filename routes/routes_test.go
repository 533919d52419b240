package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"vitclubs/config"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	config.Load()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := SetupRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/post/all"},
		{http.MethodGet, "/api/v1/user/suggested"},
		{http.MethodPost, "/api/v1/post/addpost"},
		{http.MethodGet, "/api/v1/message/all/64f000000000000000000001"},
	}

	for _, p := range paths {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(p.method, p.path, nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestLogoutIsPublicAndClearsCookie(t *testing.T) {
	router := SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/logout", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["success"] != true {
		t.Errorf("envelope = %v", body)
	}

	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "token" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the token cookie")
	}
}
