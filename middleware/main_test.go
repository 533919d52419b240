package middleware

import (
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
