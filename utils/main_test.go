package utils

import (
	"os"
	"testing"

	"vitclubs/config"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	config.Load()
	os.Exit(m.Run())
}
