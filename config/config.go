package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Secrets must come from the environment or a .env file, never from code.
type AppConfig struct {
	AppPort       string
	GinMode       string
	MongoURI      string
	DBName        string
	JWTSecret     string
	CloudinaryURL string
	CORSOrigin    string

	RateLimitPerMinute int

	VapidPublicKey  string
	VapidPrivateKey string
	VapidSubscriber string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var (
	cfg  AppConfig
	once sync.Once
)

// Load reads .env (when present) and the process environment into the
// global configuration. Safe to call more than once.
func Load() AppConfig {
	once.Do(func() {
		_ = godotenv.Load()

		cfg = AppConfig{
			AppPort:       getEnv("PORT", "3001"),
			GinMode:       getEnv("GIN_MODE", "debug"),
			MongoURI:      getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
			DBName:        getEnv("DB_NAME", "vitclubs"),
			JWTSecret:     os.Getenv("JWT_SECRET"),
			CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
			CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:5173"),

			RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

			VapidPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
			VapidPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
			VapidSubscriber: getEnv("VAPID_SUBSCRIBER", "mailto:admin@vitclubs.app"),

			LogLevel:      getEnv("LOG_LEVEL", "info"),
			LogPath:       os.Getenv("LOG_PATH"),
			LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),
			LogCompress:   getEnvBool("LOG_COMPRESS", false),
		}
	})
	return cfg
}

// Get returns the loaded configuration.
func Get() AppConfig {
	return Load()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
