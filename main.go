package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"vitclubs/config"
	"vitclubs/database"
	"vitclubs/handlers"
	"vitclubs/routes"
	"vitclubs/utils"
	"vitclubs/websocket"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	if cfg.JWTSecret == "" {
		utils.Sugar.Fatal("JWT_SECRET must be set")
	}

	var dbErr error
	for i := 1; i <= 3; i++ {
		if dbErr = database.ConnectMongo(); dbErr != nil {
			utils.Sugar.Errorw("mongodb connection attempt failed", "attempt", i, "error", dbErr)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	if dbErr != nil {
		utils.Sugar.Fatalw("failed to connect to mongodb", "error", dbErr)
	}
	defer database.DisconnectMongo()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureIndexes(ctx); err != nil {
		cancel()
		utils.Sugar.Fatalw("failed to create indexes", "error", err)
	}
	cancel()

	utils.Sugar.Infow("connected to mongodb", "db", cfg.DBName)

	// VAPID keys generated per process when not configured; subscriptions
	// made against generated keys do not survive a restart.
	publicKey, privateKey := cfg.VapidPublicKey, cfg.VapidPrivateKey
	if publicKey == "" || privateKey == "" {
		var err error
		privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
		if err != nil {
			utils.Sugar.Warnw("failed to generate VAPID keys, push disabled", "error", err)
		}
	}
	handlers.SetVapidKeys(publicKey, privateKey)

	gin.SetMode(cfg.GinMode)

	router := routes.SetupRouter()

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "VITCLUBS backend running",
			"success": true,
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	wsManager := websocket.NewManager()
	go wsManager.Start()
	handlers.SetWebSocketManager(wsManager)

	router.GET("/ws", func(c *gin.Context) {
		websocket.Handler(wsManager)(c.Writer, c.Request)
	})

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.Sugar.Infow("server listening", "port", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Sugar.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Sugar.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Sugar.Errorw("forced shutdown", "error", err)
	}

	utils.Sugar.Info("server stopped")
}
