package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vitclubs/config"
	"vitclubs/handlers"
	"vitclubs/middleware"
)

// SetupRouter assembles the full REST surface under /api/v1.
func SetupRouter() *gin.Engine {
	cfg := config.Get()

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authLimiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute)

	user := router.Group("/api/v1/user")
	{
		user.POST("/register", middleware.RateLimitMiddleware(authLimiter), handlers.Register)
		user.POST("/login", middleware.RateLimitMiddleware(authLimiter), handlers.Login)
		user.GET("/logout", handlers.Logout)

		auth := user.Group("")
		auth.Use(middleware.JWTAuthMiddleware())
		auth.GET("/:id/profile", handlers.GetProfile)
		auth.POST("/profile/edit", handlers.EditProfile)
		auth.GET("/suggested", handlers.GetSuggestedUsers)
		auth.GET("/search", handlers.SearchUsers)
		auth.POST("/followorunfollow/:id", handlers.FollowOrUnfollow)
	}

	post := router.Group("/api/v1/post")
	post.Use(middleware.JWTAuthMiddleware())
	{
		post.POST("/addpost", handlers.AddNewPost)
		post.GET("/all", handlers.GetAllPost)
		post.GET("/userpost/all", handlers.GetUserPost)
		post.POST("/:id/like", handlers.LikePost)
		post.POST("/:id/dislike", handlers.DislikePost)
		post.POST("/:id/comment", handlers.AddComment)
		post.GET("/:id/comment/all", handlers.GetCommentsOfPost)
		post.DELETE("/delete/:id", handlers.DeletePost)
		post.GET("/:id/bookmark", handlers.BookmarkPost)
	}

	message := router.Group("/api/v1/message")
	message.Use(middleware.JWTAuthMiddleware())
	{
		message.POST("/send/:id", handlers.SendMessage)
		message.GET("/all/:id", handlers.GetMessages)
	}

	push := router.Group("/api/v1/push")
	{
		push.GET("/vapid-public-key", handlers.GetVapidPublicKey)
		push.POST("/subscribe", middleware.JWTAuthMiddleware(), handlers.SubscribePush)
	}

	return router
}
