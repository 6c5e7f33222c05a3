package app

import (
	"github.com/gin-gonic/gin"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/middleware"
)

// ----------------------------------------------------------------------------
// Route Registration
// ----------------------------------------------------------------------------

func (a *App) RegisterRoutes() *gin.Engine {
	router := gin.New()

	// Global middleware chain
	router.Use(gin.Recovery())      // Panic recovery
	router.Use(middleware.Logger()) // Structured slog request logging
	router.Use(middleware.CORS())   // CORS support

	// Health check routes (public)
	health := router.Group("/health")
	{
		health.GET("/readiness", a.HandleReadiness)
		health.GET("/liveness", a.HandleLiveness)
	}

	// Auth routes (public, except signout which verifies the token)
	auth := router.Group("/auth")
	{
		auth.POST("/signup", a.HandleSignup)
		auth.POST("/signin", a.HandleSignin)
		auth.GET("/signout", middleware.Authenticate(a.jwt, a.db), a.HandleSignout)
		auth.POST("/reset-password", a.resetLimiter.Middleware(), a.HandleForgotPassword)
		auth.POST("/reset-password/:token", a.HandleResetPassword)
	}

	// API routes (protected - requires authentication)
	api := router.Group("/api")
	api.Use(middleware.Authenticate(a.jwt, a.db))
	{
		api.GET("/users", a.HandleListUsers)
		api.GET("/users/:userId", a.HandleGetUser)
		api.PUT("/users/:userId", a.HandleUpdateUser)
		api.DELETE("/users/:userId", a.HandleDeleteUser)
		api.GET("/users/:userId/followers", a.HandleGetFollowers)
		api.GET("/users/:userId/following", a.HandleGetFollowing)
		api.POST("/follow/:userId", a.HandleFollow)
		api.DELETE("/follow/:userId", a.HandleUnfollow)
	}

	return router
}
