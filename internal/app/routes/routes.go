package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/studyshare/backend/internal/app/controllers"
	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/middleware"
	"github.com/studyshare/backend/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	materialController *controllers.MaterialController,
	personalFileController *controllers.PersonalFileController,
	chatController *controllers.ChatController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	// Every route below requires a valid token AND an active (not suspended)
	// account: the status is rechecked against the database per request.
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	authenticated.Use(authMiddleware.ActiveUserRequired())
	{
		authenticated.GET("/auth/me", authController.Me)
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.PATCH("/users/me", userController.UpdateProfile)

		// Material routes
		materials := authenticated.Group("/materials")
		{
			materials.GET("", materialController.List)
			materials.POST("", materialController.Upload)
			materials.GET("/mine", materialController.ListMine)
			materials.GET("/bookmarks", materialController.ListBookmarks)
			materials.GET("/:id/download", materialController.Download)
			materials.POST("/:id/bookmark", materialController.ToggleBookmark)
			materials.DELETE("/:id", materialController.Delete)
		}

		// Personal file area
		personal := authenticated.Group("/personal")
		{
			personal.GET("/contents", personalFileController.GetContents)
			personal.POST("/folders", personalFileController.CreateFolder)
			personal.DELETE("/folders/:id", personalFileController.DeleteFolder)
			personal.POST("/files", personalFileController.UploadFile)
			personal.GET("/files/:id/download", personalFileController.DownloadFile)
			personal.DELETE("/files/:id", personalFileController.DeleteFile)
		}

		// Chat routes
		chat := authenticated.Group("/chat")
		{
			chat.GET("/topics", chatController.ListTopics)
			chat.POST("/topics", chatController.CreateTopic)
			chat.POST("/topics/:id/join", chatController.JoinTopic)
			chat.POST("/topics/:id/leave", chatController.LeaveTopic)
			chat.GET("/topics/:id/messages", chatController.GetTopicMessages)
			chat.POST("/topics/:id/messages", chatController.SendMessage)
			chat.GET("/topics/:id/ws", wsHandler.HandleConnection)
			chat.POST("/messages/:id/reactions", chatController.AddReaction)
			chat.DELETE("/messages/:id/reactions", chatController.RemoveReaction)
			chat.GET("/general/messages", chatController.GetGeneralMessages)
			chat.POST("/general/messages", chatController.SendGeneralMessage)
		}

		// Admin routes
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			admin.GET("/users", userController.ListUsers)
			admin.PATCH("/users/:id/role", userController.UpdateRole)
			admin.PATCH("/users/:id/status", userController.UpdateStatus)
			admin.DELETE("/users/:id", userController.DeleteUser)
			admin.GET("/materials/pending", materialController.ListPending)
			admin.PATCH("/materials/:id/status", materialController.UpdateStatus)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
