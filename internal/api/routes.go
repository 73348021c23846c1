package api

import (
	"go-task-organizer/internal/api/handlers"
	"go-task-organizer/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, h *handlers.Handler, jwtSecret string) {
	router.GET("/health", h.HealthCheck)

	// API v1 group
	v1 := router.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	{
		v1.GET("/tree", h.GetTree)
		v1.POST("/save", h.Save)
		v1.GET("/ws", h.Subscribe)

		// Folder routes
		folders := v1.Group("/folders")
		{
			folders.POST("", h.CreateFolder)
			folders.GET("", h.ListFolders)
			folders.GET("/:id", h.GetFolder)
			folders.PUT("/:id", h.UpdateFolder)
			folders.POST("/:id/move", h.MoveFolder)
			folders.DELETE("/:id", h.DeleteFolder)
			folders.POST("/:id/tasks", h.CreateTask)
		}

		// Task routes
		tasks := v1.Group("/tasks")
		{
			tasks.POST("/batch", h.HandleBatchOperation)
			tasks.GET("/:id", h.GetTask)
			tasks.PUT("/:id", h.UpdateTask)
			tasks.PUT("/:id/done", h.SetDone)
			tasks.POST("/:id/move", h.MoveTask)
			tasks.POST("/:id/folders/:folderId", h.AddMembership)
			tasks.DELETE("/:id/folders/:folderId", h.RemoveMembership)
			tasks.DELETE("/:id", h.DeleteTask)
		}

		// Export routes
		v1.GET("/export/:format", h.Export)
	}
}
