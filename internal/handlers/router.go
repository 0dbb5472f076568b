package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/services"
	"github.com/taskforge/project-service/internal/utils"
)

type HandlerManager struct {
	authHandler      *AuthHandler
	projectHandler   *ProjectHandler
	taskHandler      *TaskHandler
	analyticsHandler *AnalyticsHandler
	chatHandler      *ChatHandler
	uploadHandler    *UploadHandler
	authMiddleware   *AuthMiddleware
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		projectHandler:   NewProjectHandler(serviceManager.Project(), logger),
		taskHandler:      NewTaskHandler(serviceManager.Task(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), logger),
		chatHandler:      NewChatHandler(serviceManager.Chat(), logger),
		uploadHandler:    NewUploadHandler(serviceManager.Upload(), logger),
		authMiddleware:   NewAuthMiddleware(serviceManager.Auth(), serviceManager.Authorization(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
	}

	requireAuth := hm.authMiddleware.RequireAuth()
	managerOnly := hm.authMiddleware.RequireProjectRoles(false, models.RoleManager)

	// Mutating project-scoped routes, each gated by the resolved role
	edit := v1.Group("/edit")
	edit.Use(requireAuth)
	{
		edit.PUT("/:projectId/progress/:taskId",
			hm.authMiddleware.RequireProjectRoles(true, models.RoleManager, models.RoleMember),
			hm.taskHandler.EditProgress)
		edit.PUT("/:projectId/duedate/:taskId", managerOnly, hm.taskHandler.EditDueDate)
		edit.POST("/:projectId/addMember", managerOnly, hm.projectHandler.AddMember)
		edit.POST("/:projectId/addMember/:taskId", managerOnly, hm.taskHandler.AddAssignee)
		edit.PUT("/:projectId/edittaskdes/:taskId", managerOnly, hm.taskHandler.EditTaskDescription)
		edit.PUT("/:projectId/deletetask/:taskId", managerOnly, hm.taskHandler.DeleteTask)
		edit.PUT("/:projectId/editproject", managerOnly, hm.projectHandler.EditProject)
		edit.DELETE("/:projectId/deleteproject", managerOnly, hm.projectHandler.DeleteProject)
	}

	// Project view and creation routes - any authenticated user
	project := v1.Group("/project")
	project.Use(requireAuth)
	{
		project.POST("/addProject", hm.projectHandler.AddProject)
		project.GET("/viewAllProject", hm.projectHandler.ViewAllProject)
		project.GET("/:projectId", hm.projectHandler.ViewProject)
		project.GET("/:projectId/tasks", hm.taskHandler.ListTasks)
		project.POST("/:projectId/createTask", managerOnly, hm.taskHandler.CreateTask)
		project.GET("/:projectId/progress", hm.analyticsHandler.Progress)
		project.GET("/:projectId/workload", hm.analyticsHandler.Workload)
		project.GET("/:projectId/workload/export", hm.analyticsHandler.ExportWorkload)
	}

	// Chat routes - membership enforced in the service
	chat := v1.Group("/chat")
	chat.Use(requireAuth)
	{
		chat.GET("/:projectId", hm.chatHandler.History)
		chat.POST("/:projectId", hm.chatHandler.SendMessage)
	}

	// File routes
	files := v1.Group("/files")
	files.Use(requireAuth)
	{
		files.POST("/presign-upload", hm.uploadHandler.PresignUpload)
		files.GET("/:fileId/presign-download", hm.uploadHandler.PresignDownload)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "project-service",
		})
	})
}
