package notification

import (
	"hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", middleware.Authorize(rbacService, "notification", "read"), handler.List)
		notifications.PUT("/read-all", middleware.Authorize(rbacService, "notification", "update"), handler.MarkAllRead)
		notifications.PUT("/:id/read", middleware.Authorize(rbacService, "notification", "update"), handler.MarkRead)
		notifications.DELETE("/:id", middleware.Authorize(rbacService, "notification", "update"), handler.Delete)
	}
}
