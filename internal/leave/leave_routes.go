package leave

import (
	"hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("", middleware.Authorize(rbacService, "leave", "apply"), handler.Apply)
		leaves.GET("/my", middleware.Authorize(rbacService, "leave", "read"), handler.MyLeaves)
		leaves.GET("/balance", middleware.Authorize(rbacService, "leave", "read"), handler.Balance)
		leaves.GET("/pending", middleware.Authorize(rbacService, "leave", "review"), handler.Pending)
		leaves.GET("", middleware.Authorize(rbacService, "leave", "review"), handler.GetAll)
		leaves.GET("/:id", middleware.Authorize(rbacService, "leave", "read"), handler.GetById)
		leaves.PUT("/:id/cancel", middleware.Authorize(rbacService, "leave", "cancel"), handler.Cancel)
		leaves.PUT("/:id/review", middleware.Authorize(rbacService, "leave", "review"), handler.Review)
	}
}
