package employee

import (
	"hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("/profile", middleware.Authorize(rbacService, "employee", "read"), handler.GetProfile)
		employees.PUT("/profile", middleware.Authorize(rbacService, "employee", "update-profile"), handler.UpdateProfile)
		employees.GET("/options", middleware.Authorize(rbacService, "employee", "read"), handler.GetOptions)
		employees.GET("/departments", middleware.Authorize(rbacService, "employee", "read"), handler.GetDepartments)
		employees.GET("", middleware.Authorize(rbacService, "employee", "manage"), handler.GetAll)
		employees.GET("/:id", middleware.Authorize(rbacService, "employee", "read"), handler.GetById)
		employees.PUT("/:id", middleware.Authorize(rbacService, "employee", "manage"), handler.Update)
		employees.DELETE("/:id", middleware.Authorize(rbacService, "employee", "manage"), handler.Deactivate)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.GET("/stats", middleware.Authorize(rbacService, "admin", "read"), handler.AdminStats)
	}
}
