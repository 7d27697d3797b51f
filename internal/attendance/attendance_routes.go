package attendance

import (
	"hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	attendances := r.Group("/attendance")
	attendances.Use(middleware.AuthMiddleware())
	{
		attendances.POST("/check-in", middleware.Authorize(rbacService, "attendance", "check"), handler.CheckIn)
		attendances.POST("/check-out", middleware.Authorize(rbacService, "attendance", "check"), handler.CheckOut)
		attendances.GET("/today", middleware.Authorize(rbacService, "attendance", "read"), handler.Today)
		attendances.GET("/history", middleware.Authorize(rbacService, "attendance", "read"), handler.History)
		attendances.GET("/weekly-summary", middleware.Authorize(rbacService, "attendance", "read"), handler.WeeklySummary)
		attendances.POST("/manual", middleware.Authorize(rbacService, "attendance", "manage"), handler.RecordManual)
		attendances.GET("/all", middleware.Authorize(rbacService, "attendance", "manage"), handler.ListByDate)
	}
}
