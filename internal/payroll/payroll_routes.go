package payroll

import (
	"hrms/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	idempotent := middleware.Idempotency(rdb)

	payrolls := r.Group("/payroll")
	payrolls.Use(middleware.AuthMiddleware())
	{
		payrolls.GET("/my", middleware.Authorize(rbacService, "payroll", "read"), handler.My)
		payrolls.POST("", middleware.Authorize(rbacService, "payroll", "manage"), idempotent, handler.Upsert)
		payrolls.GET("", middleware.Authorize(rbacService, "payroll", "manage"), handler.GetAll)
		payrolls.POST("/generate-bulk", middleware.Authorize(rbacService, "payroll", "manage"), idempotent, handler.GenerateBulk)
		payrolls.GET("/:id", middleware.Authorize(rbacService, "payroll", "read"), handler.GetById)
		payrolls.PUT("/:id/process", middleware.Authorize(rbacService, "payroll", "manage"), handler.Process)
		payrolls.GET("/:id/payslip", middleware.Authorize(rbacService, "payroll", "read"), handler.Payslip)
	}
}
