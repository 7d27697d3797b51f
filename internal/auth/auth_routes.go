package auth

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"hrms/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	// Login and registration are throttled per IP to slow down
	// credential stuffing. Everything else rides on the JWT.
	loginLimit := middleware.RateLimitByIP(rate.Limit(1), 5)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", loginLimit, handler.Register)
		authGroup.POST("/login", loginLimit, handler.Login)
		authGroup.POST("/refresh", handler.Refresh)

		authGroup.GET("/me", middleware.AuthMiddleware(), handler.GetMe)
		authGroup.POST("/change-password", middleware.AuthMiddleware(), handler.ChangePassword)
	}
}
