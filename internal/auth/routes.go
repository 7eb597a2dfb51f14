package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the auth endpoints.
func RegisterRoutes(r *gin.Engine, handler *Handler, service *Service) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.GET("/me", RequireAuth(service), handler.Me)
	}
}
