package v1

import (
	"go_domains/api/v1/auth"
	"go_domains/api/v1/domains"
	"go_domains/api/v1/middleware"
	"go_domains/internal/config"
	"go_domains/internal/httpx"
	"go_domains/internal/tenantdomain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, db *gorm.DB, cfg *config.Config, service *tenantdomain.Service) {
	v1 := r.Group("/api/v1")
	{
		// Public routes (no authentication required)
		v1.GET("/ping", pingHandler)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", auth.LoginHandler(db, cfg))
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/me", meHandler)

			domainsHandler := domains.NewHandler(service)
			domainsGroup := protected.Group("/domains")
			{
				domainsGroup.GET("", domainsHandler.List)
				domainsGroup.POST("/subdomain", domainsHandler.CreateSubdomain)
				domainsGroup.POST("/custom", domainsHandler.SetupCustomDomain)
				domainsGroup.POST("/delete", domainsHandler.Delete)
				domainsGroup.POST("/verify", domainsHandler.Verify)
			}
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}

// meHandler returns current user information
func meHandler(c *gin.Context) {
	uid, _ := c.Get("uid")
	username, _ := c.Get("username")
	role, _ := c.Get("role")

	httpx.OK(c, gin.H{
		"uid":      uid,
		"username": username,
		"role":     role,
	})
}
