package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/campuslink/campuslink/internal/app/controllers"
	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/pkg/auth"
)

// Controllers bundles every controller for route registration
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Organization *controllers.OrganizationController
	Opportunity  *controllers.OpportunityController
	Signup       *controllers.SignupController
}

// SetupRoutes registers all API routes under /api/v1. Listing and detail
// endpoints are public; everything that writes requires a valid token.
func SetupRoutes(router *gin.Engine, ctrls Controllers, jwtService *auth.JWTService) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	authRequired := middleware.JWTAuth(jwtService)

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", ctrls.Auth.Register)
		authGroup.POST("/login", ctrls.Auth.Login)
		authGroup.POST("/refresh", ctrls.Auth.RefreshToken)
		authGroup.POST("/logout", ctrls.Auth.Logout)
	}

	users := v1.Group("/users", authRequired)
	{
		users.GET("/me", ctrls.User.GetProfile)
		users.GET("/me/signups", ctrls.User.GetSignups)
		users.GET("/me/organizations", ctrls.User.GetOrganizations)
	}

	orgs := v1.Group("/organizations")
	{
		orgs.GET("/:id", ctrls.Organization.Get)
		orgs.GET("/:id/opportunities", ctrls.Organization.ListOpportunities)

		orgs.POST("", authRequired, ctrls.Organization.Create)
		orgs.PUT("/:id", authRequired, ctrls.Organization.Update)
		orgs.DELETE("/:id", authRequired, ctrls.Organization.Delete)
		orgs.GET("/:id/signups", authRequired, ctrls.Organization.ListSignups)
		orgs.POST("/:id/opportunities", authRequired, ctrls.Opportunity.Create)
	}

	opps := v1.Group("/opportunities")
	{
		opps.GET("", ctrls.Opportunity.List)
		opps.GET("/:id", ctrls.Opportunity.Get)

		opps.PUT("/:id", authRequired, ctrls.Opportunity.Update)
		opps.DELETE("/:id", authRequired, ctrls.Opportunity.Delete)
		opps.POST("/:id/signups", authRequired, ctrls.Signup.Create)
	}

	v1.DELETE("/signups/:id", authRequired, ctrls.Signup.Delete)
}
