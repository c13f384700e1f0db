package routes

import (
	"net/http"

	"github.com/aaeducates/backend/internal/app/controllers"
	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/app/services"
	"github.com/aaeducates/backend/internal/middleware"
	"github.com/aaeducates/backend/internal/pkg/websocket"
	"github.com/gin-gonic/gin"
)

// Handlers groups the controllers mounted under /api/v1
type Handlers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Payment   *controllers.PaymentController
	Community *controllers.CommunityController
	ChatWS    *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	catalog *services.Catalog,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/refresh", handlers.Auth.RefreshToken)
		auth.POST("/verify", handlers.Auth.VerifyToken)
		auth.POST("/logout", authMiddleware.JWTAuth(), handlers.Auth.Logout)
	}

	// --- Payments require a signed-in caller ---
	payments := v1.Group("/payments")
	{
		paymentsAuth := payments.Group("")
		paymentsAuth.Use(authMiddleware.JWTAuth())
		paymentsAuth.POST("/create-checkout-session", handlers.Payment.CreateCheckoutSession)
		paymentsAuth.POST("/verify-payment", handlers.Payment.VerifyPayment)
	}

	// Static segment wins over /:id, so "me" never reaches the users resource
	v1.GET("/users/users/me", authMiddleware.JWTAuth(), handlers.User.Me)

	// --- Resource routes ---
	// Anonymous callers pass through; the authorization engine decides per kind
	resources := v1.Group("")
	resources.Use(authMiddleware.OptionalAuth())
	registerResources(resources, catalog)

	community := resources.Group("/community")
	{
		community.POST("/posts/:id/like", handlers.Community.ToggleLike)
		community.GET("/group-chats/:id/ws", handlers.ChatWS.HandleConnection)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})
}

// registerResources mounts the CRUD routes of every resource kind
func registerResources(rg *gin.RouterGroup, catalog *services.Catalog) {
	users := rg.Group("/users")
	{
		controllers.NewResourceController(catalog.Users).Register(users.Group("/users"))
		controllers.NewResourceController(catalog.Students).Register(users.Group("/students"))
		controllers.NewResourceController(catalog.Parents).Register(users.Group("/parents"))
		controllers.NewResourceController(catalog.Schools).Register(users.Group("/schools"))
		controllers.NewResourceController(catalog.CorporatePartners).Register(users.Group("/corporate-partners"))
		controllers.NewResourceController(catalog.Admins).Register(users.Group("/admins"))
	}

	projects := rg.Group("/projects")
	{
		controllers.NewResourceController(catalog.Projects).Register(projects.Group("/projects"))
		controllers.NewResourceController(catalog.Submissions).Register(projects.Group("/submissions"))
	}

	mentorship := rg.Group("/mentorship")
	{
		controllers.NewResourceController(catalog.Mentors).Register(mentorship.Group("/mentors"))
		controllers.NewResourceController(catalog.Sessions).Register(mentorship.Group("/sessions"))
		controllers.NewResourceController(catalog.SessionFeedback).Register(mentorship.Group("/feedback"))
	}

	learning := rg.Group("/learning")
	{
		controllers.NewResourceController(catalog.Modules).Register(learning.Group("/modules"))
		controllers.NewResourceController(catalog.Resources).Register(learning.Group("/resources"))
		controllers.NewResourceController(catalog.Workbooks).Register(learning.Group("/workbooks"))
		controllers.NewResourceController(catalog.WorkbookPurchases).Register(learning.Group("/workbook-purchases"))
	}

	payments := rg.Group("/payments")
	{
		controllers.NewResourceController(catalog.PaymentTransactions).Register(payments.Group("/payment-transactions"))
		controllers.NewResourceController(catalog.CRMContactLogs).Register(payments.Group("/crm-contact-logs"))
	}

	community := rg.Group("/community")
	{
		controllers.NewResourceController(catalog.Posts).Register(community.Group("/posts"))
		controllers.NewResourceController(catalog.Comments).Register(community.Group("/comments"))
		controllers.NewResourceController(catalog.GroupChats).Register(community.Group("/group-chats"))
		controllers.NewResourceController(catalog.Messages).Register(community.Group("/messages"))
	}

	achievements := rg.Group("/achievements")
	{
		controllers.NewResourceController(catalog.Skills).Register(achievements.Group("/skills"))
		controllers.NewResourceController(catalog.Badges).Register(achievements.Group("/badges"))
		controllers.NewResourceController(catalog.Certificates).Register(achievements.Group("/certificates"))
	}

	analytics := rg.Group("/analytics")
	{
		controllers.NewResourceController(catalog.Progress).Register(analytics.Group("/progress"))
		controllers.NewResourceController(catalog.EngagementLogs).Register(analytics.Group("/engagement-logs"))
		controllers.NewResourceController(catalog.ImpactReports).Register(analytics.Group("/impact-reports"))
	}
}
