package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzajac/examflow/internal/app/controllers"
	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	termController *controllers.TermController,
	sessionController *controllers.SessionController,
	catalogController *controllers.CatalogController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Session routes; window definition belongs to the dean's office
	sessions := authenticated.Group("/sessions")
	{
		sessions.GET("", sessionController.ListSessions)
		sessions.GET("/:id", sessionController.GetSession)

		sessionsDeanProtected := sessions.Group("")
		sessionsDeanProtected.Use(authMiddleware.RoleRequired(models.RoleDeanOffice))
		{
			sessionsDeanProtected.POST("", sessionController.CreateSession)
			sessionsDeanProtected.PUT("/:id", sessionController.UpdateSession)
		}
	}

	// Term routes; proposing and responding is open to all three roles, the
	// service enforces the per-course/per-group relationship proof
	terms := authenticated.Group("/terms")
	{
		terms.GET("", termController.ListTerms)
		terms.GET("/:id", termController.GetTerm)
		terms.GET("/:id/history", termController.GetHistory)
		terms.POST("", termController.ProposeTerm)
		terms.POST("/:id/decision", termController.RespondToProposal)
		terms.POST("/:id/reject", termController.RejectTerm)

		termsDeanProtected := terms.Group("")
		termsDeanProtected.Use(authMiddleware.RoleRequired(models.RoleDeanOffice))
		{
			termsDeanProtected.POST("/:id/finalize", termController.FinalizeTerm)
		}
	}

	// Catalog routes
	rooms := authenticated.Group("/rooms")
	{
		rooms.GET("", catalogController.ListRooms)
		rooms.GET("/:id", catalogController.GetRoom)

		roomsDeanProtected := rooms.Group("")
		roomsDeanProtected.Use(authMiddleware.RoleRequired(models.RoleDeanOffice))
		{
			roomsDeanProtected.POST("", catalogController.CreateRoom)
		}
	}

	courses := authenticated.Group("/courses")
	{
		courses.GET("", catalogController.ListCourses)
		courses.GET("/:id", catalogController.GetCourse)
	}

	groups := authenticated.Group("/groups")
	{
		groups.GET("", catalogController.ListGroups)
		groups.GET("/:id", catalogController.GetGroup)
	}
}
