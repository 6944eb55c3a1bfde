package routes

import (
	"net/http"
	"time"

	"repairhub/config"
	"repairhub/handlers"
	"repairhub/middleware"
	"repairhub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterHealthRoute registers the health and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterCatalogRoutes registers the public lookups the wizard reads from.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/cities", hb.Catalog.GetCitiesHandler)
		api.GET("/lookup-postcode", hb.Catalog.LookupPostcodeHandler)
		api.GET("/agents/nearby", hb.Agents.NearbyAgentsHandler)

		catalog := api.Group("/catalog")
		catalog.GET("/categories", hb.Catalog.GetCategoriesHandler)
		catalog.GET("/brands", hb.Catalog.GetBrandsHandler)
		catalog.GET("/devices", hb.Catalog.GetDevicesHandler)
		catalog.GET("/faults", hb.Catalog.GetFaultsHandler)
		catalog.GET("/service-types", hb.Catalog.GetServiceTypesHandler)
		catalog.GET("/duration-types", hb.Catalog.GetDurationTypesHandler)
	}
}

// RegisterBookingRoutes sets up the booking wizard, drafts and direct submission.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(middleware.JWTAuthUserMiddleware(), middleware.DeviceMiddleware())
	{
		api.POST("/bookings/create", hb.Booking.CreateBookingHandler)

		session := api.Group("/booking/session")
		session.POST("", hb.Booking.StartSessionHandler)
		session.GET("/:id", hb.Booking.GetSessionHandler)
		session.PATCH("/:id", hb.Booking.UpdateSessionHandler)
		session.DELETE("/:id", hb.Booking.CancelSessionHandler)
		session.POST("/:id/next", hb.Booking.NextStepHandler)
		session.POST("/:id/previous", hb.Booking.PreviousStepHandler)
		session.POST("/:id/resume", hb.Booking.ResumeHandler)
		session.POST("/:id/agents", hb.Booking.RefreshAgentsHandler)
		session.POST("/:id/submit", hb.Booking.SubmitHandler)

		api.GET("/booking/draft", hb.Booking.GetDraftHandler)
		api.DELETE("/booking/draft", hb.Booking.DiscardDraftHandler)
	}
}

// RegisterNotificationRoutes registers the signed-in user's inbox.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	api.Use(middleware.JWTAuthUserMiddleware())
	{
		api.GET("", hb.Notifications.GetNotificationsHandler)
		api.PATCH("", hb.Notifications.MarkReadHandler)
	}
}

// RegisterAdminRoutes registers back-office endpoints behind the admin token.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	h := hb.Admin
	api := r.Group("/api/admin")
	api.Use(middleware.AdminTokenMiddleware())
	{
		api.POST("/cities", h.CreateCity)
		api.PUT("/cities/:id/pincodes", h.UpdatePincodes)
		api.PATCH("/cities/:id/active", h.SetCityActive)
		api.DELETE("/cities/:id", h.DeleteCity)

		api.POST("/categories", h.CreateCategory)
		api.DELETE("/categories/:id", h.DeleteCategory())
		api.POST("/brands", h.CreateBrand)
		api.DELETE("/brands/:id", h.DeleteBrand())
		api.POST("/devices", h.CreateDevice)
		api.DELETE("/devices/:id", h.DeleteDevice())
		api.POST("/faults", h.CreateFault)
		api.PATCH("/faults/:id/deactivate", h.DeactivateFault())
		api.PATCH("/duration-types/:id/charge", h.UpdateDurationCharge)

		api.GET("/agent-applications", h.PendingApplications)
		api.POST("/agent-applications/:id/approve", h.ApproveApplication)
		api.POST("/agent-applications/:id/reject", h.RejectApplication)
		api.PATCH("/agents/:id/online", h.SetAgentOnline)
	}
}

// RegisterRoutes sets up CORS and every route group.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Device-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := config.AppConfig.Origins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	RegisterHealthRoute(r)
	RegisterCatalogRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
