package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/controllers"
	"github.com/shahzaib-autos/shahzaib-autos-api/middleware"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"go.uber.org/zap"
)

// SetupRouter builds the HTTP API. customerAuth guards the customer routes; in
// production it is middleware.EnsureValidToken(cfg).
func SetupRouter(cfg *config.Config, logger *zap.Logger, sessions *middleware.AdminSessions, customerAuth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)

		// Storefront
		v1.GET("/products", controllers.ListProducts)
		v1.GET("/products/:slug", controllers.GetProduct)
		v1.GET("/badges", controllers.ListBadges)
		v1.GET("/services", controllers.ListServices)
		v1.GET("/services/:slug/availability", controllers.GetServiceAvailability)
		v1.POST("/leads", controllers.CreateLead)
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)

		// Customers
		customer := v1.Group("", customerAuth)
		{
			customer.POST("/customers", controllers.CreateCustomer)
			customer.GET("/customers/me", controllers.GetMyProfile)
			customer.PUT("/customers/me", controllers.UpdateMyProfile)

			customer.POST("/orders", controllers.CreateOrder)
			customer.GET("/orders", controllers.ListMyOrders)
			customer.GET("/orders/:id", controllers.GetMyOrder)
			customer.POST("/orders/:id/cancel", controllers.CancelMyOrder)

			customer.POST("/bookings", controllers.CreateBooking)
			customer.GET("/bookings", controllers.ListMyBookings)
			customer.POST("/bookings/:id/cancel", controllers.CancelMyBooking)
		}

		v1.POST("/admin/login", controllers.AdminLogin(sessions))
		v1.POST("/admin/logout", controllers.AdminLogout(sessions))

		admin := v1.Group("/admin", sessions.RequireAdmin())
		registerAdminRoutes(admin, sessions)
	}

	return router
}

func registerAdminRoutes(admin *gin.RouterGroup, sessions *middleware.AdminSessions) {
	admin.GET("/me", controllers.AdminMe)
	admin.GET("/dashboard", middleware.RequirePermission(models.PermDashboardRead), controllers.GetDashboard)

	products := admin.Group("/products", middleware.RequirePermission(models.PermProductsManage))
	{
		products.GET("", controllers.AdminListProducts)
		products.POST("", controllers.CreateProduct)
		products.GET("/:id", controllers.AdminGetProduct)
		products.PUT("/:id", controllers.UpdateProduct)
		products.DELETE("/:id", controllers.DeleteProduct)
		products.POST("/:id/image", controllers.UploadProductImage)
		products.PATCH("/:id/stock", controllers.AdjustProductStock)
	}

	catalog := admin.Group("", middleware.RequirePermission(models.PermCatalogManage))
	{
		catalog.GET("/badges", controllers.ListBadges)
		catalog.POST("/badges", controllers.CreateBadge)
		catalog.PUT("/badges/:id", controllers.UpdateBadge)
		catalog.DELETE("/badges/:id", controllers.DeleteBadge)

		catalog.GET("/services", controllers.AdminListServices)
		catalog.POST("/services", controllers.CreateService)
		catalog.PUT("/services/:id", controllers.UpdateService)
		catalog.DELETE("/services/:id", controllers.DeleteService)
	}

	orders := admin.Group("/orders", middleware.RequirePermission(models.PermOrdersManage))
	{
		orders.GET("", controllers.AdminListOrders)
		orders.POST("/sweep-stale", controllers.SweepStaleOrders)
		orders.GET("/:id", controllers.AdminGetOrder)
		orders.PATCH("/:id/status", controllers.UpdateOrderStatus)
		orders.PATCH("/:id/payment", controllers.UpdateOrderPayment)
		orders.DELETE("/:id", controllers.DeleteOrder)
		orders.GET("/:id/notes", controllers.ListOrderNotes)
		orders.POST("/:id/notes", controllers.CreateOrderNote)
	}

	bookings := admin.Group("/bookings", middleware.RequirePermission(models.PermBookingsManage))
	{
		bookings.GET("", controllers.AdminListBookings)
		bookings.PATCH("/:id/status", controllers.UpdateBookingStatus)
		bookings.DELETE("/:id", controllers.DeleteBooking)
	}

	leads := admin.Group("/leads", middleware.RequirePermission(models.PermLeadsManage))
	{
		leads.GET("", controllers.AdminListLeads)
		leads.PATCH("/:id/status", controllers.UpdateLeadStatus)
		leads.DELETE("/:id", controllers.DeleteLead)
	}

	staff := admin.Group("", middleware.RequirePermission(models.PermAdminsManage))
	{
		staff.GET("/admins", controllers.ListAdmins)
		staff.POST("/admins", controllers.CreateAdmin)
		staff.PUT("/admins/:id", controllers.UpdateAdmin(sessions))
		staff.DELETE("/admins/:id", controllers.DeleteAdmin)
		staff.GET("/audit", controllers.ListAuditLog)
	}

	admin.GET("/exports/:resource", middleware.RequirePermission(models.PermExportsRead), controllers.ExportResource)
}
