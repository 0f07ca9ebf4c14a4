package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"carrental-backend/controllers"
	"carrental-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires controller instances onto the route table.
func SetupRouter(
	ac *controllers.AuthController,
	vc *controllers.VehicleController,
	ec *controllers.ExtraController,
	bc *controllers.BookingController,
	uc *controllers.UserController,
	cc *controllers.CronController,
	jwtSecret string,
) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())
	r.Static("/uploads", "./uploads")

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRequired := middleware.RequireAuth(jwtSecret)
	adminOnly := middleware.RequireAdmin()

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", ac.Register)
			auth.POST("/login", ac.Login)
			auth.POST("/logout", ac.Logout)
			auth.GET("/verify", ac.Verify)
			auth.POST("/forgot", ac.Forgot)
			auth.POST("/reset", ac.Reset)
			auth.GET("/me", authRequired, uc.Me)
		}

		vehicles := api.Group("/vehicles")
		{
			vehicles.GET("", vc.GetVehicles)
			vehicles.GET("/:id", vc.GetVehicleByID)

			vehicles.POST("", authRequired, adminOnly, vc.CreateVehicle)
			vehicles.PUT("/:id", authRequired, adminOnly, vc.UpdateVehicle)
			vehicles.DELETE("/:id", authRequired, adminOnly, vc.DeleteVehicle)
			vehicles.POST("/:id/images", authRequired, adminOnly, vc.UploadVehicleImage)
			vehicles.DELETE("/:id/images/:imageId", authRequired, adminOnly, vc.DeleteVehicleImage)
		}

		extras := api.Group("/extras")
		{
			// availability must come before /:id
			extras.POST("/availability", ec.CheckAvailability)

			extras.GET("", ec.GetExtras)
			extras.GET("/:id", ec.GetExtraByID)

			extras.POST("", authRequired, adminOnly, ec.CreateExtra)
			extras.PUT("/:id", authRequired, adminOnly, ec.UpdateExtra)
			extras.DELETE("/:id", authRequired, adminOnly, ec.DeleteExtra)
		}

		bookings := api.Group("/bookings", authRequired)
		{
			bookings.GET("", bc.GetBookings)
			bookings.POST("", bc.CreateBooking)
			bookings.GET("/:id", bc.GetBookingByID)
			bookings.PUT("/:id", bc.UpdateBooking)

			// DELETE cancels; hard delete lives under /admin
			bookings.DELETE("/:id", bc.CancelBooking)
		}

		users := api.Group("/users", authRequired, adminOnly)
		{
			users.GET("", uc.AdminListUsers)
			users.GET("/:id", uc.AdminGetUser)
			users.DELETE("/:id", uc.AdminDeleteUser)
		}

		admin := api.Group("/admin", authRequired, adminOnly)
		{
			admin.GET("/bookings", bc.AdminListBookings)
			admin.DELETE("/bookings/:id", bc.AdminDeleteBooking)
		}

		api.POST("/cron/reconcile-bookings", cc.ReconcileBookings)
	}

	return r
}
