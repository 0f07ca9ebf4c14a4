package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carrental-backend/config"
	"carrental-backend/controllers"
	"carrental-backend/routes"
	"carrental-backend/services"
	"carrental-backend/utils"
)

func sweepInterval() time.Duration {
	raw := os.Getenv("SWEEP_INTERVAL_MINUTES")
	if raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
		log.Printf("warning: invalid SWEEP_INTERVAL_MINUTES %q, using 60", raw)
	}
	return time.Hour
}

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("ERROR: JWT_SECRET environment variable is not set.")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("config.DB is nil after ConnectDatabase()")
	}
	log.Println("Database connection established and migrations applied.")

	// Initialize services
	inventoryService := services.NewInventoryService(db)
	bookingService := services.NewBookingService(db, inventoryService, utils.NewPayPalClientFromEnv())
	sweepService := services.NewSweepService(db, bookingService)

	// Initialize controllers
	authController := controllers.NewAuthController(db, jwtSecret)
	vehicleController := controllers.NewVehicleController(db)
	extraController := controllers.NewExtraController(db, inventoryService)
	bookingController := controllers.NewBookingController(bookingService)
	userController := controllers.NewUserController(db)
	cronController := controllers.NewCronController(sweepService)

	// Build router
	router := routes.SetupRouter(
		authController,
		vehicleController,
		extraController,
		bookingController,
		userController,
		cronController,
		jwtSecret,
	)

	// Background reconciliation sweep
	stopSweep := make(chan struct{})
	go sweepService.Run(sweepInterval(), stopSweep)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, shutting down server...")

	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
