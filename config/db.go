package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"carrental-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "carrental_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

func intPtr(v int) *int { return &v }

// SeedDatabase populates an empty database with a default admin, a
// small fleet and the standard extras so a fresh install is browsable.
func SeedDatabase() {
	var adminCount int64
	DB.Model(&models.User{}).Where("role = ?", "admin").Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(envOrDefault("ADMIN_PASSWORD", "admin123")), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default admin password: %v", err)
		} else {
			admin := models.User{
				FullName: "Admin User",
				Email:    envOrDefault("ADMIN_EMAIL", "admin@rental.local"),
				Password: string(hash),
				Role:     "admin",
				Verified: true,
			}
			if err := DB.Create(&admin).Error; err != nil {
				log.Printf("warning: failed to create default admin: %v", err)
			} else {
				log.Println("Default admin seeded")
			}
		}
	}

	var extraCount int64
	DB.Model(&models.Extra{}).Count(&extraCount)
	if extraCount == 0 {
		extras := []models.Extra{
			{Name: "Child Seat", PriceType: models.PriceTypeDaily, PriceAmount: 9.0, TotalQuantity: intPtr(6)},
			{Name: "GPS Navigation", PriceType: models.PriceTypeDaily, PriceAmount: 5.0, TotalQuantity: intPtr(10)},
			{Name: "Ski Rack", PriceType: models.PriceTypeDaily, PriceAmount: 12.0, TotalQuantity: intPtr(4)},
			{Name: "Additional Driver", PriceType: models.PriceTypeTrip, PriceAmount: 25.0},
			{Name: "Full Insurance", PriceType: models.PriceTypeTrip, PriceAmount: 79.0},
		}
		if err := DB.Create(&extras).Error; err != nil {
			log.Printf("warning: failed to seed extras: %v", err)
		} else {
			log.Println("Extras seeded")
		}
	}

	var vehicleCount int64
	DB.Model(&models.Vehicle{}).Count(&vehicleCount)
	if vehicleCount == 0 {
		vehicles := []models.Vehicle{
			{Make: "Toyota", Model: "Corolla", Year: 2023, VehicleType: "Sedan", Seats: 5, Doors: 4, MPG: 35, GasType: "Gasoline", PricePerDay: 49.0},
			{Make: "Honda", Model: "CR-V", Year: 2024, VehicleType: "SUV", Seats: 5, Doors: 4, MPG: 30, GasType: "Hybrid", PricePerDay: 69.0},
			{Make: "Ford", Model: "Transit", Year: 2022, VehicleType: "Van", Seats: 9, Doors: 4, MPG: 22, GasType: "Diesel", PricePerDay: 89.0},
		}
		if err := DB.Create(&vehicles).Error; err != nil {
			log.Printf("warning: failed to seed vehicles: %v", err)
		} else {
			log.Println("Vehicles seeded")
		}
	}
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	// AutoMigrate in parent->child order
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Extra{},
		&models.Vehicle{},
		&models.VehicleImage{},
		&models.Booking{},
		&models.BookingExtra{},
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}
