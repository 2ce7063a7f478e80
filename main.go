package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	claimcontroller "github.com/shivarajya-arts/storefront-api/controllers/claim"
	"github.com/shivarajya-arts/storefront-api/mailer"
	"github.com/shivarajya-arts/storefront-api/middleware"
	"github.com/shivarajya-arts/storefront-api/models"
	"github.com/shivarajya-arts/storefront-api/routes"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log.Println("Starting storefront API...")

	// Load environment variables
	_ = godotenv.Load()

	db := initDatabase()

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Claim{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	if err := seedAdminUser(db); err != nil {
		log.Fatalf("Admin seed failed: %v", err)
	}

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID)

	// Serve claim images and other uploads
	r.Static("/uploads", claimcontroller.UploadRoot())

	routes.SetupRoutes(r, db, mailer.NewSMTPSenderFromEnv())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection. DB_DRIVER selects mysql or
// postgres (default); DATABASE_URL overrides the per-field settings.
func initDatabase() *gorm.DB {
	driver := os.Getenv("DB_DRIVER")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := os.Getenv("DB_HOST")
		port := os.Getenv("DB_PORT")
		user := os.Getenv("DB_USER")
		password := os.Getenv("DB_PASSWORD")
		dbname := os.Getenv("DB_NAME")

		if driver == "mysql" {
			dsn = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				user, password, host, port, dbname,
			)
		} else {
			dsn = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
				host, user, password, dbname, port,
			)
		}
	}

	var dialector gorm.Dialector
	if driver == "mysql" {
		dialector = mysql.Open(dsn)
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	return db
}

// seedAdminUser makes sure the configured admin account exists and is
// verified, so the admin surface is reachable on a fresh database.
func seedAdminUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		FirstName:    "Admin",
		LastName:     "User",
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
		IsVerified:   true,
	}
	return db.Create(&admin).Error
}
