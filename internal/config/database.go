package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hamilton_tms/internal/models"
	"hamilton_tms/internal/store"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB initializes the database connection using environment variables.
// Staff accounts always live here even when entity data uses the file
// backend.
func InitDB() {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	// Load environment variables (with defaults)
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "password")
	dbname := getEnv("DB_NAME", "hamilton")
	sslmode := getEnv("DB_SSLMODE", "disable")
	timezone := getEnv("DB_TIMEZONE", "UTC")

	// Build Data Source Name
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone,
	)

	// Open GORM connection
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.StaffClassAssignment{},
		&models.School{},
		&models.Provider{},
		&models.Area{},
		&models.Route{},
		&models.Student{},
	)
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	// Assign to global
	DB = db
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}

// NewStore builds the entity store selected by DATA_BACKEND. "database"
// (the default) persists entities in Postgres next to the staff accounts;
// "file" keeps them in a JSON snapshot at DATA_PERSISTENCE_FILE so small
// deployments can run without managing route data in SQL.
func NewStore() (store.Store, error) {
	backend := getEnv("DATA_BACKEND", "database")
	switch backend {
	case "database":
		return store.NewDatabaseStore(DB), nil
	case "file":
		path := getEnv("DATA_PERSISTENCE_FILE", "school_transport_data.json")
		return store.NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q (want database or file)", backend)
	}
}
