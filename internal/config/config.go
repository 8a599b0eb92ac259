package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/codepilot/coursehub/internal/hash"
	"github.com/codepilot/coursehub/internal/models"
)

type Config struct {
	HTTP_ADDR      string
	LOG_LEVEL      string
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	KAFKA_ADDRESS  string
	SESSION_SECRET string
	ADMIN_USERNAME string
	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
	ADMIN_KEY      string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		HTTP_ADDR:      os.Getenv("HTTP_ADDR"),
		LOG_LEVEL:      os.Getenv("LOG_LEVEL"),
		DB_HOST:        os.Getenv("DB_HOST"),
		DB_PORT:        os.Getenv("DB_PORT"),
		DB_USER:        os.Getenv("DB_USER"),
		DB_PASSWORD:    os.Getenv("DB_PASSWORD"),
		DB_NAME:        os.Getenv("DB_NAME"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		SESSION_SECRET: os.Getenv("SESSION_SECRET"),
		ADMIN_USERNAME: os.Getenv("ADMIN_USERNAME"),
		ADMIN_EMAIL:    os.Getenv("ADMIN_EMAIL"),
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),
		ADMIN_KEY:      os.Getenv("ADMIN_KEY"),
	}

	if config.HTTP_ADDR == "" {
		config.HTTP_ADDR = ":8080"
	}
	if config.SESSION_SECRET == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	return config, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Instructor{},
		&models.Course{},
		&models.CartItem{},
		&models.Checkout{},
		&models.Favorite{},
		&models.ContactMessage{},
		&models.Subscriber{},
	)
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// SeedAdmin creates the bootstrap superuser if it does not exist yet. Each
// admin carries its own verification key hash, there is no shared secret.
func SeedAdmin(db *gorm.DB, cfg *Config) error {
	if cfg.ADMIN_USERNAME == "" || cfg.ADMIN_PASSWORD == "" || cfg.ADMIN_KEY == "" {
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", cfg.ADMIN_USERNAME).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := hash.HashPassword(cfg.ADMIN_PASSWORD)
	if err != nil {
		return err
	}
	keyHash, err := hash.HashPassword(cfg.ADMIN_KEY)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     cfg.ADMIN_USERNAME,
		Email:        cfg.ADMIN_EMAIL,
		PasswordHash: passwordHash,
		IsSuperuser:  true,
		AdminKeyHash: keyHash,
	}
	return db.Create(&admin).Error
}
