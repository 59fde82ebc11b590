package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase opens the storefront database described by cfg.
// postgres:// URLs use the PostgreSQL driver, anything else is treated as a MySQL DSN.
func ConnectDatabase(cfg *Config) error {
	dialector := Dialector(cfg)

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	log.Printf("Database connection established successfully (%s)", dialector.Name())
	return nil
}

// Dialector picks the gorm driver for the configured database
func Dialector(cfg *Config) gorm.Dialector {
	url := cfg.GetDatabaseURL()
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return postgres.Open(url)
	}
	if url == "" {
		url = MySQLDSN(cfg)
	}
	return mysql.Open(url)
}

// MySQLDSN builds a go-sql-driver DSN from the individual DB_* settings
func MySQLDSN(cfg *Config) string {
	host := cfg.DBHost
	if host == "" {
		host = "localhost"
	}
	port := cfg.DBPort
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.DBUser, cfg.DBPass, host, port, cfg.DBName)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
