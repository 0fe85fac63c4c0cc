// Package testing provides test utilities and database setup for testing the link shortening service
package testing

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/amirphl/Kusanagi/models"
	_ "github.com/lib/pq" // PostgreSQL driver for the admin connection
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDBConfig holds configuration for test database connections
type TestDBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	SSLMode  string
}

// GetTestDBConfig loads test database configuration from environment variables
func GetTestDBConfig() *TestDBConfig {
	config := &TestDBConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		SSLMode:  getEnv("TEST_DB_SSL_MODE", "disable"),
	}
	return config
}

// TestDB represents a test database instance
type TestDB struct {
	DB     *gorm.DB
	Name   string
	config *TestDBConfig
}

func (c *TestDBConfig) adminDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.SSLMode)
}

// SetupTestDB creates a new test database with a unique name and migrates the schema
func SetupTestDB() (*TestDB, error) {
	config := GetTestDBConfig()

	// Generate unique database name using timestamp and random number
	dbName := fmt.Sprintf("kusanagi_test_%d_%d", time.Now().Unix(), rand.Intn(10000))

	// Connect to PostgreSQL server (without specific database)
	adminDB, err := sql.Open("postgres", config.adminDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer adminDB.Close()

	if _, err := adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		return nil, fmt.Errorf("failed to create test database %s: %w", dbName, err)
	}

	// Connect to the new test database
	testDSN := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, dbName, config.SSLMode)

	// TranslateError is required so duplicate short codes surface as gorm.ErrDuplicatedKey,
	// mirroring the production connection
	testDB, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database %s: %w", dbName, err)
	}

	if err := testDB.AutoMigrate(&models.Customer{}, &models.Link{}, &models.Visit{}); err != nil {
		if sqlDB, derr := testDB.DB(); derr == nil {
			sqlDB.Close()
		}
		adminDB.Exec("DROP DATABASE IF EXISTS " + dbName)
		return nil, fmt.Errorf("failed to migrate test database %s: %w", dbName, err)
	}

	return &TestDB{
		DB:     testDB,
		Name:   dbName,
		config: config,
	}, nil
}

// TeardownTestDB drops the test database and closes connections
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB == nil {
		return nil
	}

	// Close test database connection
	sqlDB, err := tdb.DB.DB()
	if err == nil {
		sqlDB.Close()
	}

	// Connect to PostgreSQL server to drop the test database
	adminDB, err := sql.Open("postgres", tdb.config.adminDSN())
	if err != nil {
		log.Printf("Warning: failed to connect to PostgreSQL for cleanup: %v", err)
		return err
	}
	defer adminDB.Close()

	// Force disconnect all connections to the test database
	if _, err := adminDB.Exec(fmt.Sprintf(
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid()",
		tdb.Name)); err != nil {
		log.Printf("Warning: failed to terminate connections to test database %s: %v", tdb.Name, err)
	}

	// Drop the test database
	if _, err := adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", tdb.Name)); err != nil {
		log.Printf("Warning: failed to drop test database %s: %v", tdb.Name, err)
		return err
	}

	return nil
}

// ClearAllTables removes all data from tables while preserving structure
func (tdb *TestDB) ClearAllTables() error {
	// Order matters due to foreign key constraints
	tables := []string{
		"visits",
		"links",
		"customers",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// TestWithDB is a helper function that sets up a test database, runs the test function, and cleans up
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return fmt.Errorf("failed to setup test database: %w", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			log.Printf("Warning: failed to cleanup test database: %v", cleanupErr)
		}
	}()

	return testFunc(testDB)
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}
