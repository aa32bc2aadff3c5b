package db

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var instance *gorm.DB

// InitMySQL opens the MySQL connection pool
func InitMySQL(dsn string) error {
	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	instance = conn
	log.Println("✓ MySQL connected successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return instance
}

// Close closes the underlying connection pool
func Close() error {
	if instance == nil {
		return nil
	}
	sqlDB, err := instance.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
