package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Pool bounds: a small fixed pool plus bounded overflow.
const (
	poolSize     = 3
	poolOverflow = 2
)

// NewMySQL returns a connected GORM DB with a bounded connection pool.
func NewMySQL(dsn string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(poolSize)
	sqlDB.SetMaxOpenConns(poolSize + poolOverflow)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return gormDB, nil
}
