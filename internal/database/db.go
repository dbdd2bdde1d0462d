package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// OpenMySQL connects to MySQL and verifies the connection.
func OpenMySQL(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// mysqlSchema mirrors the document layout: cast, tier and reviews are JSON
// columns on the movie row so a movie is still read and written as a unit.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) PRIMARY KEY,
		username VARCHAR(191) NOT NULL,
		email VARCHAR(191) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		tier VARCHAR(16) NOT NULL DEFAULT 'silver',
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		verification_token VARCHAR(255) NULL,
		verification_token_expires_at DATETIME NULL,
		reset_password_token VARCHAR(255) NULL,
		reset_password_expires_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(191) NOT NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		year INT NOT NULL,
		genre VARCHAR(64) NOT NULL DEFAULT '',
		detail TEXT NOT NULL,
		cast JSON NOT NULL,
		rating DOUBLE NOT NULL DEFAULT 0,
		tier JSON NOT NULL,
		image VARCHAR(1024) NOT NULL,
		video VARCHAR(1024) NOT NULL,
		num_reviews INT NOT NULL DEFAULT 0,
		reviews JSON NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		INDEX idx_movies_created (created_at),
		INDEX idx_movies_rating (rating)
	)`,
}

// MigrateMySQL creates the tables if they do not exist yet.
func MigrateMySQL(ctx context.Context, db *sql.DB) error {
	for _, stmt := range mysqlSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
