package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps paid_at in UTC
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Only confirmation records go through this pool.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// confirmationsDDL creates the table written after a successful payment.
// booking_id is unique so a retried write cannot duplicate a record.
const confirmationsDDL = `CREATE TABLE IF NOT EXISTS booking_confirmations (
	id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	booking_id        BIGINT NOT NULL,
	session_id        CHAR(36) NOT NULL,
	amount            DECIMAL(12,2) NOT NULL,
	amount_minor      BIGINT NOT NULL,
	currency          CHAR(3) NOT NULL,
	payment_intent_id VARCHAR(255) NOT NULL,
	guest_email       VARCHAR(255) NOT NULL DEFAULT '',
	paid_at           DATETIME NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uq_booking_confirmations_booking (booking_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the tables this service owns when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, confirmationsDDL); err != nil {
		return fmt.Errorf("create booking_confirmations: %w", err)
	}
	return nil
}
