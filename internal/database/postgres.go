// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"swapmeet/internal/models"
	"swapmeet/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	DB *sqlx.DB
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL!")

	return &PostgresDB{
		DB: db,
	}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	log.Println("Closing PostgreSQL connection...")
	return p.DB.Close()
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// InitializeTables creates all necessary tables if they don't exist
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	// Users table
	_, err := p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			is_online BOOLEAN DEFAULT FALSE NOT NULL,
			last_seen_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %v", err)
	}

	// Messages table. Append-only: no update or delete path exists.
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			sender_id UUID NOT NULL,
			receiver_id UUID NOT NULL,
			text TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages table: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_messages_endpoints
		ON messages (sender_id, receiver_id, created_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages index: %v", err)
	}

	return nil
}

// SaveUser creates or updates a user
func (p *PostgresDB) SaveUser(ctx context.Context, user *models.User) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, is_online, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    password_hash = EXCLUDED.password_hash
	`, user.ID, user.Name, user.Email, user.HashedPassword,
		user.IsOnline, user.LastSeenAt, user.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", err)
	}
	return err
}

// GetUser retrieves a user by ID
func (p *PostgresDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := p.DB.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func (p *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := p.DB.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers retrieves users whose name matches the query,
// case-insensitive, newest accounts first.
func (p *PostgresDB) SearchUsers(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := p.DB.SelectContext(ctx, &users, `
		SELECT * FROM users
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %v", err)
	}
	return users, nil
}

// CountUsers returns the total number of registered users
func (p *PostgresDB) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := p.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

// SetUserPresence writes the explicit online flag and refreshes the last
// seen timestamp in one single-row update.
func (p *PostgresDB) SetUserPresence(ctx context.Context, id uuid.UUID, online bool) error {
	result, err := p.DB.ExecContext(ctx, `
		UPDATE users SET is_online = $2, last_seen_at = NOW() WHERE id = $1
	`, id, online)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	return nil
}

// TouchUser refreshes last seen for a user whose stored flag is true.
// Touching an offline or unknown user is a no-op, not an error.
func (p *PostgresDB) TouchUser(ctx context.Context, id uuid.UUID) error {
	_, err := p.DB.ExecContext(ctx, `
		UPDATE users SET last_seen_at = NOW() WHERE id = $1 AND is_online = TRUE
	`, id)
	return err
}

// SaveMessage appends a new direct message
func (p *PostgresDB) SaveMessage(ctx context.Context, msg *models.Message) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.SenderID, msg.ReceiverID, msg.Text, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save message: %v", err)
	}
	return nil
}

// GetMessagesBetweenUsers retrieves all messages exchanged between two
// users in either direction, oldest first. Equal timestamps are broken
// by message id so the sequence is deterministic.
func (p *PostgresDB) GetMessagesBetweenUsers(ctx context.Context, userA, userB uuid.UUID) ([]*models.Message, error) {
	var messages []*models.Message
	err := p.DB.SelectContext(ctx, &messages, `
		SELECT * FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC, id ASC
	`, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %v", err)
	}
	return messages, nil
}

// GetMessagesByUser retrieves all messages where the user is sender or
// receiver, newest first.
func (p *PostgresDB) GetMessagesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Message, error) {
	var messages []*models.Message
	err := p.DB.SelectContext(ctx, &messages, `
		SELECT * FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %v", err)
	}
	return messages, nil
}

// CountMessages returns the total number of stored messages
func (p *PostgresDB) CountMessages(ctx context.Context) (int, error) {
	var count int
	err := p.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages`)
	return count, err
}
