package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashPrefix = "v2:"

// ErrInvalidCredentials is returned when a login does not match a user
var ErrInvalidCredentials = errors.New("invalid credentials")

// hashPassword pre-hashes with SHA-256 so passwords longer than bcrypt's 72 bytes still count
func hashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return hex.EncodeToString(hash[:])
}

// CreateUser creates a new administrator with a hashed password
func (dm *DatabaseManager) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidInput("username and password must not be empty")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(hashPassword(password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: storeTime(dm.now()),
	}

	err = dm.withTransaction(ctx, "create_user", func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
			user.ID.String(), user.Username, passwordHashPrefix+string(hashedPassword), user.CreatedAt,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// ValidateUser checks username and password
func (dm *DatabaseManager) ValidateUser(ctx context.Context, username, password string) (*models.User, error) {
	query := `
        SELECT id, username, password_hash, created_at
        FROM users
        WHERE username = $1
    `

	var user models.User
	var passwordHash string

	err := dm.QueryRowWithHealthCheck(ctx, query, strings.TrimSpace(username)).
		Scan(&user.ID, &user.Username, &passwordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !strings.HasPrefix(passwordHash, passwordHashPrefix) {
		return nil, ErrInvalidCredentials
	}

	actualHash := strings.TrimPrefix(passwordHash, passwordHashPrefix)
	if err := bcrypt.CompareHashAndPassword([]byte(actualHash), []byte(hashPassword(password))); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetUserByID returns the user a token was issued to
func (dm *DatabaseManager) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := dm.QueryRowWithHealthCheck(ctx, `SELECT id, username, created_at FROM users WHERE id = $1`, id.String()).
		Scan(&user.ID, &user.Username, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
