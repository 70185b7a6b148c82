package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leemorgale/sms-chat/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *Database
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *Database) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Name, &user.PhoneNumber, &user.CreatedAt); err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user cannot be nil")
	}

	query := r.db.rebind(`
		INSERT INTO users (id, name, phone_number, created_at)
		VALUES (?, ?, ?, ?)
	`)

	_, err := r.db.db.ExecContext(ctx, query, user.ID, user.Name, user.PhoneNumber, user.CreatedAt)
	if err != nil {
		return wrapWriteError("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	query := r.db.rebind(`SELECT id, name, phone_number, created_at FROM users WHERE id = ?`)

	user, err := scanUser(r.db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByPhoneNumber retrieves a user by exact E.164 number
func (r *userRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*models.User, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("phone number cannot be empty")
	}

	query := r.db.rebind(`SELECT id, name, phone_number, created_at FROM users WHERE phone_number = ?`)

	user, err := scanUser(r.db.db.QueryRowContext(ctx, query, phoneNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by phone number: %w", err)
	}

	return user, nil
}

// List retrieves all users in creation order
func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.db.QueryContext(ctx, `SELECT id, name, phone_number, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
