package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leemorgale/sms-chat/internal/models"
)

// PhoneRepository defines data access for the phone number pool
type PhoneRepository interface {
	Create(ctx context.Context, phone *models.PhoneNumber) error
	GetByID(ctx context.Context, id string) (*models.PhoneNumber, error)
	GetByNumber(ctx context.Context, number string) (*models.PhoneNumber, error)
	GetByGroupID(ctx context.Context, groupID string) (*models.PhoneNumber, error)
	List(ctx context.Context) ([]*models.PhoneNumber, error)
	ListByStatus(ctx context.Context, status models.PhoneStatus) ([]*models.PhoneNumber, error)
	ClaimAvailable(ctx context.Context, groupID string, at time.Time) (*models.PhoneNumber, error)
	UpdateStatus(ctx context.Context, id string, status models.PhoneStatus) error
	Delete(ctx context.Context, id string) error
}

type phoneRepository struct {
	db *Database
}

// NewPhoneRepository creates a new PhoneRepository
func NewPhoneRepository(db *Database) PhoneRepository {
	return &phoneRepository{db: db}
}

const phoneColumns = `id, phone_number, provider_sid, status, group_id, created_at, assigned_at`

func scanPhone(row interface{ Scan(...any) error }) (*models.PhoneNumber, error) {
	phone := &models.PhoneNumber{}
	var status string
	err := row.Scan(
		&phone.ID,
		&phone.PhoneNumber,
		&phone.ProviderSID,
		&status,
		&phone.GroupID,
		&phone.CreatedAt,
		&phone.AssignedAt,
	)
	if err != nil {
		return nil, err
	}
	phone.Status = models.PhoneStatus(status)
	return phone, nil
}

// Create inserts a new pool entry
func (r *phoneRepository) Create(ctx context.Context, phone *models.PhoneNumber) error {
	if phone == nil {
		return fmt.Errorf("phone number cannot be nil")
	}

	query := r.db.rebind(`
		INSERT INTO phone_numbers (id, phone_number, provider_sid, status, group_id, created_at, assigned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.db.ExecContext(ctx, query,
		phone.ID,
		phone.PhoneNumber,
		phone.ProviderSID,
		string(phone.Status),
		phone.GroupID,
		phone.CreatedAt,
		phone.AssignedAt,
	)
	if err != nil {
		return wrapWriteError("failed to create phone number", err)
	}

	return nil
}

func (r *phoneRepository) getOne(ctx context.Context, op, where string, arg any) (*models.PhoneNumber, error) {
	query := r.db.rebind(`SELECT ` + phoneColumns + ` FROM phone_numbers WHERE ` + where)

	phone, err := scanPhone(r.db.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phone number by %s: %w", op, err)
	}
	return phone, nil
}

// GetByID retrieves a pool entry by ID
func (r *phoneRepository) GetByID(ctx context.Context, id string) (*models.PhoneNumber, error) {
	if id == "" {
		return nil, fmt.Errorf("phone number ID cannot be empty")
	}
	return r.getOne(ctx, "ID", "id = ?", id)
}

// GetByNumber retrieves a pool entry by its E.164 value
func (r *phoneRepository) GetByNumber(ctx context.Context, number string) (*models.PhoneNumber, error) {
	if number == "" {
		return nil, fmt.Errorf("phone number cannot be empty")
	}
	return r.getOne(ctx, "number", "phone_number = ?", number)
}

// GetByGroupID retrieves the number currently bound to a group
func (r *phoneRepository) GetByGroupID(ctx context.Context, groupID string) (*models.PhoneNumber, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	return r.getOne(ctx, "group", "group_id = ? AND status = 'ASSIGNED'", groupID)
}

// List returns every pool entry in pool order
func (r *phoneRepository) List(ctx context.Context) ([]*models.PhoneNumber, error) {
	query := `SELECT ` + phoneColumns + ` FROM phone_numbers ORDER BY created_at, id`
	return r.list(ctx, query)
}

// ListByStatus returns pool entries in one state
func (r *phoneRepository) ListByStatus(ctx context.Context, status models.PhoneStatus) ([]*models.PhoneNumber, error) {
	query := r.db.rebind(`SELECT ` + phoneColumns + ` FROM phone_numbers WHERE status = ? ORDER BY created_at, id`)
	return r.list(ctx, query, string(status))
}

func (r *phoneRepository) list(ctx context.Context, query string, args ...any) ([]*models.PhoneNumber, error) {
	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list phone numbers: %w", err)
	}
	defer rows.Close()

	phones := make([]*models.PhoneNumber, 0)
	for rows.Next() {
		phone, err := scanPhone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phone number: %w", err)
		}
		phones = append(phones, phone)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating phone numbers: %w", err)
	}

	return phones, nil
}

// ClaimAvailable binds the oldest AVAILABLE number to groupID in one statement.
// It returns (nil, nil) when the pool has nothing available and wraps
// ErrUniqueViolation when the group already holds a number.
func (r *phoneRepository) ClaimAvailable(ctx context.Context, groupID string, at time.Time) (*models.PhoneNumber, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}

	lock := ""
	if r.db.driver == DriverPostgres {
		lock = " FOR UPDATE SKIP LOCKED"
	}

	query := r.db.rebind(`
		UPDATE phone_numbers
		SET status = 'ASSIGNED', group_id = ?, assigned_at = ?
		WHERE id = (
			SELECT id FROM phone_numbers
			WHERE status = 'AVAILABLE'
			ORDER BY created_at, id
			LIMIT 1` + lock + `
		) AND status = 'AVAILABLE'
		RETURNING id
	`)

	var id string
	err := r.db.db.QueryRowContext(ctx, query, groupID, at.UTC()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWriteError("failed to claim phone number", err)
	}

	return r.GetByID(ctx, id)
}

// UpdateStatus moves a number to AVAILABLE or INACTIVE, clearing any binding
func (r *phoneRepository) UpdateStatus(ctx context.Context, id string, status models.PhoneStatus) error {
	if id == "" {
		return fmt.Errorf("phone number ID cannot be empty")
	}
	if status == models.PhoneStatusAssigned {
		return fmt.Errorf("numbers are only assigned through a claim")
	}

	query := r.db.rebind(`
		UPDATE phone_numbers
		SET status = ?, group_id = NULL, assigned_at = NULL
		WHERE id = ?
	`)

	result, err := r.db.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update phone number status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("phone number %s: %w", id, ErrNotFound)
	}

	return nil
}

// Delete removes a number that is not bound to a group
func (r *phoneRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("phone number ID cannot be empty")
	}

	query := r.db.rebind(`DELETE FROM phone_numbers WHERE id = ? AND status <> 'ASSIGNED'`)

	result, err := r.db.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete phone number: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("phone number %s: %w", id, ErrNotFound)
	}

	return nil
}
