package db

import (
	"context"
	"fmt"

	"github.com/leemorgale/sms-chat/internal/models"
)

// OTPRepository stores outstanding verification codes
type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTPVerification) error
	ListUnverified(ctx context.Context, phoneNumber string) ([]*models.OTPVerification, error)
	DeleteUnverified(ctx context.Context, phoneNumber string) error
	MarkVerified(ctx context.Context, id string) (bool, error)
}

type otpRepository struct {
	db *Database
}

// NewOTPRepository creates a new OTPRepository
func NewOTPRepository(db *Database) OTPRepository {
	return &otpRepository{db: db}
}

// Create stores a new code record
func (r *otpRepository) Create(ctx context.Context, otp *models.OTPVerification) error {
	if otp == nil {
		return fmt.Errorf("otp cannot be nil")
	}

	query := r.db.rebind(`
		INSERT INTO otp_verifications (id, phone_number, secret, expires_at, verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.db.ExecContext(ctx, query,
		otp.ID,
		otp.PhoneNumber,
		otp.Secret,
		otp.ExpiresAt,
		otp.Verified,
		otp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create otp: %w", err)
	}

	return nil
}

// ListUnverified returns unused codes for a number, newest first.
// Expiry is left to the caller.
func (r *otpRepository) ListUnverified(ctx context.Context, phoneNumber string) ([]*models.OTPVerification, error) {
	query := r.db.rebind(`
		SELECT id, phone_number, secret, expires_at, verified, created_at
		FROM otp_verifications
		WHERE phone_number = ? AND verified = FALSE
		ORDER BY created_at DESC, id DESC
	`)

	rows, err := r.db.db.QueryContext(ctx, query, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list otps: %w", err)
	}
	defer rows.Close()

	otps := make([]*models.OTPVerification, 0)
	for rows.Next() {
		otp := &models.OTPVerification{}
		err := rows.Scan(
			&otp.ID,
			&otp.PhoneNumber,
			&otp.Secret,
			&otp.ExpiresAt,
			&otp.Verified,
			&otp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan otp: %w", err)
		}
		otps = append(otps, otp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating otps: %w", err)
	}

	return otps, nil
}

// DeleteUnverified drops outstanding codes so only the latest one is usable
func (r *otpRepository) DeleteUnverified(ctx context.Context, phoneNumber string) error {
	query := r.db.rebind(`DELETE FROM otp_verifications WHERE phone_number = ? AND verified = FALSE`)

	if _, err := r.db.db.ExecContext(ctx, query, phoneNumber); err != nil {
		return fmt.Errorf("failed to delete otps: %w", err)
	}
	return nil
}

// MarkVerified consumes a code; false means it was already used
func (r *otpRepository) MarkVerified(ctx context.Context, id string) (bool, error) {
	query := r.db.rebind(`UPDATE otp_verifications SET verified = TRUE WHERE id = ? AND verified = FALSE`)

	result, err := r.db.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark otp verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}
