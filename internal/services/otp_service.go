package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leemorgale/sms-chat/internal/db"
	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"github.com/leemorgale/sms-chat/pkg/utils"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

const (
	// OTPValidity is how long a texted code can be used
	OTPValidity = 10 * time.Minute

	// MockOTPCode is accepted for any number when the transport is mocked
	MockOTPCode = "111111"

	otpTemplate = "Your SMS Chat verification code is: %s. Valid for 10 minutes."
)

// One window per code; expiry is enforced by the stored deadline
var otpOpts = totp.ValidateOpts{
	Period:    uint(OTPValidity / time.Second),
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// OTPService issues and checks login codes sent by SMS
type OTPService struct {
	otps          db.OTPRepository
	users         db.UserRepository
	fanout        *FanoutService
	mock          bool
	encryptionKey string
	now           func() time.Time
}

// NewOTPService creates a new OTPService. An empty encryptionKey stores
// code seeds unencrypted.
func NewOTPService(otps db.OTPRepository, users db.UserRepository, fanout *FanoutService, mock bool, encryptionKey string) *OTPService {
	return &OTPService{
		otps:          otps,
		users:         users,
		fanout:        fanout,
		mock:          mock,
		encryptionKey: encryptionKey,
		now:           time.Now,
	}
}

// SendOTP replaces any outstanding codes for the number and texts a new one
func (s *OTPService) SendOTP(ctx context.Context, phoneNumber string) error {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if err := validatePhone(phoneNumber); err != nil {
		return err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "SMS Chat",
		AccountName: phoneNumber,
		Period:      otpOpts.Period,
		Digits:      otpOpts.Digits,
		Algorithm:   otpOpts.Algorithm,
	})
	if err != nil {
		return fmt.Errorf("failed to generate otp secret: %w", err)
	}

	now := s.now().UTC()
	code := MockOTPCode
	if !s.mock {
		code, err = totp.GenerateCodeCustom(key.Secret(), now, otpOpts)
		if err != nil {
			return fmt.Errorf("failed to generate otp code: %w", err)
		}
	}

	secret := key.Secret()
	if s.encryptionKey != "" {
		secret, err = utils.EncryptSecret(secret, s.encryptionKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt otp secret: %w", err)
		}
	}

	if err := s.otps.DeleteUnverified(ctx, phoneNumber); err != nil {
		return err
	}

	record := models.NewOTPVerification(phoneNumber, secret, OTPValidity)
	record.CreatedAt = now
	record.ExpiresAt = now.Add(OTPValidity)
	if err := s.otps.Create(ctx, record); err != nil {
		return err
	}

	if err := s.fanout.SendDirect(ctx, phoneNumber, fmt.Sprintf(otpTemplate, code)); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	logger.Info("OTP sent", zap.String("phone_number", phoneNumber))
	return nil
}

// VerifyOTP consumes a matching, unexpired code for the number
func (s *OTPService) VerifyOTP(ctx context.Context, phoneNumber, code string) error {
	phoneNumber = strings.TrimSpace(phoneNumber)
	code = strings.TrimSpace(code)

	pending, err := s.otps.ListUnverified(ctx, phoneNumber)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	for _, record := range pending {
		if record.IsExpired(now) {
			continue
		}

		ok, err := s.matches(record, code, now)
		if err != nil {
			logger.Warn("Unreadable OTP record", zap.String("otp_id", record.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		consumed, err := s.otps.MarkVerified(ctx, record.ID)
		if err != nil {
			return err
		}
		if consumed {
			return nil
		}
	}

	return ErrInvalidOTP
}

func (s *OTPService) matches(record *models.OTPVerification, code string, now time.Time) (bool, error) {
	if s.mock {
		return code == MockOTPCode, nil
	}

	secret := record.Secret
	if s.encryptionKey != "" {
		var err error
		secret, err = utils.DecryptSecret(secret, s.encryptionKey)
		if err != nil {
			return false, err
		}
	}

	return totp.ValidateCustom(code, secret, now, otpOpts)
}

// Register creates a user after the code proves ownership of the number
func (s *OTPService) Register(ctx context.Context, phoneNumber, name, code string) (*models.User, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if err := validateName(name); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	if err := s.VerifyOTP(ctx, phoneNumber, code); err != nil {
		return nil, err
	}

	user := models.NewUser(name, phoneNumber)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User registered with OTP", zap.String("user_id", user.ID))
	return user, nil
}

// Login returns the existing user once the code checks out
func (s *OTPService) Login(ctx context.Context, phoneNumber, code string) (*models.User, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)

	user, err := s.users.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.VerifyOTP(ctx, phoneNumber, code); err != nil {
		return nil, err
	}

	logger.Info("User logged in with OTP", zap.String("user_id", user.ID))
	return user, nil
}
