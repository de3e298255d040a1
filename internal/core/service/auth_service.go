package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
	"github.com/companyos/portal-api/internal/pkg/metrics"
)

// bcryptCost matches the original portal's hashing cost (2^12 rounds).
const bcryptCost = 12

// tokenTTL is the fixed validity window of issued tokens.
const tokenTTL = 7 * 24 * time.Hour

const otpMailSubject = "Password Reset OTP - Company Dashboard"

// AuthService implements login and the OTP password-recovery flow.
type AuthService struct {
	users     ports.UserRepository
	otps      ports.OTPRepository
	throttle  ports.OTPThrottle
	mailer    ports.Mailer
	jwtSecret string
	logger    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, otps ports.OTPRepository, throttle ports.OTPThrottle, mailer ports.Mailer, jwtSecret string, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		otps:      otps,
		throttle:  throttle,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// HashPassword produces a salted bcrypt digest of plaintext.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches digest using bcrypt's
// constant-time comparison.
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			// Unknown email and wrong password are indistinguishable.
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	return token, user, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrUserNotFound
	}

	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		return err
	}

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		return fmt.Errorf("otp throttle: %w", err)
	}
	if !allowed {
		// Answer as if sent so the throttle is not observable from outside.
		s.logger.Warn().Str("email", email).Msg("otp request throttled")
		return nil
	}

	code, err := domain.GenerateOTP()
	if err != nil {
		return err
	}

	now := time.Now()
	rec := &domain.OTPRecord{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(domain.OTPTTL),
		Used:      false,
		CreatedAt: now,
	}
	if err := s.otps.Create(ctx, rec); err != nil {
		return err
	}
	metrics.OTPIssuedTotal.Inc()

	body := fmt.Sprintf("Your OTP for password reset is: %s. This OTP will expire in 5 minutes.", code)
	if _, err := s.mailer.Deliver(ctx, email, otpMailSubject, body); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("otp delivery failed")
		return domain.ErrDeliveryFailed
	}

	s.logger.Info().Str("email", email).Time("expires_at", rec.ExpiresAt).Msg("otp issued")
	return nil
}

func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	ok, err := s.otps.MatchValid(ctx, email, code, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidOTP
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	// Consume first: the digest must never change when the code fails to
	// match, and of two racing resets only the consume winner proceeds.
	if err := s.otps.ConsumeIfValid(ctx, email, code, time.Now()); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordByEmail(ctx, email, hash); err != nil {
		return err
	}

	s.logger.Info().Str("email", email).Msg("password reset completed")
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
