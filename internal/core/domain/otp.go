package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// OTPTTL is how long a recovery code stays valid after issuance.
const OTPTTL = 5 * time.Minute

var ErrInvalidOTP = errors.New("invalid or expired OTP")

// OTPRecord is a single-use numeric recovery code bound to an email address.
// Records are never mutated except to flip Used exactly once; expiry is
// enforced by query-time filtering, never by trusting the stored flag alone.
type OTPRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the record's validity window has passed at now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

var otpRange = big.NewInt(900000)

// GenerateOTP returns a uniformly random 6-digit code (100000–999999).
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
