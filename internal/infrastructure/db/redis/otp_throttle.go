package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultThrottleWindow = 30 * time.Second

// OTPThrottle bounds OTP issuance per email using a Redis key with TTL.
// Key format: otp:throttle:<email>
type OTPThrottle struct {
	client *redis.Client
	window time.Duration
}

// NewOTPThrottle creates an OTPThrottle wrapping the given Redis client.
// If window <= 0 the default window is used.
func NewOTPThrottle(client *redis.Client, window time.Duration) *OTPThrottle {
	if window <= 0 {
		window = defaultThrottleWindow
	}
	return &OTPThrottle{client: client, window: window}
}

// Allow reports whether an OTP may be issued for email right now. The SetNX
// both checks and opens the window in one round trip, so concurrent requests
// for the same email admit at most one.
func (t *OTPThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.window).Result()
	if err != nil {
		return false, fmt.Errorf("otp throttle: %w", err)
	}
	return ok, nil
}

func (t *OTPThrottle) key(email string) string {
	return fmt.Sprintf("otp:throttle:%s", email)
}
