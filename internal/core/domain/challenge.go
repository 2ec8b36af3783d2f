package domain

import "time"

// ChallengeTTL is the fixed validity window of a one-time code.
const ChallengeTTL = 5 * time.Minute

// Challenge is a single-use one-time code bound to a phone number and the
// role claimed at send time. At most one live challenge exists per phone;
// a new send overwrites any prior unconsumed one.
type Challenge struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the challenge is past its validity window at t.
// Expiry is checked lazily at verify time; an expired challenge is rejected,
// never silently extended.
func (c Challenge) ExpiredAt(t time.Time) bool {
	return t.After(c.ExpiresAt)
}
