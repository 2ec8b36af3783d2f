package domain

import (
	"regexp"
	"time"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// ValidPhone reports whether s is a well-formed 10-digit phone number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// Identity models a phone-verified actor in the custody chain. Identities are
// never deleted and the role is immutable once set.
type Identity struct {
	Phone          string    `json:"phone"`
	Role           Role      `json:"role"`
	CredentialHash string    `json:"-"`
	// TransferredProduceIDs is the transfer index: produce this identity has
	// transferred away. A derived projection; the ledger remains the source
	// of truth.
	TransferredProduceIDs []uint64 `json:"transferred_produce_ids,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}
