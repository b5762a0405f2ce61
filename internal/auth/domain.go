package auth

import "time"

// User represents an account in the identity store. APIEnabled is the
// capability flag required to obtain a token; it is checked at issuance only.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	APIEnabled   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
