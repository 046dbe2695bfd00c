package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountRole distinguishes regular traders from marketplace admins.
type AccountRole string

const (
	AccountRoleUser  AccountRole = "user"
	AccountRoleAdmin AccountRole = "admin"
)

// Account represents a marketplace user with a site-currency balance.
// Balance is mutated exclusively by the ledger; it never goes negative.
type Account struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"` // In-game username
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Argon2id, never expose
	Role         AccountRole `json:"role"`
	Balance      int64       `json:"balance"` // In-game currency, smallest unit
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsAdmin returns true if the account may settle escrows and process deposits.
func (a *Account) IsAdmin() bool {
	return a.Role == AccountRoleAdmin
}
