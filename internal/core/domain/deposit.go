package domain

import (
	"time"

	"github.com/google/uuid"
)

// DepositStatus represents the deposit approval state machine.
// pending -> approved or pending -> rejected; both terminal.
type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusApproved DepositStatus = "approved"
	DepositStatusRejected DepositStatus = "rejected"
)

// DepositRequest is a user's claim of an off-platform payment.
// The claim is not trusted: the balance is credited only when an admin
// confirms real-world receipt and approves the request.
type DepositRequest struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Amount      int64         `json:"amount"`
	Status      DepositStatus `json:"status"`
	AdminID     *uuid.UUID    `json:"admin_id,omitempty"`
	AdminNote   *string       `json:"admin_note,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty"`
}

// IsProcessed returns true once an admin has approved or rejected the request.
func (d *DepositRequest) IsProcessed() bool {
	return d.Status != DepositStatusPending
}
