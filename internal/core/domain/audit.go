package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditKind classifies the ledger mutation an entry records.
type AuditKind string

const (
	AuditKindDeposit    AuditKind = "deposit"
	AuditKindWithdrawal AuditKind = "withdrawal"
	AuditKindPurchase   AuditKind = "purchase"
	AuditKindSale       AuditKind = "sale"
	AuditKindRefund     AuditKind = "refund"
)

// AuditEntry records a single balance mutation for reconciliation.
// Entries are append-only and written in the same database transaction as
// the balance change they describe, and are never edited afterwards.
type AuditEntry struct {
	ID            uuid.UUID `json:"id"`
	AccountID     uuid.UUID `json:"account_id"`
	Kind          AuditKind `json:"kind"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
