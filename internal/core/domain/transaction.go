package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the escrow state machine.
// escrow -> completed (payout) or escrow -> cancelled (refund); both terminal.
type TransactionStatus string

const (
	TransactionStatusEscrow    TransactionStatus = "escrow"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction is an escrow record: funds held by the platform between a
// buyer's debit and an admin-mediated settlement.
// Amount is snapshotted from the listing price at purchase time and never
// recomputed, so later price edits cannot change what settles.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	ListingID   uuid.UUID         `json:"listing_id"`
	BuyerID     uuid.UUID         `json:"buyer_id"`
	SellerID    uuid.UUID         `json:"seller_id"`
	ItemName    string            `json:"item_name"`
	Amount      int64             `json:"amount"`
	Status      TransactionStatus `json:"status"`
	AdminID     *uuid.UUID        `json:"admin_id,omitempty"` // Admin who settled
	AdminNote   *string           `json:"admin_note,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// IsSettled returns true once the escrow has reached a terminal state.
// Settled transactions admit no further transitions.
func (t *Transaction) IsSettled() bool {
	return t.Status != TransactionStatusEscrow
}
