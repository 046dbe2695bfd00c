package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event subjects published for the presentation layer. Consumers poll or
// subscribe; the payload carries the entity id and its new state.
const (
	SubjectBalanceChanged     = "accounts.balance_changed"
	SubjectListingChanged     = "listings.status_changed"
	SubjectTransactionChanged = "transactions.status_changed"
	SubjectDepositChanged     = "deposits.status_changed"
)

// BalanceChangedEvent is emitted after every committed ledger mutation.
type BalanceChangedEvent struct {
	AccountID  uuid.UUID `json:"account_id"`
	Balance    int64     `json:"balance"`
	Kind       AuditKind `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ListingChangedEvent is emitted when a listing changes status.
type ListingChangedEvent struct {
	ListingID  uuid.UUID     `json:"listing_id"`
	Status     ListingStatus `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// TransactionChangedEvent is emitted when an escrow is opened or settled.
type TransactionChangedEvent struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	ListingID     uuid.UUID         `json:"listing_id"`
	Status        TransactionStatus `json:"status"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// DepositChangedEvent is emitted when a deposit request is created or processed.
type DepositChangedEvent struct {
	RequestID  uuid.UUID     `json:"request_id"`
	UserID     uuid.UUID     `json:"user_id"`
	Status     DepositStatus `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
}
