package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccount_IsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role AccountRole
		want bool
	}{
		{"admin", AccountRoleAdmin, true},
		{"user", AccountRoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Role: tt.role}
			assert.Equal(t, tt.want, a.IsAdmin())
		})
	}
}

func TestListing_IsPurchasable(t *testing.T) {
	tests := []struct {
		name   string
		status ListingStatus
		want   bool
	}{
		{"active", ListingStatusActive, true},
		{"pending", ListingStatusPending, false},
		{"sold", ListingStatusSold, false},
		{"cancelled", ListingStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Listing{Status: tt.status}
			assert.Equal(t, tt.want, l.IsPurchasable())
		})
	}
}

func TestTransaction_IsSettled(t *testing.T) {
	tests := []struct {
		name   string
		status TransactionStatus
		want   bool
	}{
		{"escrow", TransactionStatusEscrow, false},
		{"completed", TransactionStatusCompleted, true},
		{"cancelled", TransactionStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status}
			assert.Equal(t, tt.want, tx.IsSettled())
		})
	}
}

func TestDepositRequest_IsProcessed(t *testing.T) {
	tests := []struct {
		name   string
		status DepositStatus
		want   bool
	}{
		{"pending", DepositStatusPending, false},
		{"approved", DepositStatusApproved, true},
		{"rejected", DepositStatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &DepositRequest{Status: tt.status}
			assert.Equal(t, tt.want, d.IsProcessed())
		})
	}
}
