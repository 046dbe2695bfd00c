package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus represents the lifecycle state of a listing.
// Transitions: active -> pending (reserved by a purchase),
// pending -> sold (delivered) or pending -> active (purchase cancelled).
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusCancelled ListingStatus = "cancelled"
)

// ItemType categories match the in-game item groups.
const (
	ItemTypeSpawner = "spawner"
	ItemTypeTools   = "tools"
	ItemTypeArmour  = "armour"
	ItemTypeFarm    = "farm"
	ItemTypeStash   = "stash"
	ItemTypeOther   = "other"
)

// Listing represents a sellable item on the marketplace.
// A listing with any associated transaction is never physically deleted;
// seller removal is a soft-cancel.
type Listing struct {
	ID          uuid.UUID     `json:"id"`
	SellerID    uuid.UUID     `json:"seller_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ItemType    string        `json:"item_type"`
	ItemName    string        `json:"item_name"` // e.g. "Creeper Spawner"
	Quantity    int32         `json:"quantity"`
	Price       int64         `json:"price"`
	Status      ListingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPurchasable returns true if a buyer may open an escrow on the listing.
func (l *Listing) IsPurchasable() bool {
	return l.Status == ListingStatusActive
}
