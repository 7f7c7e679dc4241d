package models

import "time"

// ClaimStatus defines lifecycle states for ownership claims.
type ClaimStatus string

const (
	// ClaimStatusPending indicates the claim is awaiting admin review.
	ClaimStatusPending ClaimStatus = "pending"
	// ClaimStatusApproved indicates the claim was accepted; the item is claimed.
	ClaimStatusApproved ClaimStatus = "approved"
	// ClaimStatusRejected indicates the claim was denied.
	ClaimStatusRejected ClaimStatus = "rejected"
)

// Valid reports whether s is a recognized claim status.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusApproved, ClaimStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transition.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

// Claim is a user's assertion of ownership over a verified item, subject to
// admin adjudication. The partial unique index on (item_id, claimant_id)
// where status = 'pending' enforces the one-pending-claim-per-user rule at
// commit time; the application-level pre-check alone would race.
type Claim struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	ItemID     uint        `gorm:"not null;index" json:"item_id"`
	Item       *Item       `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	ClaimantID uint        `gorm:"not null;index" json:"claimant_id"`
	Claimant   *User       `gorm:"foreignKey:ClaimantID" json:"claimant,omitempty"`
	Status     ClaimStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes      string      `gorm:"type:text" json:"notes"`
	ClaimDate  time.Time   `gorm:"not null" json:"claim_date"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Claim) TableName() string {
	return "claims"
}
