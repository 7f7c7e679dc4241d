package models

import "time"

// ItemStatus defines lifecycle states for reported items.
type ItemStatus string

const (
	// ItemStatusPending indicates the item is awaiting admin verification.
	ItemStatusPending ItemStatus = "pending"
	// ItemStatusVerified indicates the item passed verification and is publicly browsable.
	ItemStatusVerified ItemStatus = "verified"
	// ItemStatusClaimed indicates an ownership claim on the item was approved.
	ItemStatusClaimed ItemStatus = "claimed"
	// ItemStatusRejected indicates the report was declined during verification.
	ItemStatusRejected ItemStatus = "rejected"
)

// Valid reports whether s is a recognized item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusVerified, ItemStatusClaimed, ItemStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further automatic transition leaves s.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusClaimed || s == ItemStatusRejected
}

// ItemType distinguishes lost-item reports from found-item reports.
type ItemType string

const (
	// ItemTypeLost marks an item its owner is searching for.
	ItemTypeLost ItemType = "lost"
	// ItemTypeFound marks an item handed in by a finder.
	ItemTypeFound ItemType = "found"
)

// Valid reports whether t is a recognized item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// ItemCategory classifies reported items for browsing.
type ItemCategory string

const (
	ItemCategoryElectronics ItemCategory = "electronics"
	ItemCategoryDocuments   ItemCategory = "documents"
	ItemCategoryClothing    ItemCategory = "clothing"
	ItemCategoryAccessories ItemCategory = "accessories"
	ItemCategoryBooks       ItemCategory = "books"
	ItemCategoryOthers      ItemCategory = "others"
)

// ItemCategories lists every recognized category.
var ItemCategories = []ItemCategory{
	ItemCategoryElectronics,
	ItemCategoryDocuments,
	ItemCategoryClothing,
	ItemCategoryAccessories,
	ItemCategoryBooks,
	ItemCategoryOthers,
}

// Valid reports whether c is a recognized category.
func (c ItemCategory) Valid() bool {
	for _, cat := range ItemCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Item is a reported lost or found object. Deleting an item cascades to its
// claims; a claim never outlives the item it targets.
type Item struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Category    ItemCategory `gorm:"type:varchar(50);not null;index" json:"category"`
	ItemType    ItemType     `gorm:"type:varchar(20);not null;index" json:"item_type"`
	PhotoPath   string       `gorm:"size:500" json:"photo_path"`
	Status      ItemStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IsVerified  bool         `gorm:"not null;default:false;index" json:"is_verified"`
	Date        time.Time    `gorm:"not null" json:"date"`
	Location    string       `gorm:"size:255;not null" json:"location"`
	ReporterID  uint         `gorm:"not null;index" json:"reporter_id"`
	Reporter    *User        `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	Claims []Claim `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"claims,omitempty"`
}

// TableName specifies the table name for GORM.
func (Item) TableName() string {
	return "items"
}

// OpenForClaims reports whether new claims may be filed against the item.
// Only verified items accept claims; once claimed or rejected the item is closed.
func (i *Item) OpenForClaims() bool {
	return i.Status == ItemStatusVerified
}
