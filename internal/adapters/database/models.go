// Package database provides GORM-backed adapters for collections, ownership records
// and the database persisted cache tier.
package database

import (
	"time"

	"gorm.io/gorm"
)

// CollectionModel represents the database model for collections
type CollectionModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	Name       string `gorm:"not null"`
	Game       string `gorm:"not null"`
	Language   string `gorm:"size:8;not null"`
	SetID      string `gorm:"index"`
	OwnerID    string `gorm:"index;not null"`
	TotalCards int    `gorm:"not null;default:0"`
	OwnedCards int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Members []CollectionMemberModel `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE"`
}

func (CollectionModel) TableName() string {
	return "collections"
}

// CollectionMemberModel represents one user's role in a collection
type CollectionMemberModel struct {
	CollectionID string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"primaryKey;index"`
	Role         string `gorm:"not null"`
	CreatedAt    time.Time
}

func (CollectionMemberModel) TableName() string {
	return "collection_members"
}

// OwnershipModel represents the database model for ownership records.
// The composite primary key makes (user, collection, card) unique.
type OwnershipModel struct {
	UserID       string    `gorm:"primaryKey"`
	CollectionID string    `gorm:"primaryKey;size:36;index"`
	CardID       string    `gorm:"primaryKey"`
	Owned        bool      `gorm:"not null"`
	Quantity     int       `gorm:"not null;check:quantity >= 0"`
	Condition    string    `gorm:"not null"`
	Notes        string
	AddedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time
}

func (OwnershipModel) TableName() string {
	return "ownerships"
}

// CacheEntryModel holds one persisted cache tier value
type CacheEntryModel struct {
	Key       string `gorm:"column:cache_key;primaryKey"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (CacheEntryModel) TableName() string {
	return "cache_entries"
}

// AutoMigrate creates or updates every table this package owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&CollectionModel{},
		&CollectionMemberModel{},
		&OwnershipModel{},
		&CacheEntryModel{},
	)
}
