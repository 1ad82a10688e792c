package models

import (
	"time"
)

type Connection struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	FromUID   string    `gorm:"size:128;not null;index" json:"fromUid"`
	ToUID     string    `gorm:"size:128;not null;index" json:"toUid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Connection) TableName() string { return "connections" }

// ConnectionRequest is pending until accepted or rejected, and expires with
// the same retention window as messages.
type ConnectionRequest struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	From      string    `gorm:"column:from_uid;size:128;not null;uniqueIndex:idx_request_pair,priority:1" json:"from"`
	To        string    `gorm:"column:to_uid;size:128;not null;uniqueIndex:idx_request_pair,priority:2;index" json:"to"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (ConnectionRequest) TableName() string { return "connection_requests" }
