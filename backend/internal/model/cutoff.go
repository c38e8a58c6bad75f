package model

import (
	"time"

	"gorm.io/datatypes"
)

// Cutoff is one shipment assigned to one reviewer. Maps to cutoff.
type Cutoff struct {
	ID           uint       `gorm:"primaryKey"                json:"id"`
	ShipmentID   uint       `gorm:"not null"                  json:"shipment_id"`
	SchoolName   string     `gorm:"type:varchar(255)"         json:"school_name"`
	NPSN         string     `gorm:"column:npsn;type:varchar(50)" json:"npsn"`
	ResiNumber   string     `gorm:"type:varchar(100);not null" json:"resi_number"`
	BappNumber   string     `gorm:"type:varchar(100)"         json:"bapp_number"`
	StarlinkID   string     `gorm:"type:varchar(100)"         json:"starlink_id"`
	ReceivedDate *time.Time `gorm:"type:date"                 json:"received_date,omitempty"`
	UserID       uint       `gorm:"not null"                  json:"user_id"`
	// ResiLock holds ResiNumber until the item is rejected; the unique index on it
	// stops two distribution runs from importing the same shipment.
	ResiLock  *string   `gorm:"type:varchar(100);uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	User *User            `gorm:"foreignKey:UserID"   json:"user,omitempty"`
	Log  *VerificationLog `gorm:"foreignKey:CutoffID" json:"log,omitempty"`
}

func (Cutoff) TableName() string { return "cutoff" }

// CutoffHistoryLog is the append-only audit row of one distribution run.
type CutoffHistoryLog struct {
	ID            uint           `gorm:"primaryKey"          json:"id"`
	TotalNewItems int            `gorm:"not null"            json:"total_new_items"`
	UsersCount    int            `gorm:"not null"            json:"users_count"`
	BasePerUser   int            `gorm:"not null"            json:"base_per_user"`
	Remainder     int            `gorm:"not null"            json:"remainder"`
	SkippedCount  int            `gorm:"not null"            json:"skipped_count"`
	CreatedAt     time.Time      `json:"created_at"`
	ExecutedBy    *uint          `json:"executed_by,omitempty"`
	Details       datatypes.JSON `gorm:"type:json"           json:"details,omitempty"`
}

func (CutoffHistoryLog) TableName() string { return "cutoff_history_log" }

// CutoffHistoryDetails is the JSON payload stored in CutoffHistoryLog.Details.
type CutoffHistoryDetails struct {
	SourceTotal int              `json:"source_total"`
	Assignments []UserAssignment `json:"assignments"`
	SkippedResi []string         `json:"skipped_resi,omitempty"`
}

// UserAssignment is how many items one user received in a run.
type UserAssignment struct {
	UserID uint `json:"user_id"`
	Count  int  `json:"count"`
}
