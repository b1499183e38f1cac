package audit

import (
	"time"

	"gorm.io/datatypes"
)

type Action string

const (
	ActionVerify   Action = "verify"
	ActionUnverify Action = "unverify"
)

// Entry is one verification state change with the item before and after.
type Entry struct {
	ID             int64          `gorm:"column:id;primaryKey" json:"id"`
	OperatorID     int64          `gorm:"column:operator_id;index" json:"operator_id"`
	EquipmentID    int64          `gorm:"column:equipment_id;not null;index" json:"equipment_id"`
	DeliveryNoteID int64          `gorm:"column:delivery_note_id;index" json:"delivery_note_id"`
	Action         Action         `gorm:"column:action;type:varchar(16);not null" json:"action"`
	Description    string         `gorm:"column:description;type:varchar(255)" json:"description"`
	Before         datatypes.JSON `gorm:"column:before_data" json:"before"`
	After          datatypes.JSON `gorm:"column:after_data" json:"after"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "verification_audit" }
