package inventory

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderPendingReceive OrderStatus = "pending_receive"
	OrderPending        OrderStatus = "pending"
	OrderReceived       OrderStatus = "received"
	OrderPartial        OrderStatus = "partial"
	OrderCompleted      OrderStatus = "completed"
	OrderCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPendingReceive, OrderPending, OrderReceived, OrderPartial, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type DeliveryNoteStatus string

const (
	NoteReceived   DeliveryNoteStatus = "received"
	NoteProcessing DeliveryNoteStatus = "processing"
	NoteCompleted  DeliveryNoteStatus = "completed"
)

func (s DeliveryNoteStatus) Valid() bool {
	switch s {
	case NoteReceived, NoteProcessing, NoteCompleted:
		return true
	}
	return false
}

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionGood Condition = "good"
	ConditionFair Condition = "fair"
	ConditionPoor Condition = "poor"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type EquipmentStatus string

const (
	EquipmentReceived       EquipmentStatus = "received"
	EquipmentInstalled      EquipmentStatus = "installed"
	EquipmentConfigured     EquipmentStatus = "configured"
	EquipmentDecommissioned EquipmentStatus = "decommissioned"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentReceived, EquipmentInstalled, EquipmentConfigured, EquipmentDecommissioned:
		return true
	}
	return false
}

// Project is the top of the receiving hierarchy, tied to one external
// request-tracking ticket (RITM code).
type Project struct {
	ID         int64         `gorm:"column:id;primaryKey" json:"id"`
	RITM       string        `gorm:"column:ritm;type:varchar(32);uniqueIndex;not null" json:"ritm"`
	Name       string        `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Client     string        `gorm:"column:client;type:varchar(255)" json:"client"`
	Datacenter string        `gorm:"column:datacenter;type:varchar(128)" json:"datacenter"`
	Status     ProjectStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

type Order struct {
	ID                     int64       `gorm:"column:id;primaryKey" json:"id"`
	ProjectID              int64       `gorm:"column:project_id;not null;index" json:"project_id"`
	Code                   string      `gorm:"column:code;type:varchar(64);not null" json:"code"`
	Vendor                 string      `gorm:"column:vendor;type:varchar(255)" json:"vendor"`
	ExpectedEquipmentCount int         `gorm:"column:expected_equipment_count;not null;default:0" json:"expected_equipment_count"`
	Status                 OrderStatus `gorm:"column:status;type:varchar(24);not null" json:"status"`
	CreatedAt              time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// DeliveryNote is a shipment manifest grouping the items received together
// under one order.
type DeliveryNote struct {
	ID                      int64              `gorm:"column:id;primaryKey" json:"id"`
	OrderID                 int64              `gorm:"column:order_id;not null;index" json:"order_id"`
	DeliveryCode            string             `gorm:"column:delivery_code;type:varchar(64);not null" json:"delivery_code"`
	Carrier                 string             `gorm:"column:carrier;type:varchar(128)" json:"carrier"`
	TrackingNumber          string             `gorm:"column:tracking_number;type:varchar(128)" json:"tracking_number"`
	EstimatedEquipmentCount int                `gorm:"column:estimated_equipment_count;not null;default:0" json:"estimated_equipment_count"`
	Status                  DeliveryNoteStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt               time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DeliveryNote) TableName() string { return "delivery_notes" }

type EquipmentItem struct {
	ID             int64  `gorm:"column:id;primaryKey" json:"id"`
	DeliveryNoteID int64  `gorm:"column:delivery_note_id;not null;index;uniqueIndex:idx_equipment_note_serial,priority:1" json:"delivery_note_id"`
	SerialNumber   string `gorm:"column:serial_number;type:varchar(128);not null" json:"serial_number"`
	// SerialKey is the normalised serial used for the per-note uniqueness constraint.
	SerialKey    string          `gorm:"column:serial_key;type:varchar(128);not null;uniqueIndex:idx_equipment_note_serial,priority:2" json:"-"`
	AssetTag     string          `gorm:"column:asset_tag;type:varchar(64)" json:"asset_tag"`
	Manufacturer string          `gorm:"column:manufacturer;type:varchar(128)" json:"manufacturer"`
	Model        string          `gorm:"column:model;type:varchar(128)" json:"model"`
	Category     string          `gorm:"column:category;type:varchar(64)" json:"category"`
	Condition    Condition       `gorm:"column:condition;type:varchar(8);not null" json:"condition"`
	Status       EquipmentStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`

	IsVerified            bool       `gorm:"column:is_verified;not null;default:false;index" json:"is_verified"`
	VerificationPhotoPath *string    `gorm:"column:verification_photo_path;type:varchar(512)" json:"verification_photo_path"`
	VerifiedAt            *time.Time `gorm:"column:verified_at" json:"verified_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (EquipmentItem) TableName() string { return "equipment_items" }

func (e *EquipmentItem) BeforeCreate(_ *gorm.DB) error {
	e.SerialNumber = strings.TrimSpace(e.SerialNumber)
	e.SerialKey = NormalizeSerial(e.SerialNumber)
	return nil
}

// MatchesSerial reports whether a scanned serial identifies this item:
// exact comparison of the canonical forms, so matching and uniqueness agree.
func (e *EquipmentItem) MatchesSerial(serial string) bool {
	key := e.SerialKey
	if key == "" {
		key = NormalizeSerial(e.SerialNumber)
	}
	return key == NormalizeSerial(serial)
}

// NormalizeSerial is the canonical form of a serial: trimmed and Unicode
// case-folded. It is both the uniqueness key and the match key.
func NormalizeSerial(serial string) string {
	return cases.Fold().String(strings.TrimSpace(serial))
}

// Models lists every table owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{&Project{}, &Order{}, &DeliveryNote{}, &EquipmentItem{}}
}
