package upload

import "time"

// Upload is a verification evidence photo stored on the local filesystem.
type Upload struct {
	ID           string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	OperatorID   int64     `gorm:"column:operator_id;index" json:"operator_id"`
	OriginalName string    `gorm:"column:original_name;type:varchar(255)" json:"original_name"`
	FilePath     string    `gorm:"column:file_path;type:varchar(512)" json:"-"` // relative disk path
	FileURL      string    `gorm:"column:file_url;type:varchar(512)" json:"url"`
	MimeType     string    `gorm:"column:mime_type;type:varchar(64)" json:"mime_type"`
	Size         int64     `gorm:"column:size" json:"size"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Upload) TableName() string { return "evidence_uploads" }

// Photo is an image held in memory before it is persisted, e.g. while staged
// in a scanning session.
type Photo struct {
	Filename string
	Data     []byte
}
