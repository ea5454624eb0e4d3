package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is an uploaded media object. Source/SourceUUID point at the owning row
// (currently only "block"); both are NULL while the file is unattached.
type File struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	URL         string    `gorm:"not null" json:"url"`
	MimeType    string    `gorm:"type:varchar(100)" json:"mime_type"`
	IsProcessed bool      `gorm:"not null;default:false" json:"is_processed"`
	IsDeleted   bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	Source      *string   `gorm:"type:varchar(20);index:idx_files_source" json:"source"`
	SourceUUID  *string   `gorm:"type:uuid;index:idx_files_source" json:"source_uuid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (File) TableName() string {
	return "files"
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// All lists every table model, in dependency order.
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &Block{}, &File{}}
}
