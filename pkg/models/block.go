package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Block struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;index" json:"post_id"`
	Type      string    `gorm:"type:varchar(10);not null" json:"type"`
	Order     int       `gorm:"column:block_order;not null;default:0" json:"order"`
	Latitude  *float64  `gorm:"index:idx_blocks_coordinates" json:"latitude"`
	Longitude *float64  `gorm:"index:idx_blocks_coordinates" json:"longitude"`
	Content   string    `json:"content"`
	IsDeleted bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Block) TableName() string {
	return "blocks"
}

func (b *Block) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}
