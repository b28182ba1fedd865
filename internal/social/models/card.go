package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostCard is the persisted posted-content card. Posted flips from
// false to true exactly once, when the publish action succeeds.
type PostCard struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Platform     string     `gorm:"size:16;not null;index" json:"platform"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	UserID       string     `gorm:"size:128;not null;index" json:"user_id"`
	Posted       bool       `gorm:"not null;default:false" json:"posted"`
	PostID       string     `gorm:"size:128" json:"post_id"`
	PostURL      string     `gorm:"size:512" json:"post_url"`
	SourcesJSON  string     `gorm:"type:text" json:"sources_json"`
	ResearchText string     `gorm:"type:text" json:"research_text"`
	CreatedAt    time.Time  `json:"created_at"`
	PostedAt     *time.Time `json:"posted_at"`
}

// TableName sets the table name.
func (PostCard) TableName() string {
	return "post_cards"
}

// BeforeCreate assigns a UUID when none is set.
func (c *PostCard) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// AutoMigrate creates or updates the social tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&PostCard{})
}
