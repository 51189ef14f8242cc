package models

import "time"

// Article is an editorial content page addressed by slug.
type Article struct {
	Slug        string    `gorm:"column:slug;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Body        string    `gorm:"column:body;not null"`
	IsPublished bool      `gorm:"column:is_published;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
