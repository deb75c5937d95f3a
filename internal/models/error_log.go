package models

import (
	"time"

	"gorm.io/gorm"
)

// ErrorLog is one diagnostic recorded by the poll loop. Titles are never stored.
type ErrorLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Source    string         `gorm:"size:16;not null;index" json:"source"`
	ClassName string         `gorm:"size:255" json:"class_name"`
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
