package models

import "time"

type Announcement struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"size:150;not null"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	ImageFilename string    `json:"image_filename" gorm:"size:100"`
	UserID        uint      `json:"user_id" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:UserID"`
}
