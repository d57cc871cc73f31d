// models/announcement.go
package models

import "time"

const DefaultAnnouncementTitle = "No title"

type FileType string

const (
	FileImage FileType = "image"
	FileOther FileType = "file"
)

type File struct {
	Type FileType `bson:"type" json:"type"`
	URL  string   `bson:"url" json:"url"`
}

type Announcement struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Author    string    `gorm:"not null;size:36" bson:"author" json:"author"`
	TeamID    string    `gorm:"not null;size:36;index" bson:"teamId" json:"teamId"`
	Title     string    `gorm:"not null" bson:"title" json:"title"`
	Content   string    `gorm:"type:text;not null" bson:"content" json:"content"`
	Files     []File    `gorm:"serializer:json;type:text" bson:"files" json:"files"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (Announcement) TableName() string {
	return "announcements"
}
