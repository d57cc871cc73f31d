// models/chat.go
package models

import (
	"slices"
	"time"
)

// Chat is the group conversation of a team. Its members mirror the team's.
type Chat struct {
	ID            string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	TeamID        string    `gorm:"uniqueIndex;size:36" bson:"team" json:"team"`
	Members       []string  `gorm:"-" bson:"members" json:"members"`
	LatestMessage string    `gorm:"size:36" bson:"latestMessage,omitempty" json:"latestMessage,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (Chat) TableName() string {
	return "chats"
}

func (c Chat) HasMember(userID string) bool {
	return slices.Contains(c.Members, userID)
}

type Message struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Sender    string    `gorm:"not null;size:36" bson:"sender" json:"sender"`
	ChatID    string    `gorm:"not null;size:36;index" bson:"groupChat" json:"groupChat"`
	Content   string    `gorm:"type:text;not null" bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (Message) TableName() string {
	return "messages"
}
