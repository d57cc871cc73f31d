// models/team_member.go
package models

import "time"

// TeamMember, ChatMember and ListTask back the array fields of Team, Chat
// and List in relational stores.
type TeamMember struct {
	TeamID   string    `gorm:"primaryKey;size:36"`
	UserID   string    `gorm:"primaryKey;size:36;index"`
	JoinedAt time.Time `gorm:"not null"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

type ChatMember struct {
	ChatID   string    `gorm:"primaryKey;size:36"`
	UserID   string    `gorm:"primaryKey;size:36;index"`
	JoinedAt time.Time `gorm:"not null"`
}

func (ChatMember) TableName() string {
	return "chat_members"
}

type ListTask struct {
	ListID   string `gorm:"primaryKey;size:36"`
	TaskID   string `gorm:"primaryKey;size:36;index"`
	Position int    `gorm:"not null"`
}

func (ListTask) TableName() string {
	return "list_tasks"
}
