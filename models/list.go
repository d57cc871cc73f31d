// models/list.go
package models

import "time"

type List struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Title     string    `gorm:"not null" bson:"title" json:"title"`
	CreatedBy string    `gorm:"size:36;index" bson:"createdBy" json:"createdBy"`
	TeamID    string    `gorm:"size:36;index" bson:"teamId,omitempty" json:"teamId,omitempty"`
	Tasks     []string  `gorm:"-" bson:"tasks" json:"tasks"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (List) TableName() string {
	return "lists"
}

func (l List) IsTeamList() bool {
	return l.TeamID != ""
}
