// models/team.go
package models

import (
	"slices"
	"time"
)

type Team struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name      string    `gorm:"not null;size:100" bson:"name" json:"name"`
	Admin     string    `gorm:"not null;size:36;index" bson:"admin" json:"admin"`
	Members   []string  `gorm:"-" bson:"members" json:"members"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (Team) TableName() string {
	return "teams"
}

func (t Team) HasMember(userID string) bool {
	return slices.Contains(t.Members, userID)
}

func (t Team) IsAdmin(userID string) bool {
	return userID != "" && t.Admin == userID
}
