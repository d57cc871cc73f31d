// models/user.go
package models

import (
	"time"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name      string    `gorm:"not null" bson:"name" json:"name"`
	Username  string    `gorm:"uniqueIndex;not null" bson:"username" json:"username"`
	Password  string    `gorm:"not null" bson:"password" json:"-"`
	Picture   string    `bson:"picture" json:"picture"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// PublicUser is the shape other users get to see.
type PublicUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Picture  string `json:"picture"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Picture:  u.Picture,
	}
}
