// models/task.go
package models

import "time"

type TaskStatus string

const (
	StatusTodo     TaskStatus = "todo"
	StatusOngoing  TaskStatus = "ongoing"
	StatusFinished TaskStatus = "finished"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusOngoing, StatusFinished:
		return true
	}
	return false
}

// Task is personal when TeamID is empty and unlisted when ListID is empty.
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Description string     `gorm:"not null" bson:"description" json:"description"`
	Status      TaskStatus `gorm:"not null;size:16;default:'todo'" bson:"status" json:"status"`
	Assignee    string     `gorm:"size:36;index" bson:"assignee" json:"assignee"`
	AssignedBy  string     `gorm:"size:36;index" bson:"assignedBy" json:"assignedBy"`
	TeamID      string     `gorm:"size:36;index" bson:"teamId,omitempty" json:"teamId,omitempty"`
	ListID      string     `gorm:"size:36;index" bson:"listId,omitempty" json:"listId,omitempty"`
	DueDate     *time.Time `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t Task) IsTeamTask() bool {
	return t.TeamID != ""
}
