package domain

import "time"

// ReminderGroup is a LINE group or room that receives reminders
type ReminderGroup struct {
	GroupID   string    `json:"group_id"`
	GroupName string    `json:"group_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
