package domain

import "time"

// ActivityAction classifies an activity log entry.
type ActivityAction string

const (
	ActionLogin  ActivityAction = "LOGIN"
	ActionLogout ActivityAction = "LOGOUT"
	ActionCreate ActivityAction = "CREATE"
	ActionUpdate ActivityAction = "UPDATE"
	ActionDelete ActivityAction = "DELETE"
	ActionView   ActivityAction = "VIEW"
	ActionImport ActivityAction = "IMPORT"
	ActionExport ActivityAction = "EXPORT"
)

// ActivityLogCapacity bounds how many entries are retained.
const ActivityLogCapacity = 500

// ActivityLog records who did what to which part of the console.
type ActivityLog struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	UserName  string         `json:"user_name"`
	UserRole  string         `json:"user_role"`
	Action    ActivityAction `json:"action"`
	Target    string         `json:"target"`
	Details   string         `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}
