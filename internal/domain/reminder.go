package domain

// ReminderType names a scheduled trigger
type ReminderType string

const (
	ReminderMonthly ReminderType = "monthly"
	ReminderWeekly  ReminderType = "weekly"
	ReminderDaily   ReminderType = "daily"
	ReminderCleanup ReminderType = "cleanup"
)

// ParseReminderType validates a trigger name
func ParseReminderType(s string) (ReminderType, bool) {
	switch t := ReminderType(s); t {
	case ReminderMonthly, ReminderWeekly, ReminderDaily, ReminderCleanup:
		return t, true
	}
	return "", false
}

// DispatchResult records the outcome of one outbound send
type DispatchResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// GroupResult records the outcome of sending to one group
type GroupResult struct {
	Success   bool   `json:"success"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GroupErrorQuota marks groups skipped or failed because the monthly quota is used up
const GroupErrorQuota = "quota"

// ReminderResult is the structured outcome of one reminder trigger
type ReminderResult struct {
	Success         bool            `json:"success"`
	Type            ReminderType    `json:"type"`
	ActivitiesCount int             `json:"activities_count"`
	Message         string          `json:"message"`
	NoActivities    bool            `json:"no_activities"`
	WindowStart     string          `json:"window_start"`
	WindowEnd       string          `json:"window_end"`
	BroadcastResult *DispatchResult `json:"broadcast_result,omitempty"`
	GroupResults    []GroupResult   `json:"group_results"`
}

// CleanupResult is the outcome of purging old activities
type CleanupResult struct {
	DeletedCount      int        `json:"deleted_count"`
	CutoffDate        string     `json:"cutoff_date"`
	DeletedActivities []Activity `json:"deleted_activities"`
}

// WeekScope selects which week a weekly reminder covers
type WeekScope string

const (
	WeekNext WeekScope = "next"
	WeekThis WeekScope = "this"
)

// ParseWeekScope defaults to the upcoming week
func ParseWeekScope(s string) (WeekScope, bool) {
	switch WeekScope(s) {
	case "", WeekNext:
		return WeekNext, true
	case WeekThis:
		return WeekThis, true
	}
	return "", false
}
