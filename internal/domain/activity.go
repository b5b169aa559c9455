package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength is the longest activity name accepted, in characters
const MaxNameLength = 255

// DateLayout is the wire and storage format for activity dates
const DateLayout = "2006-01-02"

// Activity represents a calendar entry
type Activity struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	StartTime *string   `json:"start_time"`
	EndTime   *string   `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewActivity is the payload for creating an activity
type NewActivity struct {
	Name      string  `json:"name"`
	Date      string  `json:"date"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

// ActivityPatch carries the fields of a partial update; nil means unchanged
type ActivityPatch struct {
	Name      *string `json:"name,omitempty"`
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p ActivityPatch) IsEmpty() bool {
	return p.Name == nil && p.Date == nil && p.StartTime == nil && p.EndTime == nil
}

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)
)

// IsValidDate reports whether s is YYYY-MM-DD and names a real calendar day
func IsValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsValidTime reports whether s is a 24-hour HH:MM or HH:MM:SS time
func IsValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// IsValidEndTime is IsValidTime plus the literal 24:00
func IsValidEndTime(s string) bool {
	return s == "24:00" || s == "24:00:00" || IsValidTime(s)
}

// NormalizeTime zero-pads the hour so that times compare lexicographically
func NormalizeTime(s string) string {
	if i := strings.IndexByte(s, ':'); i == 1 {
		return "0" + s
	}
	return s
}

// TimeBefore reports whether start sorts strictly before end
func TimeBefore(start, end string) bool {
	return clockKey(start) < clockKey(end)
}

func clockKey(s string) string {
	s = NormalizeTime(s)
	if len(s) == 5 {
		s += ":00"
	}
	return s
}

// IsValidName reports whether the trimmed name is non-empty and short enough
func IsValidName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= MaxNameLength
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
