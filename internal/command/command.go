package command

import (
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
)

// Command is the closed set of things a chat message can ask for.
// Only types in this package implement it; consumers switch over them.
type Command interface {
	isCommand()
}

// Action names a mutating command, used for authorization replies
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

// UpdateField is the attribute an update command changes
type UpdateField string

const (
	FieldName UpdateField = "name"
	FieldTime UpdateField = "time"
	FieldDate UpdateField = "date"
)

type (
	// ViewAll lists every activity
	ViewAll struct{}

	// ViewByID lists every activity together with its id
	ViewByID struct{}

	ViewThisMonth struct{}
	ViewNextMonth struct{}
	ViewThisWeek  struct{}
	ViewNextWeek  struct{}

	// ViewSpecificMonth lists one month; Year defaults to the current year
	ViewSpecificMonth struct {
		Month time.Month
		Year  int
	}

	// Create adds an activity. StartTime and EndTime are empty when absent.
	Create struct {
		Name      string
		Date      string
		StartTime string
		EndTime   string
	}

	// Update changes one field of an activity
	Update struct {
		ID        int64
		Field     UpdateField
		Name      string
		Date      string
		StartTime string
		EndTime   string
	}

	Delete struct {
		ID int64
	}

	// Help shows usage; Admin adds the management commands
	Help struct {
		Admin bool
	}

	// Unknown is any text outside the command vocabulary. It gets no reply.
	Unknown struct {
		Text string
	}

	// Malformed is a recognized command with bad arguments
	Malformed struct {
		Action Action
		Hint   string
	}

	// Forbidden is a recognized mutating command from a user who may not run it
	Forbidden struct {
		Action Action
	}
)

func (ViewAll) isCommand()           {}
func (ViewByID) isCommand()          {}
func (ViewThisMonth) isCommand()     {}
func (ViewNextMonth) isCommand()     {}
func (ViewThisWeek) isCommand()      {}
func (ViewNextWeek) isCommand()      {}
func (ViewSpecificMonth) isCommand() {}
func (Create) isCommand()            {}
func (Update) isCommand()            {}
func (Delete) isCommand()            {}
func (Help) isCommand()              {}
func (Unknown) isCommand()           {}
func (Malformed) isCommand()         {}
func (Forbidden) isCommand()         {}

// NewActivity converts the command into a store payload
func (c Create) NewActivity() domain.NewActivity {
	return domain.NewActivity{
		Name:      c.Name,
		Date:      c.Date,
		StartTime: domain.StringPtr(c.StartTime),
		EndTime:   domain.StringPtr(c.EndTime),
	}
}

// Patch converts the command into a partial update
func (c Update) Patch() domain.ActivityPatch {
	var p domain.ActivityPatch
	switch c.Field {
	case FieldName:
		p.Name = &c.Name
	case FieldDate:
		p.Date = &c.Date
	case FieldTime:
		p.StartTime = &c.StartTime
		p.EndTime = &c.EndTime
	}
	return p
}
