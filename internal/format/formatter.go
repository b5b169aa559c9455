// Package format renders activities into LINE text messages.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
)

// MaxMessageLength is the LINE text message limit in characters
const MaxMessageLength = 5000

// Listing titles
const (
	TitleAll       = "所有活動"
	TitleAllWithID = "所有活動（含ID）"
	TitleThisMonth = "本月活動"
	TitleNextMonth = "下個月活動"
	TitleThisWeek  = "本週活動"
	TitleNextWeek  = "下周活動"
)

// Reminder headers
const (
	HeaderMonthly    = "📅 本月活動提醒"
	HeaderWeekly     = "📢 提醒您，下週有活動"
	HeaderWeeklyThis = "📢 提醒您，本週有活動"
	HeaderDaily      = "⏰ 提醒您，明天有活動"
)

var weekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// MonthTitle is the title for a specific month listing, e.g. 2024年十一月活動
func MonthTitle(month time.Month, year int) string {
	return fmt.Sprintf("%d年%s月活動", year, chineseMonth(month))
}

func chineseMonth(m time.Month) string {
	names := [...]string{"一", "二", "三", "四", "五", "六", "七", "八", "九", "十", "十一", "十二"}
	if m < time.January || m > time.December {
		return fmt.Sprint(int(m))
	}
	return names[m-1]
}

// List renders one line per activity under title, or a "no activities"
// sentence when there are none.
func List(activities []domain.Activity, title string) string {
	if len(activities) == 0 {
		return Empty(title)
	}
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("：\n")
	for _, a := range activities {
		b.WriteString(Line(a))
		b.WriteByte('\n')
	}
	return Truncate(strings.TrimRight(b.String(), " \n"))
}

// Reminder renders a scheduled reminder. Callers skip sending when there
// is nothing to remind about.
func Reminder(header string, activities []domain.Activity) string {
	if len(activities) == 0 {
		return ""
	}
	return List(activities, header)
}

// IDList renders activities with their ids so they can be updated or deleted
func IDList(activities []domain.Activity) string {
	if len(activities) == 0 {
		return Empty(TitleAll)
	}
	var b strings.Builder
	b.WriteString(TitleAllWithID)
	b.WriteString("：\n")
	for _, a := range activities {
		fmt.Fprintf(&b, "• ID: %d | %s\n", a.ID, strings.TrimPrefix(Line(a), "• "))
	}
	b.WriteString("\n使用「更新 [ID] ...」或「刪除 [ID]」管理活動。")
	return Truncate(b.String())
}

// Empty is the "nothing scheduled" sentence for a listing title
func Empty(title string) string {
	return "目前沒有" + strings.TrimPrefix(title, "所有") + "安排。\nNo activities scheduled."
}

// Line renders "• M/D weekday [HH:MM[-HH:MM]] name"
func Line(a domain.Activity) string {
	parts := []string{"•", dateLabel(a.Date)}
	if t := timeRange(a.StartTime, a.EndTime); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, a.Name)
	return strings.Join(parts, " ")
}

// Single renders one activity, used by confirmations
func Single(a domain.Activity) string {
	return Line(a)
}

// Confirmation prefixes a single activity with a success line
func Confirmation(verb string, a domain.Activity) string {
	return fmt.Sprintf("✅ 活動已成功%s：\n%s", verb, Single(a))
}

// dateLabel turns YYYY-MM-DD into "M/D weekday". The date is read as a
// plain calendar day so no zone conversion can move it.
func dateLabel(date string) string {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d/%d %s", int(d.Month()), d.Day(), weekdays[d.Weekday()])
}

// Weekday returns the Chinese day name for a YYYY-MM-DD date
func Weekday(date string) string {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return ""
	}
	return weekdays[d.Weekday()]
}

func timeRange(start, end *string) string {
	var s, e string
	if start != nil {
		s = ToHHMM(*start)
	}
	if end != nil {
		e = ToHHMM(*end)
	}
	switch {
	case s != "" && e != "":
		return s + "-" + e
	case s != "":
		return s
	}
	// An end without a start is not shown
	return ""
}

// ToHHMM drops seconds from HH:MM:SS; other shapes pass through unchanged
func ToHHMM(t string) string {
	parts := strings.Split(t, ":")
	if len(parts) == 3 && len(parts[0]) == 2 && len(parts[1]) == 2 && len(parts[2]) == 2 {
		return parts[0] + ":" + parts[1]
	}
	return t
}

// Truncate cuts text to the LINE message limit
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxMessageLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxMessageLength-3]) + "..."
}
