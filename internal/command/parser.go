package command

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
)

const viewPrefix = "查看"

var (
	helpWords   = map[string]bool{"help": true, "幫助": true}
	listWords   = map[string]bool{"list": true, "列表": true}
	createWords = map[string]bool{"新增": true, "add": true, "create": true}
	updateWords = map[string]bool{"更新": true, "update": true}
	deleteWords = map[string]bool{"刪除": true, "delete": true}

	viewWords = map[string]Command{
		"全部":   ViewAll{},
		"all":  ViewAll{},
		"id":   ViewByID{},
		"ids":  ViewByID{},
		"這個月":  ViewThisMonth{},
		"本月":   ViewThisMonth{},
		"下個月":  ViewNextMonth{},
		"這個禮拜": ViewThisWeek{},
		"本週":   ViewThisWeek{},
		"本周":   ViewThisWeek{},
		"下周":   ViewNextWeek{},
		"下週":   ViewNextWeek{},
		"下個禮拜": ViewNextWeek{},
	}

	fieldWords = map[string]UpdateField{
		"名稱":   FieldName,
		"name": FieldName,
		"時間":   FieldTime,
		"time": FieldTime,
		"日期":   FieldDate,
		"date": FieldDate,
	}

	chineseMonths = map[string]time.Month{
		"一": time.January, "二": time.February, "三": time.March,
		"四": time.April, "五": time.May, "六": time.June,
		"七": time.July, "八": time.August, "九": time.September,
		"十": time.October, "十一": time.November, "十二": time.December,
	}

	yearPattern = regexp.MustCompile(`^\d{4}$`)
)

// Parser turns chat text into commands. The clock supplies the default
// year for month listings.
type Parser struct {
	loc *time.Location
	now func() time.Time
}

// NewParser creates a parser that resolves "current year" in loc
func NewParser(loc *time.Location, now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{loc: loc, now: now}
}

// Parse maps raw text to a Command. Mutating commands from unauthorized
// users come back as Forbidden without their arguments being inspected.
func (p *Parser) Parse(text string, authorized bool) Command {
	tokens := strings.Fields(strings.TrimSpace(text))
	if len(tokens) == 0 {
		return Unknown{Text: text}
	}
	tokens = splitViewPrefix(tokens)
	head := strings.ToLower(tokens[0])

	switch {
	case len(tokens) == 1 && helpWords[head]:
		return Help{Admin: authorized}
	case len(tokens) == 1 && listWords[head]:
		return ViewAll{}
	case head == viewPrefix || head == "view":
		return p.parseView(text, tokens[1:])
	case createWords[head]:
		if !authorized {
			return Forbidden{Action: ActionCreate}
		}
		return parseCreate(tokens)
	case updateWords[head]:
		if !authorized {
			return Forbidden{Action: ActionUpdate}
		}
		return parseUpdate(tokens)
	case deleteWords[head]:
		if !authorized {
			return Forbidden{Action: ActionDelete}
		}
		return parseDelete(tokens)
	}
	return Unknown{Text: text}
}

// splitViewPrefix lets "查看本月" behave like "查看 本月"
func splitViewPrefix(tokens []string) []string {
	first := tokens[0]
	if first == viewPrefix || !strings.HasPrefix(first, viewPrefix) {
		return tokens
	}
	out := make([]string, 0, len(tokens)+1)
	out = append(out, viewPrefix, strings.TrimPrefix(first, viewPrefix))
	return append(out, tokens[1:]...)
}

func (p *Parser) parseView(text string, args []string) Command {
	if len(args) == 0 || len(args) > 2 {
		return Unknown{Text: text}
	}

	arg := strings.ToLower(args[0])
	if len(args) == 1 {
		if cmd, ok := viewWords[arg]; ok {
			return cmd
		}
	}

	if !strings.HasSuffix(arg, "月") {
		return Unknown{Text: text}
	}
	month, ok := parseMonth(strings.TrimSuffix(arg, "月"))
	if !ok {
		return Malformed{Action: ActionView, Hint: HintMonthFormat}
	}

	year := p.now().In(p.loc).Year()
	if len(args) == 2 {
		if !yearPattern.MatchString(args[1]) {
			return Malformed{Action: ActionView, Hint: HintMonthFormat}
		}
		year, _ = strconv.Atoi(args[1])
	}
	return ViewSpecificMonth{Month: month, Year: year}
}

// parseMonth accepts 1-12 in digits or Chinese numerals
func parseMonth(s string) (time.Month, bool) {
	if m, ok := chineseMonths[s]; ok {
		return m, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return 0, false
	}
	return time.Month(n), true
}

func parseCreate(tokens []string) Command {
	if len(tokens) < 3 {
		return Malformed{Action: ActionCreate, Hint: HintCreateUsage}
	}

	date := tokens[1]
	if !domain.IsValidDate(date) {
		return Malformed{Action: ActionCreate, Hint: HintDateFormat}
	}

	cmd := Create{Date: date}
	nameTokens := tokens[2:]

	// Only a start-end range is read as time; anything else begins the name
	if looksLikeTimeRange(tokens[2]) {
		start, end, hint := parseTimeRange(tokens[2])
		if hint != "" {
			return Malformed{Action: ActionCreate, Hint: hint}
		}
		cmd.StartTime, cmd.EndTime = start, end
		nameTokens = tokens[3:]
	}

	cmd.Name = strings.Join(nameTokens, " ")
	if cmd.Name == "" {
		return Malformed{Action: ActionCreate, Hint: HintCreateUsage}
	}
	return cmd
}

func parseUpdate(tokens []string) Command {
	if len(tokens) < 4 {
		return Malformed{Action: ActionUpdate, Hint: HintUpdateUsage}
	}

	id, ok := parseID(tokens[1])
	if !ok {
		return Malformed{Action: ActionUpdate, Hint: HintInvalidID}
	}

	field, ok := fieldWords[strings.ToLower(tokens[2])]
	if !ok {
		return Malformed{Action: ActionUpdate, Hint: HintUpdateField}
	}

	cmd := Update{ID: id, Field: field}
	switch field {
	case FieldName:
		cmd.Name = strings.Join(tokens[3:], " ")
	case FieldDate:
		if len(tokens) != 4 || !domain.IsValidDate(tokens[3]) {
			return Malformed{Action: ActionUpdate, Hint: HintDateFormat}
		}
		cmd.Date = tokens[3]
	case FieldTime:
		if len(tokens) != 4 {
			return Malformed{Action: ActionUpdate, Hint: HintTimeFormat}
		}
		start, end, hint := parseTimeRange(tokens[3])
		if hint != "" {
			return Malformed{Action: ActionUpdate, Hint: hint}
		}
		cmd.StartTime, cmd.EndTime = start, end
	}
	return cmd
}

func parseDelete(tokens []string) Command {
	if len(tokens) != 2 {
		return Malformed{Action: ActionDelete, Hint: HintDeleteUsage}
	}
	id, ok := parseID(tokens[1])
	if !ok {
		return Malformed{Action: ActionDelete, Hint: HintInvalidID}
	}
	return Delete{ID: id}
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

// isClock matches a 24-hour HH:MM without seconds
func isClock(s string) bool {
	return strings.Count(s, ":") == 1 && domain.IsValidTime(s)
}

func looksLikeTimeRange(s string) bool {
	return strings.Count(s, "-") == 1 && strings.Contains(s, ":")
}

// parseTimeRange splits "HH:MM-HH:MM", returning a hint on failure.
// The end may be 24:00. Hours are zero padded before comparing.
func parseTimeRange(s string) (start, end, hint string) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return "", "", HintTimeFormat
	}
	start, end = parts[0], parts[1]
	if !isClock(start) || !(end == "24:00" || isClock(end)) {
		return "", "", HintTimeFormat
	}
	start, end = domain.NormalizeTime(start), domain.NormalizeTime(end)
	if !domain.TimeBefore(start, end) {
		return "", "", HintTimeOrder
	}
	return start, end, ""
}
