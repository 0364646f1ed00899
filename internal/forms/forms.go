package forms

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mrshanahan/notes-console/pkg/notes"
)

const (
	RemindTypeTimes = "times"
	RemindTypeCron  = "cron"
)

var (
	DefaultRemindTimes = []string{"08:10", "12:30", "20:00"}

	remindTimePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

// ValidationError is a user-facing message for input rejected before any
// backend call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Input holds the raw values of the create or edit form.
type Input struct {
	Title          string
	Content        string
	Category       string
	Priority       string
	RemindType     string
	RemindTimes    string
	CronExpression string
	EnableRemind   bool
	MergeRemind    bool
}

// DefaultCreateInput is the state the create form is reset to.
func DefaultCreateInput() Input {
	return Input{
		Category:    notes.CategoryTodo,
		Priority:    strconv.Itoa(notes.DefaultPriority),
		RemindType:  RemindTypeTimes,
		RemindTimes: strings.Join(DefaultRemindTimes, ", "),
	}
}

// EditInput pre-fills the edit form from an existing note.
func EditInput(n *notes.Note) Input {
	in := Input{
		Title:        n.Title,
		Content:      n.Content,
		Category:     n.Category,
		Priority:     strconv.Itoa(notes.ClampPriority(n.Priority)),
		EnableRemind: n.EnableRemind,
		MergeRemind:  n.MergeRemind,
	}
	if n.HasCron() {
		in.RemindType = RemindTypeCron
		in.CronExpression = n.CronExpression
	} else {
		in.RemindType = RemindTypeTimes
		in.RemindTimes = strings.Join(n.RemindTimes, ", ")
	}
	return in
}

// IsCron reports whether the cron sub-form is the active one.
func (in Input) IsCron() bool {
	return in.RemindType == RemindTypeCron
}

type common struct {
	title    string
	content  string
	category string
	priority int
}

func (in Input) parseCommon() (*common, error) {
	c := &common{
		title:    strings.TrimSpace(in.Title),
		content:  strings.TrimSpace(in.Content),
		category: strings.TrimSpace(in.Category),
	}
	if c.title == "" || c.content == "" {
		return nil, invalid("Please fill in title and content")
	}
	if c.category == "" {
		c.category = notes.CategoryTodo
	}

	priority, err := strconv.Atoi(strings.TrimSpace(in.Priority))
	if err != nil || priority < notes.MinPriority || priority > notes.MaxPriority {
		return nil, invalid("Priority must be a number from 1 to 5")
	}
	c.priority = priority
	return c, nil
}

// ParseCreate validates the create form. Empty remind times fall back to
// DefaultRemindTimes.
func ParseCreate(in Input) (*notes.CreateRequest, error) {
	c, err := in.parseCommon()
	if err != nil {
		return nil, err
	}

	req := &notes.CreateRequest{
		Title:        c.title,
		Content:      c.content,
		Category:     c.category,
		Priority:     c.priority,
		Tags:         []string{},
		RemindTimes:  []string{},
		EnableRemind: true,
		MergeRemind:  false,
	}

	if in.IsCron() {
		cron, err := ParseCron(in.CronExpression)
		if err != nil {
			return nil, err
		}
		req.CronExpression = &cron
		return req, nil
	}

	times, err := ParseRemindTimes(in.RemindTimes)
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		times = append([]string(nil), DefaultRemindTimes...)
	}
	req.RemindTimes = times
	return req, nil
}

// ParseUpdate validates the edit form. Empty remind times leave the stored
// times unchanged.
func ParseUpdate(in Input) (*notes.UpdateRequest, error) {
	c, err := in.parseCommon()
	if err != nil {
		return nil, err
	}

	req := &notes.UpdateRequest{
		Title:        &c.title,
		Content:      &c.content,
		Category:     &c.category,
		Priority:     &c.priority,
		EnableRemind: &in.EnableRemind,
		MergeRemind:  &in.MergeRemind,
	}

	if in.IsCron() {
		cron, err := ParseCron(in.CronExpression)
		if err != nil {
			return nil, err
		}
		req.CronExpression = &cron
		return req, nil
	}

	times, err := ParseRemindTimes(in.RemindTimes)
	if err != nil {
		return nil, err
	}
	req.RemindTimes = times
	req.ClearCron = true
	return req, nil
}

// ParseCron checks the expression has exactly five whitespace-separated
// fields. Field contents are not validated.
func ParseCron(raw string) (string, error) {
	cron := strings.TrimSpace(raw)
	if cron == "" {
		return "", invalid("Please enter a cron expression")
	}
	if len(strings.Fields(cron)) != 5 {
		return "", invalid("Invalid cron expression: expected 5 fields (minute hour day month weekday)")
	}
	return cron, nil
}

// ParseRemindTimes splits a comma-separated list, dropping empty entries.
func ParseRemindTimes(raw string) ([]string, error) {
	times := []string{}
	for _, part := range strings.Split(raw, ",") {
		t := strings.TrimSpace(part)
		if t == "" {
			continue
		}
		if !ValidRemindTime(t) {
			return nil, invalid("Invalid time format: %s (use HH:MM, e.g. 08:10, 12:30, 20:00)", t)
		}
		times = append(times, t)
	}
	return times, nil
}

func ValidRemindTime(t string) bool {
	return remindTimePattern.MatchString(t)
}
