package notes

import "encoding/json"

const (
	CategoryTodo  = "todo"
	CategoryWork  = "work"
	CategoryStudy = "study"
	CategoryLife  = "life"
	CategoryOther = "other"

	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = 3
)

var Categories = []string{CategoryTodo, CategoryWork, CategoryStudy, CategoryLife, CategoryOther}

type Note struct {
	ID             string    `json:"note_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	Priority       int       `json:"priority"`
	Tags           []string  `json:"tags"`
	RemindTimes    []string  `json:"remind_times"`
	CronExpression string    `json:"cron_expression"`
	EnableRemind   bool      `json:"enable_remind"`
	MergeRemind    bool      `json:"merge_remind"`
	CreatedAt      Timestamp `json:"created_at"`
	UpdatedAt      Timestamp `json:"updated_at"`
}

// ClampPriority maps a stored priority onto the 1-5 scale. Unset or
// non-positive values become DefaultPriority.
func ClampPriority(priority int) int {
	if priority < MinPriority {
		return DefaultPriority
	}
	if priority > MaxPriority {
		return MaxPriority
	}
	return priority
}

// HasCron reports whether the note is scheduled by cron expression rather
// than by fixed remind times.
func (n *Note) HasCron() bool {
	return n.CronExpression != ""
}

// CreateRequest is the body of POST /api/notes. CronExpression is sent as
// null when the note uses fixed remind times.
type CreateRequest struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Category       string   `json:"category"`
	Priority       int      `json:"priority"`
	Tags           []string `json:"tags"`
	RemindTimes    []string `json:"remind_times"`
	CronExpression *string  `json:"cron_expression"`
	EnableRemind   bool     `json:"enable_remind"`
	MergeRemind    bool     `json:"merge_remind"`
}

// UpdateRequest is the body of PUT /api/notes/{id}. Only non-nil fields are
// sent, so the same type serves full edits and single-field toggles.
// ClearCron sends an explicit null cron_expression, which switches a note
// back to fixed remind times.
type UpdateRequest struct {
	Title          *string
	Content        *string
	Category       *string
	Priority       *int
	Tags           []string
	RemindTimes    []string
	CronExpression *string
	ClearCron      bool
	EnableRemind   *bool
	MergeRemind    *bool
}

func (u UpdateRequest) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if u.Title != nil {
		fields["title"] = *u.Title
	}
	if u.Content != nil {
		fields["content"] = *u.Content
	}
	if u.Category != nil {
		fields["category"] = *u.Category
	}
	if u.Priority != nil {
		fields["priority"] = *u.Priority
	}
	if u.Tags != nil {
		fields["tags"] = u.Tags
	}
	if len(u.RemindTimes) > 0 {
		fields["remind_times"] = u.RemindTimes
	}
	if u.CronExpression != nil {
		fields["cron_expression"] = *u.CronExpression
	} else if u.ClearCron {
		fields["cron_expression"] = nil
	}
	if u.EnableRemind != nil {
		fields["enable_remind"] = *u.EnableRemind
	}
	if u.MergeRemind != nil {
		fields["merge_remind"] = *u.MergeRemind
	}
	return json.Marshal(fields)
}
