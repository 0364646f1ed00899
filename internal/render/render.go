package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/mrshanahan/notes-console/internal/forms"
	"github.com/mrshanahan/notes-console/pkg/notes"
)

//go:embed templates/*.html
var templateFS embed.FS

const TimestampLayout = "2006-01-02 15:04:05"

// Card is the display form of one note.
type Card struct {
	ID            string
	Title         string
	Content       string
	BadgeClass    string
	CategoryLabel string
	Timestamp     string
	Stars         string
	Enabled       bool
	Schedule      string
	Merged        bool
	Tags          []string
}

// List is the note list area: either cards or a single status message.
type List struct {
	Cards   []Card
	Message string
}

type Flash struct {
	Kind    string
	Message string
}

type Edit struct {
	ID    string
	Input forms.Input
}

// Confirm asks the operator to confirm a destructive or outward action by
// re-posting to Action with confirm=yes.
type Confirm struct {
	Action  string
	Message string
	Label   string
}

type Page struct {
	Authenticated bool
	LoginEnabled  bool
	APIURL        string
	Flash         *Flash
	Filter        string
	Keyword       string
	List          List
	Create        forms.Input
	Edit          *Edit
	Confirm       *Confirm
	Categories    []string
}

type Renderer struct {
	tmpl     *template.Template
	location *time.Location
}

// New parses the embedded templates. Timestamps are shown in loc, or the
// local zone when loc is nil.
func New(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.Local
	}
	t := template.New("").Funcs(template.FuncMap{
		"pathEscape": url.PathEscape,
		"priorities": func() []string { return []string{"1", "2", "3", "4", "5"} },
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("dict requires even number of arguments")
			}
			out := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				out[key] = values[i+1]
			}
			return out, nil
		},
	})
	t, err := t.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: t, location: loc}, nil
}

func MustNew(loc *time.Location) *Renderer {
	r, err := New(loc)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Card(n *notes.Note) Card {
	category := n.Category
	badge, label := category, category
	if badge == "" {
		badge = notes.CategoryTodo
	}
	if label == "" {
		label = notes.CategoryOther
	}
	return Card{
		ID:            n.ID,
		Title:         n.Title,
		Content:       n.Content,
		BadgeClass:    "badge badge-" + badge,
		CategoryLabel: label,
		Timestamp:     r.formatNoteTime(n.CreatedAt),
		Stars:         Stars(n.Priority),
		Enabled:       n.EnableRemind,
		Schedule:      Schedule(n),
		Merged:        n.MergeRemind,
		Tags:          n.Tags,
	}
}

func (r *Renderer) Cards(list []*notes.Note) []Card {
	cards := make([]Card, 0, len(list))
	for _, n := range list {
		cards = append(cards, r.Card(n))
	}
	return cards
}

func (r *Renderer) FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(r.location).Format(TimestampLayout)
}

// formatNoteTime shows zone-less backend values as they were sent and
// converts the rest to the renderer's location.
func (r *Renderer) formatNoteTime(ts notes.Timestamp) string {
	if ts.WallClock() && !ts.IsZero() {
		return ts.Format(TimestampLayout)
	}
	return r.FormatTimestamp(ts.Time)
}

// Stars renders priority as a star count. Unset priorities show as the
// default priority.
func Stars(priority int) string {
	return strings.Repeat("⭐", notes.ClampPriority(priority))
}

// Schedule summarises the reminder schedule: the cron expression when set,
// otherwise the joined remind times, otherwise nothing.
func Schedule(n *notes.Note) string {
	if n.HasCron() {
		return "Cron: " + n.CronExpression
	}
	if len(n.RemindTimes) > 0 {
		return strings.Join(n.RemindTimes, ", ")
	}
	return ""
}

func (r *Renderer) writeCard(w io.Writer, n *notes.Note) error {
	return r.tmpl.ExecuteTemplate(w, "card", r.Card(n))
}

func (r *Renderer) writeList(w io.Writer, list List) error {
	return r.tmpl.ExecuteTemplate(w, "list", list)
}

func (r *Renderer) WritePage(w io.Writer, page Page) error {
	if page.Categories == nil {
		page.Categories = notes.Categories
	}
	return r.tmpl.ExecuteTemplate(w, "page", page)
}

// RenderPage renders into memory so that a template failure never leaves a
// half-written response.
func (r *Renderer) RenderPage(page Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WritePage(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
