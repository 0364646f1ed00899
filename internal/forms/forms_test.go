package forms

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mrshanahan/notes-console/pkg/notes"
)

func validInput() Input {
	in := DefaultCreateInput()
	in.Title = "Water plants"
	in.Content = "Balcony and kitchen"
	return in
}

func TestValidRemindTime(t *testing.T) {
	cases := map[string]bool{
		"08:10":  true,
		"8:10":   true,
		"23:59":  true,
		"00:00":  true,
		"19:05":  true,
		"8:5":    false,
		"24:00":  false,
		"12:60":  false,
		"1230":   false,
		"ab:cd":  false,
		" 8:10":  false,
		"123:00": false,
	}
	for raw, want := range cases {
		if got := ValidRemindTime(raw); got != want {
			t.Fatalf("ValidRemindTime(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestParseCron_FieldCount(t *testing.T) {
	cases := map[string]bool{
		"0 9 * * 1":       true,
		"  0   9 * *\t1 ": true,
		"99 99 99 99 99":  true,
		"0 9 * *":         false,
		"0 9 * * 1 2024":  false,
		"":                false,
		"   ":             false,
	}
	for raw, ok := range cases {
		_, err := ParseCron(raw)
		if ok && err != nil {
			t.Fatalf("ParseCron(%q): unexpected error %v", raw, err)
		}
		if !ok {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ParseCron(%q): expected validation error, got %v", raw, err)
			}
		}
	}
}

func TestParseCreate_EmptyTimesUsesDefaults(t *testing.T) {
	in := validInput()
	in.RemindTimes = "  "

	req, err := ParseCreate(in)
	if err != nil {
		t.Fatalf("parse create: %v", err)
	}
	if strings.Join(req.RemindTimes, ",") != "08:10,12:30,20:00" {
		t.Fatalf("expected default remind times, got %v", req.RemindTimes)
	}

	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	times, _ := body["remind_times"].([]any)
	if len(times) != 3 || times[0] != "08:10" || times[1] != "12:30" || times[2] != "20:00" {
		t.Fatalf("unexpected payload remind_times: %v", body["remind_times"])
	}
	if body["cron_expression"] != nil {
		t.Fatalf("expected null cron in times mode, got %v", body["cron_expression"])
	}
}

func TestParseCreate_DefaultsDoNotAlias(t *testing.T) {
	in := validInput()
	in.RemindTimes = ""
	req, err := ParseCreate(in)
	if err != nil {
		t.Fatalf("parse create: %v", err)
	}
	req.RemindTimes[0] = "09:00"
	if DefaultRemindTimes[0] != "08:10" {
		t.Fatalf("default remind times were modified")
	}
}

func TestParseCreate_TrimsAndSplitsTimes(t *testing.T) {
	in := validInput()
	in.RemindTimes = " 7:30 ,, 21:00 ,"

	req, err := ParseCreate(in)
	if err != nil {
		t.Fatalf("parse create: %v", err)
	}
	if strings.Join(req.RemindTimes, "|") != "7:30|21:00" {
		t.Fatalf("unexpected times %v", req.RemindTimes)
	}
	if !req.EnableRemind || req.MergeRemind {
		t.Fatalf("expected new notes to enable reminders without merge")
	}
	if req.Tags == nil || len(req.Tags) != 0 {
		t.Fatalf("expected empty tags, got %v", req.Tags)
	}
}

func TestParseCreate_InvalidTimeReportsValue(t *testing.T) {
	in := validInput()
	in.RemindTimes = "08:10, 8:5"

	_, err := ParseCreate(in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(verr.Message, "8:5") {
		t.Fatalf("expected message to name the bad time, got %q", verr.Message)
	}
}

func TestParseCreate_RequiresTitleAndContent(t *testing.T) {
	for _, mutate := range []func(*Input){
		func(in *Input) { in.Title = "  " },
		func(in *Input) { in.Content = "" },
	} {
		in := validInput()
		mutate(&in)
		_, err := ParseCreate(in)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Message != "Please fill in title and content" {
			t.Fatalf("expected title/content message, got %v", err)
		}
	}
}

func TestParseCreate_Priority(t *testing.T) {
	for _, raw := range []string{"", "abc", "0", "6"} {
		in := validInput()
		in.Priority = raw
		if _, err := ParseCreate(in); err == nil {
			t.Fatalf("expected priority %q to be rejected", raw)
		}
	}
	in := validInput()
	in.Priority = "5"
	req, err := ParseCreate(in)
	if err != nil || req.Priority != 5 {
		t.Fatalf("expected priority 5, got %v (%v)", req, err)
	}
}

func TestParseCreate_CronMode(t *testing.T) {
	in := validInput()
	in.RemindType = RemindTypeCron
	in.CronExpression = " 30 7 * * 1-5 "

	req, err := ParseCreate(in)
	if err != nil {
		t.Fatalf("parse create: %v", err)
	}
	if req.CronExpression == nil || *req.CronExpression != "30 7 * * 1-5" {
		t.Fatalf("unexpected cron %v", req.CronExpression)
	}
	if len(req.RemindTimes) != 0 {
		t.Fatalf("expected no remind times in cron mode, got %v", req.RemindTimes)
	}

	in.CronExpression = "30 7 * *"
	if _, err := ParseCreate(in); err == nil {
		t.Fatalf("expected 4-field cron to be rejected")
	}
}

func TestParseCreate_EmptyCategoryDefaultsToTodo(t *testing.T) {
	in := validInput()
	in.Category = ""
	req, err := ParseCreate(in)
	if err != nil {
		t.Fatalf("parse create: %v", err)
	}
	if req.Category != notes.CategoryTodo {
		t.Fatalf("expected todo category, got %q", req.Category)
	}
}

func TestParseUpdate_EmptyTimesOmitted(t *testing.T) {
	in := validInput()
	in.RemindTimes = ""
	in.EnableRemind = false
	in.MergeRemind = true

	req, err := ParseUpdate(in)
	if err != nil {
		t.Fatalf("parse update: %v", err)
	}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := body["remind_times"]; ok {
		t.Fatalf("expected remind_times to be omitted, got %v", body["remind_times"])
	}
	if cron, ok := body["cron_expression"]; !ok || cron != nil {
		t.Fatalf("expected explicit null cron, got %v", cron)
	}
	if body["enable_remind"] != false || body["merge_remind"] != true {
		t.Fatalf("unexpected flags %v", body)
	}
	if body["title"] != "Water plants" {
		t.Fatalf("unexpected title %v", body["title"])
	}
}

func TestParseUpdate_CronMode(t *testing.T) {
	in := validInput()
	in.RemindType = RemindTypeCron
	in.CronExpression = "0 8 * * *"

	req, err := ParseUpdate(in)
	if err != nil {
		t.Fatalf("parse update: %v", err)
	}
	if req.CronExpression == nil || *req.CronExpression != "0 8 * * *" || req.ClearCron {
		t.Fatalf("unexpected cron update %+v", req)
	}
	if len(req.RemindTimes) != 0 {
		t.Fatalf("expected no remind times, got %v", req.RemindTimes)
	}
}

func TestParseUpdate_InvalidTimeBlocks(t *testing.T) {
	in := validInput()
	in.RemindTimes = "24:00"
	if _, err := ParseUpdate(in); err == nil {
		t.Fatalf("expected 24:00 to be rejected")
	}
}

func TestEditInput_PicksReminderMode(t *testing.T) {
	cronNote := &notes.Note{Title: "a", Content: "b", Priority: 2, CronExpression: "0 9 * * 1", RemindTimes: []string{"08:00"}}
	in := EditInput(cronNote)
	if !in.IsCron() || in.CronExpression != "0 9 * * 1" || in.RemindTimes != "" {
		t.Fatalf("expected cron mode, got %+v", in)
	}

	timesNote := &notes.Note{Title: "a", Content: "b", Priority: 4, RemindTimes: []string{"08:00", "18:30"}, EnableRemind: true}
	in = EditInput(timesNote)
	if in.IsCron() || in.RemindTimes != "08:00, 18:30" || in.Priority != "4" || !in.EnableRemind {
		t.Fatalf("expected times mode, got %+v", in)
	}
}

func TestEditInput_PriorityMatchesAnOption(t *testing.T) {
	cases := map[int]string{0: "3", -2: "3", 2: "2", 5: "5", 6: "5", 42: "5"}
	for stored, want := range cases {
		in := EditInput(&notes.Note{Title: "a", Content: "b", Priority: stored})
		if in.Priority != want {
			t.Fatalf("priority %d: expected %q, got %q", stored, want, in.Priority)
		}
		if _, err := ParseUpdate(in); err != nil {
			t.Fatalf("priority %d: pre-filled form does not validate: %v", stored, err)
		}
	}
}
