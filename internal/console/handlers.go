package console

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/notes-console/internal/credentials"
	"github.com/mrshanahan/notes-console/internal/forms"
	"github.com/mrshanahan/notes-console/internal/notes"
	"github.com/mrshanahan/notes-console/internal/render"
	"github.com/mrshanahan/notes-console/internal/utils"
	model "github.com/mrshanahan/notes-console/pkg/notes"
)

func (con *Console) Index(c *fiber.Ctx) error {
	return con.sendPage(c, fiber.StatusOK, con.page(takeFlash(c)))
}

// Credential

func (con *Console) SaveToken(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := con.credentials.Save(ctx, c.FormValue("token")); err != nil {
		if errors.Is(err, credentials.ErrEmptyToken) {
			setFlash(c, flashError, "Please enter the API token")
		} else {
			slog.Error("failed to save API token", "err", err)
			setFlash(c, flashError, "Failed to save token: "+err.Error())
		}
		return home(c)
	}

	setFlash(c, flashSuccess, "Settings saved")
	con.store.CloseEdit()
	con.refresh(ctx)
	return home(c)
}

func (con *Console) ClearToken(c *fiber.Ctx) error {
	if err := con.credentials.Clear(c.UserContext()); err != nil {
		slog.Error("failed to remove API token", "err", err)
		setFlash(c, flashError, "Failed to remove token: "+err.Error())
		return home(c)
	}
	con.store.Reset()
	setFlash(c, flashSuccess, "Token removed")
	return home(c)
}

func (con *Console) promptForToken(c *fiber.Ctx) error {
	setFlash(c, flashError, PromptMessage)
	return home(c)
}

// List view

func (con *Console) Refresh(c *fiber.Ctx) error {
	con.refresh(c.UserContext())
	return home(c)
}

func (con *Console) SetFilter(c *fiber.Ctx) error {
	raw := utils.Param(c, "filter")
	filter, err := notes.ParseFilter(raw)
	if err != nil {
		setFlash(c, flashError, "Unknown filter: "+raw)
		return home(c)
	}
	con.store.Cache.SetFilter(filter)
	return home(c)
}

func (con *Console) Search(c *fiber.Ctx) error {
	con.store.Cache.SetKeyword(c.Query("q"))
	return home(c)
}

// Create and edit

func readInput(c *fiber.Ctx) forms.Input {
	return forms.Input{
		Title:          c.FormValue("title"),
		Content:        c.FormValue("content"),
		Category:       c.FormValue("category"),
		Priority:       c.FormValue("priority"),
		RemindType:     c.FormValue("remind_type"),
		RemindTimes:    c.FormValue("remind_times"),
		CronExpression: c.FormValue("cron_expression"),
		EnableRemind:   c.FormValue("enable_remind") == "on",
		MergeRemind:    c.FormValue("merge_remind") == "on",
	}
}

// invalid re-renders the page with the operator's input kept and the
// validation message shown. Nothing has been sent to the backend.
func (con *Console) invalid(c *fiber.Ctx, err error, keep func(page *render.Page)) error {
	message := err.Error()
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		message = verr.Message
	}
	page := con.page(&render.Flash{Kind: flashError, Message: message})
	keep(&page)
	return con.sendPage(c, fiber.StatusUnprocessableEntity, page)
}

func (con *Console) CreateNote(c *fiber.Ctx) error {
	in := readInput(c)
	req, err := forms.ParseCreate(in)
	if err != nil {
		return con.invalid(c, err, func(page *render.Page) { page.Create = in })
	}

	ctx := c.UserContext()
	if err := con.api().CreateNote(ctx, req); err != nil {
		slog.Warn("failed to create note", "title", req.Title, "err", err)
		setFlash(c, flashError, "Create failed: "+err.Error())
		return home(c)
	}
	setFlash(c, flashSuccess, "Created")
	con.refresh(ctx)
	return home(c)
}

func (con *Console) loadNote(ctx context.Context, id string) (*model.Note, error) {
	return con.api().GetNote(ctx, id)
}

func (con *Console) noteLoadFailed(c *fiber.Ctx, err error) error {
	setFlash(c, flashError, "Failed to load note: "+err.Error())
	return home(c)
}

func (con *Console) OpenEdit(c *fiber.Ctx) error {
	note := c.Locals(NoteLocalName).(*model.Note)
	con.store.OpenEdit(utils.Param(c, "noteID"), forms.EditInput(note))
	return home(c)
}

func (con *Console) CloseEdit(c *fiber.Ctx) error {
	con.store.CloseEdit()
	return home(c)
}

func (con *Console) UpdateNote(c *fiber.Ctx) error {
	id := utils.Param(c, "noteID")
	in := readInput(c)
	req, err := forms.ParseUpdate(in)
	if err != nil {
		return con.invalid(c, err, func(page *render.Page) {
			page.Edit = &render.Edit{ID: id, Input: in}
		})
	}

	ctx := c.UserContext()
	if err := con.api().UpdateNote(ctx, id, req); err != nil {
		slog.Warn("failed to update note", "id", id, "err", err)
		con.store.OpenEdit(id, in)
		setFlash(c, flashError, "Update failed: "+err.Error())
		return home(c)
	}
	con.store.CloseEdit()
	setFlash(c, flashSuccess, "Updated")
	con.refresh(ctx)
	return home(c)
}

// Delete

func deletePath(id string) string {
	return "/notes/" + url.PathEscape(id) + "/delete"
}

func (con *Console) ConfirmDelete(c *fiber.Ctx) error {
	page := con.page(takeFlash(c))
	page.Confirm = &render.Confirm{
		Action:  deletePath(utils.Param(c, "noteID")),
		Message: "Delete this note?",
		Label:   "Delete",
	}
	return con.sendPage(c, fiber.StatusOK, page)
}

func (con *Console) DeleteNote(c *fiber.Ctx) error {
	id := utils.Param(c, "noteID")
	if c.FormValue("confirm") != "yes" {
		return c.Redirect(deletePath(id), fiber.StatusSeeOther)
	}

	ctx := c.UserContext()
	if err := con.api().DeleteNote(ctx, id); err != nil {
		slog.Warn("failed to delete note", "id", id, "err", err)
		setFlash(c, flashError, "Delete failed: "+err.Error())
		return home(c)
	}
	if editID, _, ok := con.store.Edit(); ok && editID == id {
		con.store.CloseEdit()
	}
	setFlash(c, flashSuccess, "Deleted")
	con.refresh(ctx)
	return home(c)
}

// Toggles

func (con *Console) ToggleReminder(c *fiber.Ctx) error {
	return con.toggle(c, "enable", func(v bool) *model.UpdateRequest {
		return &model.UpdateRequest{EnableRemind: &v}
	})
}

func (con *Console) ToggleMergeRemind(c *fiber.Ctx) error {
	return con.toggle(c, "merge", func(v bool) *model.UpdateRequest {
		return &model.UpdateRequest{MergeRemind: &v}
	})
}

// toggle sends a single-field update and refreshes only on success.
func (con *Console) toggle(c *fiber.Ctx, field string, build func(bool) *model.UpdateRequest) error {
	id := utils.Param(c, "noteID")
	value, err := strconv.ParseBool(c.FormValue(field))
	if err != nil {
		setFlash(c, flashError, "Operation failed: invalid "+field+" value")
		return home(c)
	}

	ctx := c.UserContext()
	if err := con.api().UpdateNote(ctx, id, build(value)); err != nil {
		slog.Warn("failed to toggle reminder setting",
			"id", id,
			"field", field,
			"err", err)
		setFlash(c, flashError, "Operation failed: "+err.Error())
		return home(c)
	}
	con.refresh(ctx)
	return home(c)
}

// Push

func (con *Console) TestPush(c *fiber.Ctx) error {
	if err := con.api().TestPush(c.UserContext()); err != nil {
		setFlash(c, flashError, "Test push failed: "+err.Error())
		return home(c)
	}
	setFlash(c, flashSuccess, "Test push sent, check your notifications")
	return home(c)
}

func (con *Console) ConfirmPushNow(c *fiber.Ctx) error {
	page := con.page(takeFlash(c))
	page.Confirm = &render.Confirm{
		Action:  "/push/now",
		Message: "Push today's notes now?",
		Label:   "Push now",
	}
	return con.sendPage(c, fiber.StatusOK, page)
}

func (con *Console) PushNow(c *fiber.Ctx) error {
	if c.FormValue("confirm") != "yes" {
		return c.Redirect("/push/now", fiber.StatusSeeOther)
	}
	if err := con.api().PushNow(c.UserContext()); err != nil {
		setFlash(c, flashError, "Push failed: "+err.Error())
		return home(c)
	}
	setFlash(c, flashSuccess, "Push sent")
	return home(c)
}
