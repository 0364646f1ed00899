package console

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/notes-console/internal/credentials"
	"github.com/mrshanahan/notes-console/internal/forms"
	"github.com/mrshanahan/notes-console/internal/middleware"
	"github.com/mrshanahan/notes-console/internal/notes"
	"github.com/mrshanahan/notes-console/internal/render"
	"github.com/mrshanahan/notes-console/pkg/client"
)

const (
	PromptMessage   = "Enter the API token and press Start to load notes"
	LoadingMessage  = "Loading..."
	EmptyMessage    = "No notes yet"
	NoMatchMessage  = "No matching notes"
	FlashCookieName = "console_flash"
	NoteLocalName   = "note"

	flashSuccess = "success"
	flashError   = "error"
)

const DefaultStartupTimeout = 30 * time.Second

type Config struct {
	Client       *client.Client
	Credentials  *credentials.Store
	Renderer     *render.Renderer
	LoginEnabled bool
	// StartupTimeout bounds the first refresh. Zero means DefaultStartupTimeout.
	StartupTimeout time.Duration
}

// Console serves the admin pages. Every backend call goes through the client
// with the currently stored token.
type Console struct {
	client       *client.Client
	credentials  *credentials.Store
	renderer     *render.Renderer
	store        *Store
	loginEnabled bool

	startupTimeout time.Duration
	ready          chan struct{}
	// refreshMu orders refreshes so the last one started is the one shown.
	refreshMu sync.Mutex
}

func New(config Config) *Console {
	startupTimeout := config.StartupTimeout
	if startupTimeout <= 0 {
		startupTimeout = DefaultStartupTimeout
	}
	return &Console{
		client:         config.Client,
		credentials:    config.Credentials,
		renderer:       config.Renderer,
		store:          NewStore(),
		loginEnabled:   config.LoginEnabled,
		startupTimeout: startupTimeout,
		ready:          make(chan struct{}),
	}
}

func (con *Console) Store() *Store {
	return con.store
}

// Start loads the persisted token and, when one exists, fills the cache in
// the background so the server can listen meanwhile. Ready is closed once
// that first refresh has finished. A failed first refresh is shown in the
// list rather than returned. Start must be called once.
func (con *Console) Start(ctx context.Context) error {
	found, err := con.credentials.Load(ctx)
	if err != nil {
		close(con.ready)
		return fmt.Errorf("failed to load API token: %w", err)
	}
	if !found {
		slog.Info("no API token stored; waiting for operator to provide one")
		close(con.ready)
		return nil
	}

	con.store.SetLoading(true)
	go func() {
		defer close(con.ready)
		refreshCtx, cancel := context.WithTimeout(ctx, con.startupTimeout)
		defer cancel()
		con.refresh(refreshCtx)
		con.store.SetLoading(false)
	}()
	return nil
}

func (con *Console) Ready() <-chan struct{} {
	return con.ready
}

func (con *Console) Register(router fiber.Router) {
	router.Get("/", con.Index)
	router.Post("/token", con.SaveToken)
	router.Post("/token/clear", con.ClearToken)
	router.Post("/edit/close", con.CloseEdit)

	guard := middleware.RequireCredential(con.credentials.Authenticated, con.promptForToken)
	loadNote := middleware.LoadNoteFromRoute(NoteLocalName, "noteID", con.loadNote, con.noteLoadFailed)

	router.Post("/refresh", guard, con.Refresh)
	router.Post("/filter/:filter", guard, con.SetFilter)
	router.Get("/search", guard, con.Search)
	router.Post("/notes", guard, con.CreateNote)
	router.Get("/notes/:noteID/edit", guard, loadNote, con.OpenEdit)
	router.Post("/notes/:noteID", guard, con.UpdateNote)
	router.Get("/notes/:noteID/delete", guard, con.ConfirmDelete)
	router.Post("/notes/:noteID/delete", guard, con.DeleteNote)
	router.Post("/notes/:noteID/remind", guard, con.ToggleReminder)
	router.Post("/notes/:noteID/merge", guard, con.ToggleMergeRemind)
	router.Post("/push/test", guard, con.TestPush)
	router.Get("/push/now", guard, con.ConfirmPushNow)
	router.Post("/push/now", guard, con.PushNow)
}

func (con *Console) api() *client.Client {
	return con.client.WithToken(con.credentials.Token())
}

// refresh replaces the cache from the backend and records the outcome for
// the list area.
func (con *Console) refresh(ctx context.Context) error {
	con.refreshMu.Lock()
	defer con.refreshMu.Unlock()

	err := con.store.Cache.Refresh(ctx, con.api())
	con.store.SetLoadError(err)
	if err != nil {
		slog.Warn("failed to refresh notes", "err", err)
		return err
	}
	slog.Info("refreshed notes", "count", con.store.Cache.Len())
	return nil
}

func (con *Console) page(flash *render.Flash) render.Page {
	authenticated := con.credentials.Authenticated()
	view := con.store.Cache.View()
	page := render.Page{
		Authenticated: authenticated,
		LoginEnabled:  con.loginEnabled,
		APIURL:        con.client.URL,
		Flash:         flash,
		Filter:        string(view.Filter),
		Keyword:       view.Keyword,
		List:          con.list(authenticated, view),
		Create:        forms.DefaultCreateInput(),
	}
	if id, in, ok := con.store.Edit(); ok && authenticated {
		page.Edit = &render.Edit{ID: id, Input: in}
	}
	return page
}

func (con *Console) list(authenticated bool, view notes.View) render.List {
	if !authenticated {
		return render.List{Message: PromptMessage}
	}
	if con.store.Loading() {
		return render.List{Message: LoadingMessage}
	}
	if err := con.store.LoadError(); err != nil {
		return render.List{Message: "Failed to load data: " + err.Error()}
	}
	if view.Total == 0 {
		return render.List{Message: EmptyMessage}
	}
	if len(view.Notes) == 0 {
		return render.List{Message: NoMatchMessage}
	}
	return render.List{Cards: con.renderer.Cards(view.Notes)}
}

func (con *Console) sendPage(c *fiber.Ctx, status int, page render.Page) error {
	body, err := con.renderer.RenderPage(page)
	if err != nil {
		slog.Error("failed to render page",
			"path", c.Path(),
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(body)
}

func home(c *fiber.Ctx) error {
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Flash messages survive exactly one redirect in a cookie.

func setFlash(c *fiber.Ctx, kind string, message string) {
	raw, err := json.Marshal(render.Flash{Kind: kind, Message: message})
	if err != nil {
		slog.Error("failed to encode flash message", "err", err)
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func takeFlash(c *fiber.Ctx) *render.Flash {
	value := c.Cookies(FlashCookieName)
	if value == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	flash := &render.Flash{}
	if err := json.Unmarshal(raw, flash); err != nil || flash.Message == "" {
		return nil
	}
	return flash
}
