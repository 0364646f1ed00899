package auth

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/notes-console/internal/cache"
	"github.com/mrshanahan/notes-console/pkg/auth"
)

const AccessTokenCookieName = "access_token"

// Authenticator gates the console behind the operator's OIDC provider.
type Authenticator struct {
	config    *auth.Config
	nonces    *cache.TimedCache[string]
	fetchKeys KeySetFetcher
}

func NewAuthenticator(config *auth.Config) *Authenticator {
	return &Authenticator{
		config:    config,
		nonces:    cache.NewTimedCache[string](5*time.Minute, 100),
		fetchKeys: fetchKeySet,
	}
}

func (a *Authenticator) createNonce() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	nonce := base64.RawURLEncoding.EncodeToString(randomBytes)
	a.nonces.Insert(nonce)
	return nonce, nil
}

// LoginURL returns the console path that starts a login and comes back to
// cameFrom afterwards.
func LoginURL(cameFrom string) string {
	if cameFrom == "" {
		return "/auth/login"
	}
	return "/auth/login?came_from=" + base64.URLEncoding.EncodeToString([]byte(cameFrom))
}

func (a *Authenticator) Login(c *fiber.Ctx) error {
	var cameFrom string
	if cameFromParam := c.Query("came_from"); cameFromParam != "" {
		if cameFromBytes, err := base64.URLEncoding.DecodeString(cameFromParam); err == nil {
			cameFrom = localPath(string(cameFromBytes))
		}
	}

	nonce, err := a.createNonce()
	if err != nil {
		slog.Error("failed to create login nonce", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	state := &auth.State{CameFrom: cameFrom}
	stateParam, err := state.Encode(nonce)
	if err != nil {
		slog.Error("failed to encode login state", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Redirect(a.config.LoginConfig.AuthCodeURL(stateParam), fiber.StatusSeeOther)
}

func (a *Authenticator) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return c.SendString("Logout successful")
}

func (a *Authenticator) Callback(c *fiber.Ctx) error {
	state, nonce, err := auth.ParseState(c.Query("state"))
	if err != nil {
		c.Status(fiber.StatusUnauthorized)
		return c.SendString("state is invalid: " + err.Error())
	}
	if _, ok := a.nonces.GetAndRemove(nonce); !ok {
		c.Status(fiber.StatusUnauthorized)
		return c.SendString("state is invalid: nonce not found in cache")
	}

	token, err := a.config.LoginConfig.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		slog.Warn("code-token exchange failed", "err", err)
		c.Status(fiber.StatusUnauthorized)
		return c.SendString("Code-Token Exchange Failed")
	}

	if _, err := a.VerifyToken(c.UserContext(), token.AccessToken); err != nil {
		slog.Warn("access token from provider failed verification", "err", err)
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookieName,
		Value:    token.AccessToken,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	target := "/"
	if state.CameFrom != "" {
		target = state.CameFrom
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}

// localPath keeps redirects on the console itself.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	return p
}
