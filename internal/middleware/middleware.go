package middleware

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/lestrrat-go/jwx/jwt"

	"github.com/mrshanahan/notes-console/internal/utils"
	"github.com/mrshanahan/notes-console/pkg/notes"
)

type NoteLoader func(ctx context.Context, id string) (*notes.Note, error)

// ErrorHandler answers a request whose middleware step failed.
type ErrorHandler func(c *fiber.Ctx, err error) error

// LoadNoteFromRoute fetches the note named by the route parameter and stores
// it in c.Locals(localName).
func LoadNoteFromRoute(localName string, param string, load NoteLoader, onError ErrorHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.Param(c, param)
		if id == "" {
			return onError(c, errors.New("note ID required"))
		}
		found, err := load(c.UserContext(), id)
		if err != nil {
			slog.Warn("failed to retrieve note",
				"id", id,
				"err", err)
			return onError(c, err)
		}
		c.Locals(localName, found)
		return c.Next()
	}
}

// RequireCredential short-circuits data routes while no API token is stored.
func RequireCredential(authenticated func() bool, onMissing fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !authenticated() {
			return onMissing(c)
		}
		return c.Next()
	}
}

type TokenVerifier func(ctx context.Context, token string) (jwt.Token, error)

var bearerTokenPattern *regexp.Regexp = regexp.MustCompile(`^Bearer\s+(.*)$`)

// ValidateAccessToken accepts an operator token from the Authorization header
// or, for browsers, the access token cookie.
func ValidateAccessToken(localName string, cookieName string, verify TokenVerifier, onInvalid fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tokenStr string
		if authHeaderValue := c.Get(fiber.HeaderAuthorization); authHeaderValue == "" {
			tokenStr = c.Cookies(cookieName)
		} else {
			match := bearerTokenPattern.FindStringSubmatch(authHeaderValue)
			if match == nil {
				return onInvalid(c)
			}
			tokenStr = match[1]
		}

		token, err := verify(c.UserContext(), tokenStr)
		if err != nil {
			slog.Debug("operator token rejected", "path", c.Path(), "err", err)
			return onInvalid(c)
		}
		c.Locals(localName, token)
		return c.Next()
	}
}
