package utils

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

func Any[T any](xs []T, pred func(x T) bool) bool {
	for _, x := range xs {
		if pred(x) {
			return true
		}
	}
	return false
}

// Param returns the route parameter with any percent-encoding removed. Note
// IDs are escaped when they are put into console links.
func Param(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return unescaped
}
