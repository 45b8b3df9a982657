package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses by endpoint
// unless the handler already set one. A cell never changes for a given
// hash, and a numbered word-list version is immutable.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case c.Response().StatusCode() >= 400:
			ttl = "no-store"

		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/cells/"), path == "/v1/precisions":
			ttl = "public, max-age=86400, immutable"

		case strings.HasPrefix(path, "/v1/wordlists/") && c.Query("version") != "":
			ttl = "public, max-age=86400"

		case strings.HasPrefix(path, "/v1/wordlists"):
			ttl = "public, max-age=60" // latest version may move

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
