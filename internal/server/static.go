package server

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// setupStatic serves the built client and falls back to its index.html for
// client-side routes.
func (s *Server) setupStatic(app *fiber.App) {
	dir := s.config.StaticDir
	index := filepath.Join(dir, "index.html")

	app.Static("/", dir, fiber.Static{
		Index:    "index.html",
	})
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Next()
		}
		return c.SendFile(index)
	})
}
