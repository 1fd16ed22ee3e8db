package server

import (
	"firenet/internal/middleware"
	"firenet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// MsgMalformedBody is returned when a request body is not valid JSON.
const MsgMalformedBody = "Malformed request body"

// setIdentity stores the verified caller on the request.
func setIdentity(c *fiber.Ctx, ident *models.Identity) {
	c.Locals("identity", ident)
	c.Locals("userHandle", ident.Handle)
	c.SetUserContext(middleware.WithUserHandle(c.UserContext(), ident.Handle))
}

// identityFrom returns the caller resolved by AuthRequired or OptionalAuth,
// or nil for anonymous requests.
func identityFrom(c *fiber.Ctx) *models.Identity {
	ident, _ := c.Locals("identity").(*models.Identity)
	return ident
}

// parseBody decodes the JSON request body into dst. On failure it writes a
// 400 envelope and reports false; the caller should return nil.
func parseBody(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, models.RespondWithAppError(c, models.NewValidationError(MsgMalformedBody))
	}
	return true, nil
}
