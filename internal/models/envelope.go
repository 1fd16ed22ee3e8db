package models

import "github.com/gofiber/fiber/v2"

// Envelope is the body shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

// RespondWithData writes a successful envelope carrying data.
func RespondWithData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

// RespondWithMessage writes a successful envelope carrying only a message.
func RespondWithMessage(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Envelope{Success: true, Msg: msg})
}
