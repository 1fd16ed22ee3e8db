package server

import (
	"firenet/internal/models"
	"firenet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/user/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	res, err := s.userService.Signup(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, res)
}

// Login handles POST /api/user/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	res, err := s.userService.Login(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, res)
}

// GetAuthenticatedUser handles GET /api/user
func (s *Server) GetAuthenticatedUser(c *fiber.Ctx) error {
	return models.RespondWithData(c, fiber.StatusOK, identityFrom(c))
}
