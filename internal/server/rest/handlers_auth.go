package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/and161185/task-keeper/internal/model"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

func newAuthResponse(tok model.AuthToken, u *model.User) authResponse {
	return authResponse{
		Token:     tok.AccessToken,
		TokenType: "Bearer",
		Username:  u.Username,
		Email:     u.Email,
	}
}

// handleRegister creates an account and returns a token (registration implies
// login).
func (s *Server) handleRegister(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	tok, u, err := s.auth.Register(c.UserContext(), body.Username, body.Email, body.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newAuthResponse(tok, u))
}

// handleLogin authenticates by username and password.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	tok, u, err := s.auth.Login(c.UserContext(), body.Username, body.Password)
	if err != nil {
		return err
	}
	return c.JSON(newAuthResponse(tok, u))
}
