package handlers

import (
	"github.com/driftchat/DriftChat-backend/internal/httpx"
	"github.com/driftchat/DriftChat-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" || input.Username == "" {
		return httpx.BadRequest(c, "missing_fields", "Email, username, and password are required")
	}

	result, err := h.authService.Register(input)
	if err != nil {
		return httpx.BadRequest(c, "registration_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_fields", "Email and password are required")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		return httpx.Unauthorized(c, "invalid_credentials", err.Error())
	}

	return c.JSON(result)
}
