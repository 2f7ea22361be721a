package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/driftchat/DriftChat-backend/internal/handlers/ws"
	"github.com/driftchat/DriftChat-backend/internal/httpx"
	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"github.com/driftchat/DriftChat-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService       *service.UserService
	userRepo          repository.UserRepositoryInterface
	friendshipService *service.FriendshipService
	presence          *ws.PresenceBroadcaster
}

func NewUserHandler(
	userService *service.UserService,
	userRepo repository.UserRepositoryInterface,
	friendshipService *service.FriendshipService,
	presence *ws.PresenceBroadcaster,
) *UserHandler {
	return &UserHandler{
		userService:       userService,
		userRepo:          userRepo,
		friendshipService: friendshipService,
		presence:          presence,
	}
}

// GetCurrentUser gets the authenticated user's profile
func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	user, err := h.userRepo.FindByID(userID)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	// ETag allows clients to re-check frequently without re-downloading.
	etag := fmt.Sprintf("W/\"u-%d-%d\"", user.ID, user.UpdatedAt.UTC().UnixNano())
	c.Set("ETag", etag)
	c.Set("Cache-Control", "private, max-age=0, must-revalidate")

	if inm := strings.TrimSpace(c.Get("If-None-Match")); inm != "" {
		// Support quoted, weak, and multi-value headers.
		inmNorm := strings.Trim(strings.TrimPrefix(inm, "W/"), "\"")
		etagNorm := strings.Trim(strings.TrimPrefix(etag, "W/"), "\"")
		if strings.Contains(inmNorm, etagNorm) {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}

	return c.JSON(fiber.Map{
		"user": user.ToResponse(),
	})
}

// UpdateProfile updates nickname and bio
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(userID, input)
	if err != nil {
		return httpx.BadRequest(c, "update_profile_failed", err.Error())
	}

	return c.JSON(fiber.Map{
		"user": user,
	})
}

type setStatusRequest struct {
	Status models.UserStatus `json:"status"`
}

// SetStatus lets a connected user pick online/away/busy; the transition is
// pushed to accepted friends like any other presence change. Offline cannot
// be set here, and a user without a live WebSocket session cannot change
// presence at all.
func (h *UserHandler) SetStatus(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req setStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if !models.ValidUserStatus(req.Status) {
		return httpx.BadRequest(c, "invalid_status", "Status must be online, away, or busy")
	}

	if err := h.presence.SetManualStatus(userID, req.Status); err != nil {
		switch {
		case errors.Is(err, ws.ErrStatusReserved):
			return httpx.BadRequest(c, "status_reserved", "Offline is set by disconnecting")
		case errors.Is(err, ws.ErrNoActiveSession):
			return httpx.Conflict(c, "no_active_session", "Connect before changing your status")
		default:
			return httpx.Internal(c, "set_status_failed")
		}
	}

	return c.JSON(fiber.Map{
		"status": req.Status,
	})
}

// SearchUsers searches for users by username or nickname
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	query := c.Query("q")
	if query == "" {
		return httpx.BadRequest(c, "missing_query", "Search query is required")
	}

	limit := c.QueryInt("limit", 20)
	users, err := h.userService.SearchUsers(userID, query, limit)
	if err != nil {
		return httpx.Internal(c, "search_users_failed")
	}

	return c.JSON(fiber.Map{
		"users": users,
	})
}

// GetUser gets a user's public profile by ID, with the friendship standing
// between the caller and that user.
// Route: GET /users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	callerID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	id64, err := strconv.ParseUint(strings.TrimSpace(c.Params("id")), 10, 32)
	if err != nil || id64 == 0 {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user ID")
	}

	user, err := h.userService.GetProfile(uint(id64))
	if err != nil {
		return httpx.NotFound(c, "user_not_found", "User not found")
	}

	isFriend := false
	if callerID != uint(id64) {
		isFriend, err = h.friendshipService.AreFriends(callerID, uint(id64))
		if err != nil {
			return httpx.Internal(c, "get_user_failed")
		}
	}

	return c.JSON(fiber.Map{
		"user":      user,
		"is_friend": isFriend,
	})
}
