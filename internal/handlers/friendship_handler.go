package handlers

import (
	"errors"
	"strconv"

	"github.com/driftchat/DriftChat-backend/internal/httpx"
	"github.com/driftchat/DriftChat-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type FriendshipHandler struct {
	friendshipService *service.FriendshipService
}

func NewFriendshipHandler(friendshipService *service.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipService: friendshipService}
}

type friendRequestBody struct {
	UserID uint `json:"user_id"`
}

func (h *FriendshipHandler) SendRequest(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var body friendRequestBody
	if err := c.BodyParser(&body); err != nil || body.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	friendship, err := h.friendshipService.SendRequest(userID, body.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFriendshipExists):
			return httpx.Conflict(c, "friendship_exists", err.Error())
		case errors.Is(err, service.ErrFriendshipBlocked):
			return httpx.Conflict(c, "friendship_blocked", err.Error())
		default:
			return httpx.BadRequest(c, "friend_request_failed", err.Error())
		}
	}

	return c.Status(fiber.StatusCreated).JSON(friendship)
}

type respondBody struct {
	Accept bool `json:"accept"`
}

func (h *FriendshipHandler) Respond(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	friendshipID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_friendship_id", "Invalid friendship ID")
	}

	var body respondBody
	if err := c.BodyParser(&body); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	friendship, err := h.friendshipService.Respond(userID, uint(friendshipID), body.Accept)
	if err != nil {
		if errors.Is(err, service.ErrFriendshipNotFound) {
			return httpx.NotFound(c, "friendship_not_found", err.Error())
		}
		return httpx.BadRequest(c, "friendship_respond_failed", err.Error())
	}

	return c.JSON(friendship)
}

// Remove unfriends the user in the path. Route: DELETE /friends/:userId
func (h *FriendshipHandler) Remove(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	friendID, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil || friendID == 0 {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user ID")
	}

	if err := h.friendshipService.Remove(userID, uint(friendID)); err != nil {
		switch {
		case errors.Is(err, service.ErrFriendshipNotFound):
			return httpx.NotFound(c, "friendship_not_found", err.Error())
		case errors.Is(err, service.ErrNotFriends):
			return httpx.BadRequest(c, "not_friends", err.Error())
		default:
			return httpx.Internal(c, "remove_friend_failed")
		}
	}

	return c.JSON(fiber.Map{"removed": true})
}

func (h *FriendshipHandler) Block(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var body friendRequestBody
	if err := c.BodyParser(&body); err != nil || body.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	friendship, err := h.friendshipService.Block(userID, body.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFriendshipBlocked):
			return httpx.Conflict(c, "friendship_blocked", err.Error())
		case errors.Is(err, service.ErrSelfFriendship):
			return httpx.BadRequest(c, "self_block", err.Error())
		default:
			return httpx.BadRequest(c, "block_failed", err.Error())
		}
	}

	return c.JSON(friendship)
}

func (h *FriendshipHandler) Unblock(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var body friendRequestBody
	if err := c.BodyParser(&body); err != nil || body.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	if err := h.friendshipService.Unblock(userID, body.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrFriendshipNotFound):
			return httpx.NotFound(c, "block_not_found", err.Error())
		case errors.Is(err, service.ErrNotBlocker):
			return httpx.Forbidden(c, "not_blocker", err.Error())
		default:
			return httpx.Internal(c, "unblock_failed")
		}
	}

	return c.JSON(fiber.Map{"unblocked": true})
}

func (h *FriendshipHandler) ListBlocked(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	blocked, err := h.friendshipService.ListBlocked(userID)
	if err != nil {
		return httpx.Internal(c, "list_blocked_failed")
	}

	return c.JSON(fiber.Map{
		"blocked": blocked,
	})
}

func (h *FriendshipHandler) ListFriends(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	friends, err := h.friendshipService.ListFriends(userID)
	if err != nil {
		return httpx.Internal(c, "list_friends_failed")
	}

	return c.JSON(fiber.Map{
		"friends": friends,
	})
}

func (h *FriendshipHandler) ListPending(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	incoming, outgoing, err := h.friendshipService.ListPending(userID)
	if err != nil {
		return httpx.Internal(c, "list_pending_failed")
	}

	return c.JSON(fiber.Map{
		"incoming": incoming,
		"outgoing": outgoing,
	})
}
