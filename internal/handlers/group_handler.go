package handlers

import (
	"errors"
	"strconv"

	"github.com/driftchat/DriftChat-backend/internal/handlers/ws"
	"github.com/driftchat/DriftChat-backend/internal/httpx"
	"github.com/driftchat/DriftChat-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GroupHandler struct {
	groupService *service.GroupService
	hub          *ws.Hub
}

func NewGroupHandler(groupService *service.GroupService, hub *ws.Hub) *GroupHandler {
	return &GroupHandler{groupService: groupService, hub: hub}
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.CreateGroupInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	group, err := h.groupService.CreateGroup(userID, input)
	if err != nil {
		return httpx.BadRequest(c, "create_group_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *GroupHandler) GetMyGroups(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groups, err := h.groupService.GetUserGroups(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_groups_failed")
	}

	return c.JSON(fiber.Map{
		"groups": groups,
	})
}

func (h *GroupHandler) GetGroupMembers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	members, err := h.groupService.GetMembers(groupID, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotGroupMember) {
			return httpx.Forbidden(c, "not_group_member", err.Error())
		}
		return httpx.Internal(c, "fetch_members_failed")
	}

	return c.JSON(fiber.Map{
		"members": members,
	})
}

func (h *GroupHandler) JoinGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	notice, recipients, err := h.groupService.Join(groupID, userID)
	if err != nil {
		return h.groupError(c, "join_group_failed", err)
	}
	h.hub.FanOut(recipients, ws.EventNewMessage, notice)

	return c.JSON(fiber.Map{
		"message": "Joined group successfully",
	})
}

func (h *GroupHandler) LeaveGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	notice, recipients, err := h.groupService.Leave(groupID, userID)
	if err != nil {
		return h.groupError(c, "leave_group_failed", err)
	}
	h.hub.FanOut(recipients, ws.EventNewMessage, notice)

	return c.JSON(fiber.Map{
		"message": "Left group successfully",
	})
}

type memberActionBody struct {
	UserID uint `json:"user_id"`
}

func (h *GroupHandler) InviteMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	var body memberActionBody
	if err := c.BodyParser(&body); err != nil || body.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	notice, recipients, err := h.groupService.Invite(groupID, userID, body.UserID)
	if err != nil {
		return h.groupError(c, "invite_member_failed", err)
	}
	h.hub.FanOut(recipients, ws.EventNewMessage, notice)

	return c.JSON(fiber.Map{
		"message": "Member added successfully",
	})
}

func (h *GroupHandler) KickMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	var body memberActionBody
	if err := c.BodyParser(&body); err != nil || body.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	notice, recipients, err := h.groupService.Kick(groupID, userID, body.UserID)
	if err != nil {
		return h.groupError(c, "kick_member_failed", err)
	}
	h.hub.FanOut(recipients, ws.EventNewMessage, notice)

	return c.JSON(fiber.Map{
		"message": "Member removed successfully",
	})
}

func parseGroupID(c *fiber.Ctx) (uint, error) {
	id64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id64 == 0 {
		return 0, errors.New("invalid group id")
	}
	return uint(id64), nil
}

func (h *GroupHandler) groupError(c *fiber.Ctx, code string, err error) error {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		return httpx.NotFound(c, "group_not_found", err.Error())
	case errors.Is(err, service.ErrNotGroupMember):
		return httpx.Forbidden(c, "not_group_member", err.Error())
	case errors.Is(err, service.ErrGroupPermission):
		return httpx.Forbidden(c, "insufficient_role", err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		return httpx.Conflict(c, "already_member", err.Error())
	case errors.Is(err, service.ErrGroupNotJoinable):
		return httpx.Forbidden(c, "group_not_joinable", err.Error())
	default:
		return httpx.BadRequest(c, code, err.Error())
	}
}
