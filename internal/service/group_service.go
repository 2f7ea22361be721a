package service

import (
	"errors"
	"fmt"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"github.com/driftchat/DriftChat-backend/internal/validation"
)

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrNotGroupMember   = errors.New("not an active member of this group")
	ErrGroupPermission  = errors.New("insufficient group role")
	ErrAlreadyMember    = errors.New("already an active member")
	ErrGroupNotJoinable = errors.New("group is invite-only")
)

// GroupService manages groups and their membership. Membership changes emit a
// system notice into the group's chat via the message service, so connected
// members learn about joins and departures in-band.
type GroupService struct {
	groupRepo  repository.GroupRepositoryInterface
	userRepo   repository.UserRepositoryInterface
	messageSvc *MessageService
}

func NewGroupService(
	groupRepo repository.GroupRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	messageSvc *MessageService,
) *GroupService {
	return &GroupService{groupRepo: groupRepo, userRepo: userRepo, messageSvc: messageSvc}
}

type CreateGroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

func (s *GroupService) CreateGroup(ownerID uint, input CreateGroupInput) (*models.Group, error) {
	name := validation.TrimAndLimit(input.Name, 100)
	if name == "" {
		return nil, errors.New("group name is required")
	}

	group := &models.Group{
		Name:        name,
		Description: validation.TrimAndLimit(input.Description, 255),
		OwnerID:     ownerID,
		IsPublic:    input.IsPublic,
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}
	if err := s.groupRepo.AddMember(group.ID, ownerID, models.RoleOwner); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) GetGroup(groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func (s *GroupService) GetUserGroups(userID uint) ([]models.Group, error) {
	return s.groupRepo.GetUserGroups(userID)
}

func (s *GroupService) GetMembers(groupID uint, requestingUserID uint) ([]models.GroupMember, error) {
	active, err := s.groupRepo.IsActiveMember(groupID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrNotGroupMember
	}
	return s.groupRepo.GetMembers(groupID, models.MemberActive)
}

// Join adds the user to a public group, reactivating a previous membership
// row if one exists. The recipient set of the announcement already includes
// the joiner because AddMember runs first.
func (s *GroupService) Join(groupID, userID uint) (*models.MessageResponse, []uint, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, nil, ErrGroupNotFound
	}
	if !group.IsPublic {
		return nil, nil, ErrGroupNotJoinable
	}
	active, err := s.groupRepo.IsActiveMember(groupID, userID)
	if err != nil {
		return nil, nil, err
	}
	if active {
		return nil, nil, ErrAlreadyMember
	}
	if err := s.groupRepo.AddMember(groupID, userID, models.RoleMember); err != nil {
		return nil, nil, err
	}
	return s.announce(groupID, "%s joined the group", userID)
}

// Invite adds a user directly; only owners and admins may invite.
func (s *GroupService) Invite(groupID, inviterID, targetID uint) (*models.MessageResponse, []uint, error) {
	if err := s.requireRole(groupID, inviterID, models.RoleAdmin); err != nil {
		return nil, nil, err
	}
	if _, err := s.userRepo.FindByID(targetID); err != nil {
		return nil, nil, errors.New("target user not found")
	}
	active, err := s.groupRepo.IsActiveMember(groupID, targetID)
	if err != nil {
		return nil, nil, err
	}
	if active {
		return nil, nil, ErrAlreadyMember
	}
	if err := s.groupRepo.AddMember(groupID, targetID, models.RoleMember); err != nil {
		return nil, nil, err
	}
	return s.announce(groupID, "%s was added to the group", targetID)
}

// Leave marks the membership row as left. The owner cannot leave; ownership
// transfer is out of scope, they can only disband by deletion elsewhere.
func (s *GroupService) Leave(groupID, userID uint) (*models.MessageResponse, []uint, error) {
	role, err := s.groupRepo.GetMemberRole(groupID, userID)
	if err != nil {
		return nil, nil, ErrNotGroupMember
	}
	if role == models.RoleOwner {
		return nil, nil, errors.New("owner cannot leave the group")
	}
	// Announce first so the departing member's peers are resolved while the
	// membership is still active, then flip the row.
	notice, recipients, err := s.announce(groupID, "%s left the group", userID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.groupRepo.UpdateMemberStatus(groupID, userID, models.MemberLeft); err != nil {
		return nil, nil, err
	}
	return notice, recipients, nil
}

// Kick bans a member. Admins can kick members; only the owner can kick
// admins.
func (s *GroupService) Kick(groupID, actorID, targetID uint) (*models.MessageResponse, []uint, error) {
	if err := s.requireRole(groupID, actorID, models.RoleAdmin); err != nil {
		return nil, nil, err
	}
	targetRole, err := s.groupRepo.GetMemberRole(groupID, targetID)
	if err != nil {
		return nil, nil, ErrNotGroupMember
	}
	if targetRole == models.RoleOwner {
		return nil, nil, ErrGroupPermission
	}
	if targetRole == models.RoleAdmin {
		actorRole, err := s.groupRepo.GetMemberRole(groupID, actorID)
		if err != nil {
			return nil, nil, err
		}
		if actorRole != models.RoleOwner {
			return nil, nil, ErrGroupPermission
		}
	}

	notice, recipients, err := s.announce(groupID, "%s was removed from the group", targetID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.groupRepo.UpdateMemberStatus(groupID, targetID, models.MemberBanned); err != nil {
		return nil, nil, err
	}
	return notice, recipients, nil
}

func (s *GroupService) requireRole(groupID, userID uint, minimum models.GroupRole) error {
	role, err := s.groupRepo.GetMemberRole(groupID, userID)
	if err != nil {
		return ErrNotGroupMember
	}
	switch minimum {
	case models.RoleAdmin:
		if role != models.RoleAdmin && role != models.RoleOwner {
			return ErrGroupPermission
		}
	case models.RoleOwner:
		if role != models.RoleOwner {
			return ErrGroupPermission
		}
	}
	return nil
}

// announce persists a system notice in the group chat and returns the
// recipient set for realtime delivery.
func (s *GroupService) announce(groupID uint, format string, subjectID uint) (*models.MessageResponse, []uint, error) {
	subject, err := s.userRepo.FindByID(subjectID)
	if err != nil {
		return nil, nil, err
	}
	name := subject.Nickname
	if name == "" {
		name = subject.Username
	}
	return s.messageSvc.Submit(subjectID, SubmitInput{
		ReceiverType: models.ReceiverGroup,
		ReceiverID:   groupID,
		Content:      SystemContent{Body: fmt.Sprintf(format, name)},
	})
}
