package repository

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

func (r *GroupRepository) FindByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.Preload("Owner").First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) AddMember(groupID, userID uint, role models.GroupRole) error {
	member := models.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
		Status:  models.MemberActive,
	}
	// Rejoining after leave reactivates the existing row.
	return r.db.Exec(`
		INSERT INTO group_members (group_id, user_id, role, status, joined_at)
		VALUES (?, ?, ?, ?, NOW())
		ON CONFLICT (group_id, user_id) DO UPDATE
		SET status = ?, role = ?
	`, member.GroupID, member.UserID, member.Role, member.Status,
		models.MemberActive, member.Role).Error
}

func (r *GroupRepository) UpdateMemberStatus(groupID, userID uint, status models.MemberStatus) error {
	return r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("status", status).Error
}

func (r *GroupRepository) GetMembers(groupID uint, status models.MemberStatus) ([]models.GroupMember, error) {
	var members []models.GroupMember
	q := r.db.Preload("User").Where("group_id = ?", groupID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("role ASC, joined_at ASC").Find(&members).Error
	return members, err
}

// ActiveMemberIDs is the fanout recipient set for a group message. It is
// queried fresh on every send so kicks and leaves are honored immediately.
func (r *GroupRepository) ActiveMemberIDs(groupID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND status = ?", groupID, models.MemberActive).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *GroupRepository) IsActiveMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, models.MemberActive).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) GetMemberRole(groupID, userID uint) (models.GroupRole, error) {
	var member models.GroupMember
	if err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		return "", err
	}
	return member.Role, nil
}

func (r *GroupRepository) GetUserGroups(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ? AND group_members.status = ?", userID, models.MemberActive).
		Preload("Owner").
		Find(&groups).Error
	return groups, err
}
