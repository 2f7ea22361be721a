package models

import (
	"time"

	"gorm.io/gorm"
)

type GroupRole string

const (
	RoleOwner  GroupRole = "owner"
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)

type MemberStatus string

const (
	MemberActive MemberStatus = "active"
	MemberLeft   MemberStatus = "left"
	MemberBanned MemberStatus = "banned"
)

type Group struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	AvatarURL   string `json:"avatar_url"`
	OwnerID     uint   `gorm:"not null" json:"owner_id"`
	IsPublic    bool   `gorm:"default:false" json:"is_public"`

	Owner   User          `gorm:"foreignKey:OwnerID" json:"owner"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

// GroupMember rows are never deleted on leave/kick; Status transitions
// instead, so message history attribution survives.
type GroupMember struct {
	GroupID         uint         `gorm:"primaryKey" json:"group_id"`
	UserID          uint         `gorm:"primaryKey" json:"user_id"`
	Role            GroupRole    `gorm:"type:varchar(20);default:'member'" json:"role"`
	Status          MemberStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	NicknameInGroup string       `gorm:"size:64" json:"nickname_in_group"`
	JoinedAt        time.Time    `gorm:"autoCreateTime" json:"joined_at"`

	User  User  `gorm:"foreignKey:UserID" json:"user"`
	Group Group `gorm:"foreignKey:GroupID" json:"-"`
}
