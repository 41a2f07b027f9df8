package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Các vai trò trong hệ thống.
const (
	RoleGuest       = "guest"
	RoleHuynhTruong = "huynh_truong"
	RoleDuTruong    = "du_truong"
	RoleAdmin       = "admin"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:60;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:120;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"size:20;not null;default:'guest'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 1-1 với Profile; xoá User thì xoá luôn Profile
	Profile *Profile `json:"profile,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	// Các lớp được phân công (chỉ có nghĩa với huynh trưởng / dự trưởng)
	AssignedClasses []ClassModel `json:"assigned_classes,omitempty" gorm:"many2many:class_leaders"`
}

func (u *User) SetPassword(plain string) error {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(b)
	return nil
}

func (u *User) VerifyPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsLeader: huynh trưởng hoặc dự trưởng.
func (u *User) IsLeader() bool {
	return u.Role == RoleHuynhTruong || u.Role == RoleDuTruong
}

// ValidRole kiểm tra giá trị role hợp lệ.
func ValidRole(r string) bool {
	switch r {
	case RoleGuest, RoleHuynhTruong, RoleDuTruong, RoleAdmin:
		return true
	default:
		return false
	}
}
