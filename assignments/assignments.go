// Package assignments quản lý quan hệ nhiều-nhiều giữa huynh trưởng và lớp.
// Toàn bộ quan hệ nằm trong một bảng liên kết duy nhất (class_leaders) nên
// hai chiều truy vấn không bao giờ lệch nhau.
package assignments

import (
	"errors"

	"gorm.io/gorm"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/models"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Assign gán user vào lớp. Idempotent: đã gán rồi thì trả AlreadyAssigned=true
// và không ghi gì thêm. User không phải huynh trưởng / dự trưởng bị từ chối.
func (s *Service) Assign(userID, classID uint) (alreadyAssigned bool, err error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.ErrNotFound
		}
		return false, err
	}
	if !user.IsLeader() {
		return false, apperrors.NewValidation("user_id", "Chỉ huynh trưởng hoặc dự trưởng mới được phân công vào lớp.")
	}

	var class models.ClassModel
	if err := s.db.First(&class, classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.ErrNotFound
		}
		return false, err
	}

	var cnt int64
	if err := s.db.Table("class_leaders").
		Where("user_id = ? AND class_model_id = ?", userID, classID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	if cnt > 0 {
		return true, nil
	}

	err = s.db.Model(&class).Association("Leaders").Append(&user)
	return false, err
}

// Unassign gỡ user khỏi lớp. Idempotent: chưa gán thì NotAssigned=true.
func (s *Service) Unassign(userID, classID uint) (notAssigned bool, err error) {
	var class models.ClassModel
	if err := s.db.First(&class, classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.ErrNotFound
		}
		return false, err
	}

	var cnt int64
	if err := s.db.Table("class_leaders").
		Where("user_id = ? AND class_model_id = ?", userID, classID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	if cnt == 0 {
		return true, nil
	}

	err = s.db.Model(&class).Association("Leaders").Delete(&models.User{ID: userID})
	return false, err
}

// ClassesFor: các lớp mà user được phân công.
func (s *Service) ClassesFor(userID uint) ([]models.ClassModel, error) {
	var classes []models.ClassModel
	err := s.db.
		Joins("JOIN class_leaders cl ON cl.class_model_id = classes.id").
		Where("cl.user_id = ?", userID).
		Order("classes.name").
		Find(&classes).Error
	return classes, err
}

// LeadersFor: các huynh trưởng được phân công vào lớp.
func (s *Service) LeadersFor(classID uint) ([]models.User, error) {
	var leaders []models.User
	err := s.db.
		Joins("JOIN class_leaders cl ON cl.user_id = users.id").
		Where("cl.class_model_id = ?", classID).
		Preload("Profile").
		Order("users.username").
		Find(&leaders).Error
	return leaders, err
}

// UnassignedLeaders: huynh trưởng / dự trưởng chưa phụ trách lớp nào
// (dùng cho trang phân công).
func (s *Service) UnassignedLeaders() ([]models.User, error) {
	var leaders []models.User
	err := s.db.
		Where("role IN ?", []string{models.RoleHuynhTruong, models.RoleDuTruong}).
		Where("id NOT IN (?)", s.db.Table("class_leaders").Select("user_id")).
		Preload("Profile").
		Order("users.username").
		Find(&leaders).Error
	return leaders, err
}
