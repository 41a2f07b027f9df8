package models

import "time"

// AttendanceStatus là trạng thái điểm danh của một thiếu nhi trong một ngày.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
)

// Valid báo trạng thái có được hỗ trợ không.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	default:
		return false
	}
}

type Attendance struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	StudentID uint             `json:"student_id" gorm:"not null;uniqueIndex:uniq_student_class_date"`
	ClassID   uint             `json:"class_id" gorm:"not null;uniqueIndex:uniq_student_class_date;index"`
	Date      string           `json:"date" gorm:"size:10;not null;uniqueIndex:uniq_student_class_date"` // YYYY-MM-DD
	Status    AttendanceStatus `json:"status" gorm:"size:20;not null;default:'present'"`
	CreatedBy uint             `json:"created_by" gorm:"not null"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Student *Student    `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Class   *ClassModel `json:"-" gorm:"foreignKey:ClassID"`
	Creator *User       `json:"-" gorm:"foreignKey:CreatedBy"`
}
