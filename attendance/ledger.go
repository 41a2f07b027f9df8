// Package attendance ghi và tra cứu điểm danh theo lớp, theo ngày.
//
// Ràng buộc độc nhất (student_id, class_id, date) trong DB là chốt chặn
// cuối cùng; kiểm tra trước trong code chỉ để trả lỗi thân thiện.
package attendance

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/models"
)

const DateLayout = "2006-01-02"

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// DayStat: thống kê một ngày điểm danh.
type DayStat struct {
	Date        string  `json:"date"`
	Total       int     `json:"total"`
	Present     int     `json:"present"`
	Absent      int     `json:"absent"`
	Late        int     `json:"late"`
	PresentRate float64 `json:"present_rate"` // %, làm tròn 1 chữ số
}

// ParseDate kiểm tra chuỗi ngày YYYY-MM-DD.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", apperrors.NewValidation("date", "Ngày không hợp lệ, cần dạng YYYY-MM-DD.")
	}
	return t.Format(DateLayout), nil
}

// Take điểm danh cả lớp cho một ngày. Cả ngày là một đơn vị: đã có bất kỳ
// bản ghi nào cho (lớp, ngày) thì từ chối bằng AlreadyRecorded, không gộp.
// Thiếu nhi đang trong lớp mà không có trong entries được mặc định "present".
// Toàn bộ ghi trong một transaction.
func (s *Service) Take(classID uint, date string, entries map[uint]models.AttendanceStatus, actor *models.User) error {
	date, err := ParseDate(date)
	if err != nil {
		return err
	}
	for _, st := range entries {
		if !st.Valid() {
			return apperrors.NewValidation("status", "Trạng thái điểm danh không hợp lệ.")
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var class models.ClassModel
		if err := tx.First(&class, classID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		var cnt int64
		if err := tx.Model(&models.Attendance{}).
			Where("class_id = ? AND date = ?", classID, date).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return &apperrors.AlreadyRecorded{ClassID: classID, Date: date}
		}

		var students []models.Student
		if err := tx.Where("class_id = ?", classID).Find(&students).Error; err != nil {
			return err
		}

		rows := make([]models.Attendance, 0, len(students))
		for _, st := range students {
			status, ok := entries[st.ID]
			if !ok {
				status = models.StatusPresent
			}
			rows = append(rows, models.Attendance{
				StudentID: st.ID,
				ClassID:   classID,
				Date:      date,
				Status:    status,
				CreatedBy: actor.ID,
			})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// Update sửa điểm danh một ngày đã ghi: có bản ghi thì đổi status, chưa có
// (thiếu nhi vào lớp sau ngày điểm danh) thì thêm mới. Không bao giờ xoá
// bản ghi của thiếu nhi đã rời lớp.
func (s *Service) Update(classID uint, date string, entries map[uint]models.AttendanceStatus, actor *models.User) error {
	date, err := ParseDate(date)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var class models.ClassModel
		if err := tx.First(&class, classID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		existing := map[uint]*models.Attendance{}
		var rows []models.Attendance
		if err := tx.Where("class_id = ? AND date = ?", classID, date).Find(&rows).Error; err != nil {
			return err
		}
		for i := range rows {
			existing[rows[i].StudentID] = &rows[i]
		}

		for studentID, status := range entries {
			if !status.Valid() {
				return apperrors.NewValidation("status", "Trạng thái điểm danh không hợp lệ.")
			}
			if att, ok := existing[studentID]; ok {
				if att.Status == status {
					continue
				}
				if err := tx.Model(att).Update("status", status).Error; err != nil {
					return err
				}
				continue
			}
			att := models.Attendance{
				StudentID: studentID,
				ClassID:   classID,
				Date:      date,
				Status:    status,
				CreatedBy: actor.ID,
			}
			if err := tx.Create(&att).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// HistoryFor: các ngày đã điểm danh của lớp, mới nhất trước, kèm thống kê.
// Ngày không có bản ghi nào thì present_rate = 0, không phải lỗi.
func (s *Service) HistoryFor(classID uint) ([]DayStat, error) {
	var rows []models.Attendance
	if err := s.db.
		Where("class_id = ?", classID).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	var dates []string
	byDate := map[string]*DayStat{}
	for _, r := range rows {
		st, ok := byDate[r.Date]
		if !ok {
			st = &DayStat{Date: r.Date}
			byDate[r.Date] = st
			dates = append(dates, r.Date)
		}
		st.Total++
		switch r.Status {
		case models.StatusPresent:
			st.Present++
		case models.StatusAbsent:
			st.Absent++
		case models.StatusLate:
			st.Late++
		}
	}

	stats := make([]DayStat, 0, len(dates))
	for _, d := range dates {
		st := byDate[d]
		if st.Total > 0 {
			st.PresentRate = math.Round(float64(st.Present)/float64(st.Total)*1000) / 10
		}
		stats = append(stats, *st)
	}
	return stats, nil
}

// ForDate: điểm danh của lớp trong một ngày, theo student_id.
func (s *Service) ForDate(classID uint, date string) (map[uint]models.Attendance, error) {
	date, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	var rows []models.Attendance
	if err := s.db.
		Where("class_id = ? AND date = ?", classID, date).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]models.Attendance, len(rows))
	for _, r := range rows {
		out[r.StudentID] = r
	}
	return out, nil
}

// DistinctDays đếm số ngày đã điểm danh của một lớp (cho dashboard).
func (s *Service) DistinctDays(classID uint) (int64, error) {
	var cnt int64
	err := s.db.Model(&models.Attendance{}).
		Where("class_id = ?", classID).
		Distinct("date").
		Count(&cnt).Error
	return cnt, err
}
