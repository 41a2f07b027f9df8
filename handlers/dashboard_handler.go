package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caobathien/Church/attendance"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/middlewares"
	"github.com/caobathien/Church/models"
)

// DashboardHandler: số liệu tổng quan cho trang chủ.
type DashboardHandler struct {
	Ledger *attendance.Service
}

func NewDashboardHandler(ledger *attendance.Service) *DashboardHandler {
	return &DashboardHandler{Ledger: ledger}
}

type classSummary struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	StudentCount   int64  `json:"student_count"`
	AttendanceDays int64  `json:"attendance_days"`
}

// GET /home — admin thấy toàn bộ, huynh trưởng chỉ thấy lớp mình phụ trách.
func (h *DashboardHandler) Home(c echo.Context) error {
	actor := middlewares.CurrentUser(c)

	var classes []models.ClassModel
	q := database.DB.Order("name ASC")
	if !actor.IsAdmin() {
		ids := make([]uint, 0, len(actor.AssignedClasses))
		for _, cl := range actor.AssignedClasses {
			ids = append(ids, cl.ID)
		}
		if len(ids) == 0 {
			ids = append(ids, 0)
		}
		q = q.Where("id IN ?", ids)
	}
	if err := q.Find(&classes).Error; err != nil {
		return writeError(c, err)
	}

	summaries := make([]classSummary, 0, len(classes))
	var totalStudents, totalDays int64
	for _, cl := range classes {
		var cnt int64
		if err := database.DB.Model(&models.Student{}).Where("class_id = ?", cl.ID).Count(&cnt).Error; err != nil {
			return writeError(c, err)
		}
		days, err := h.Ledger.DistinctDays(cl.ID)
		if err != nil {
			return writeError(c, err)
		}
		summaries = append(summaries, classSummary{ID: cl.ID, Name: cl.Name, StudentCount: cnt, AttendanceDays: days})
		totalStudents += cnt
		totalDays += days
	}

	var announcements []models.Announcement
	if err := database.DB.Preload("Author").Preload("Author.Profile").
		Order("created_at DESC").Limit(5).Find(&announcements).Error; err != nil {
		return writeError(c, err)
	}

	var leaders []models.User
	if err := database.DB.
		Where("role IN ?", []string{models.RoleHuynhTruong, models.RoleDuTruong}).
		Preload("Profile").
		Order("username").
		Find(&leaders).Error; err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"classes":         summaries,
		"total_students":  totalStudents,
		"attendance_days": totalDays,
		"leaders":         leaders,
		"announcements":   announcements,
	})
}
