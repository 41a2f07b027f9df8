package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/assignments"
	"github.com/caobathien/Church/authz"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/middlewares"
	"github.com/caobathien/Church/models"
)

type ClassHandler struct {
	Assignments *assignments.Service
}

func NewClassHandler(asg *assignments.Service) *ClassHandler {
	return &ClassHandler{Assignments: asg}
}

type classPayload struct {
	Name string `json:"name" validate:"required,max=50"`
}

/* ====================== Đọc ====================== */

// GET /classes — guest xem được.
func (h *ClassHandler) List(c echo.Context) error {
	var classes []models.ClassModel
	if err := database.DB.Order("name").Find(&classes).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, classes)
}

// GET /classes/:id — chi tiết lớp: thiếu nhi + huynh trưởng phụ trách.
func (h *ClassHandler) Detail(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := authz.Authorize(middlewares.CurrentUser(c), authz.ActionView, authz.Class(id)); err != nil {
		return writeError(c, err)
	}

	var class models.ClassModel
	if err := database.DB.
		Preload("Students", func(db *gorm.DB) *gorm.DB { return db.Order("full_name") }).
		First(&class, id).Error; err != nil {
		return writeError(c, err)
	}
	leaders, err := h.Assignments.LeadersFor(id)
	if err != nil {
		return writeError(c, err)
	}
	class.Leaders = leaders
	return c.JSON(http.StatusOK, class)
}

/* ====================== CRUD (admin) ====================== */

// POST /admin/classes
func (h *ClassHandler) Create(c echo.Context) error {
	var req classPayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	name := strings.TrimSpace(req.Name)

	var cnt int64
	if err := database.DB.Model(&models.ClassModel{}).Where("name = ?", name).Count(&cnt).Error; err != nil {
		return writeError(c, err)
	}
	if cnt > 0 {
		return writeError(c, apperrors.NewValidation("name", "Tên lớp đã tồn tại."))
	}

	class := models.ClassModel{Name: name}
	if err := database.DB.Create(&class).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, class)
}

// PUT /admin/classes/:id
func (h *ClassHandler) Update(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req classPayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	name := strings.TrimSpace(req.Name)

	var class models.ClassModel
	if err := database.DB.First(&class, id).Error; err != nil {
		return writeError(c, err)
	}

	var cnt int64
	if err := database.DB.Model(&models.ClassModel{}).
		Where("name = ? AND id <> ?", name, id).Count(&cnt).Error; err != nil {
		return writeError(c, err)
	}
	if cnt > 0 {
		return writeError(c, apperrors.NewValidation("name", "Tên lớp đã tồn tại."))
	}

	class.Name = name
	if err := database.DB.Save(&class).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, class)
}

// DELETE /admin/classes/:id — chỉ xoá được lớp trống: không còn thiếu nhi
// và không còn huynh trưởng được phân công.
func (h *ClassHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var class models.ClassModel
	if err := database.DB.First(&class, id).Error; err != nil {
		return writeError(c, err)
	}

	var studentCnt int64
	if err := database.DB.Model(&models.Student{}).Where("class_id = ?", id).Count(&studentCnt).Error; err != nil {
		return writeError(c, err)
	}
	if studentCnt > 0 {
		return writeError(c, &apperrors.ConflictOnDelete{Reason: "Không thể xoá lớp vì vẫn còn thiếu nhi."})
	}

	var leaderCnt int64
	if err := database.DB.Table("class_leaders").Where("class_model_id = ?", id).Count(&leaderCnt).Error; err != nil {
		return writeError(c, err)
	}
	if leaderCnt > 0 {
		return writeError(c, &apperrors.ConflictOnDelete{Reason: "Không thể xoá lớp vì vẫn còn huynh trưởng phụ trách."})
	}

	if err := database.DB.Delete(&class).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": id})
}

/* ====================== Phân công (admin) ====================== */

type assignPayload struct {
	UserID uint `json:"user_id" validate:"required"`
}

// POST /admin/classes/:id/leaders
func (h *ClassHandler) AssignLeader(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req assignPayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	already, err := h.Assignments.Assign(req.UserID, id)
	if err != nil {
		return writeError(c, err)
	}
	if already {
		return c.JSON(http.StatusOK, map[string]any{
			"assigned": false,
			"warning":  "Huynh trưởng này đã được phân công vào lớp rồi.",
		})
	}
	return c.JSON(http.StatusCreated, map[string]any{"assigned": true})
}

// DELETE /admin/classes/:id/leaders/:userId
func (h *ClassHandler) UnassignLeader(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}

	notAssigned, err := h.Assignments.Unassign(userID, id)
	if err != nil {
		return writeError(c, err)
	}
	if notAssigned {
		return c.JSON(http.StatusOK, map[string]any{
			"unassigned": false,
			"warning":    "Huynh trưởng này vốn không phụ trách lớp.",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"unassigned": true})
}

// GET /admin/leaders/unassigned — huynh trưởng chưa có lớp (cho UI phân công).
func (h *ClassHandler) UnassignedLeaders(c echo.Context) error {
	leaders, err := h.Assignments.UnassignedLeaders()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, leaders)
}
