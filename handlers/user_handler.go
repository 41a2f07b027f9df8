package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/middlewares"
	"github.com/caobathien/Church/models"
)

// UserHandler: quản trị tài khoản (nhóm route admin).
type UserHandler struct{}

func NewUserHandler() *UserHandler { return &UserHandler{} }

// GET /admin/users?q=&role=
func (h *UserHandler) List(c echo.Context) error {
	q := database.DB.Model(&models.User{}).Preload("Profile").Order("username")

	if term := strings.TrimSpace(c.QueryParam("q")); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if role := strings.TrimSpace(c.QueryParam("role")); role != "" {
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

type adminUserPayload struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Role     string `json:"role" validate:"required"`
}

// PUT /admin/users/:id — admin sửa username / email / role.
// Đây là đường duy nhất đổi được role của một user.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return writeError(c, err)
	}

	var req adminUserPayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !models.ValidRole(req.Role) {
		return writeError(c, apperrors.NewValidation("role", "Vai trò không hợp lệ."))
	}

	var cnt int64
	if err := database.DB.Model(&models.User{}).
		Where("(username = ? OR email = ?) AND id <> ?", username, email, id).
		Count(&cnt).Error; err != nil {
		return writeError(c, err)
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_OR_EMAIL_EXISTS"})
	}

	// Hạ cấp một huynh trưởng thì gỡ luôn các phân công lớp cho khỏi
	// sót quyền cũ.
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		demoted := user.IsLeader() && req.Role != models.RoleHuynhTruong && req.Role != models.RoleDuTruong
		user.Username = username
		user.Email = email
		user.Role = req.Role
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if demoted {
			return tx.Exec("DELETE FROM class_leaders WHERE user_id = ?", user.ID).Error
		}
		return nil
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DELETE /admin/users/:id — không cho tự xoá chính mình.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	actor := middlewares.CurrentUser(c)
	if actor.ID == id {
		return writeError(c, &apperrors.Forbidden{Reason: "Bạn không thể xoá chính mình."})
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return writeError(c, err)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM class_leaders WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": id})
}
