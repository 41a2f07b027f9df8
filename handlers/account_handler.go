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
	"github.com/caobathien/Church/storage"
)

// AccountHandler: tự quản lý tài khoản của người đang đăng nhập.
type AccountHandler struct {
	Files *storage.FileStore
}

func NewAccountHandler(files *storage.FileStore) *AccountHandler {
	return &AccountHandler{Files: files}
}

// GET /account
func (h *AccountHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middlewares.CurrentUser(c))
}

type updateAccountReq struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Email    string `json:"email" validate:"required,email,max=120"`
	HoTen    string `json:"ho_ten" validate:"omitempty,max=100"`
	TenThanh string `json:"ten_thanh" validate:"max=50"`
	SDT      string `json:"sdt" validate:"max=15"`
	DiaChi   string `json:"dia_chi" validate:"max=255"`
}

// PUT /account — đổi thông tin tài khoản và hồ sơ của chính mình.
// Role không đổi được ở đây; chỉ admin sửa role qua /admin/users.
func (h *AccountHandler) Update(c echo.Context) error {
	actor := middlewares.CurrentUser(c)

	var req updateAccountReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	var cnt int64
	if err := database.DB.Model(&models.User{}).
		Where("(username = ? OR email = ?) AND id <> ?", username, email, actor.ID).
		Count(&cnt).Error; err != nil {
		return writeError(c, err)
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_OR_EMAIL_EXISTS"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		actor.Username = username
		actor.Email = email
		if err := tx.Model(&models.User{}).Where("id = ?", actor.ID).
			Updates(map[string]any{"username": username, "email": email}).Error; err != nil {
			return err
		}
		if actor.Profile == nil {
			actor.Profile = &models.Profile{UserID: actor.ID}
		}
		if req.HoTen != "" {
			actor.Profile.HoTen = strings.Join(strings.Fields(req.HoTen), " ")
		}
		actor.Profile.TenThanh = strings.TrimSpace(req.TenThanh)
		actor.Profile.SDT = strings.TrimSpace(req.SDT)
		actor.Profile.DiaChi = strings.TrimSpace(req.DiaChi)
		return tx.Save(actor.Profile).Error
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, actor)
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// PUT /account/password — phải nhập đúng mật khẩu hiện tại.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	actor := middlewares.CurrentUser(c)

	var req changePasswordReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	if !actor.VerifyPassword(req.CurrentPassword) {
		return writeError(c, apperrors.NewValidation("current_password", "Mật khẩu hiện tại không đúng."))
	}
	if err := actor.SetPassword(req.NewPassword); err != nil {
		return writeError(c, err)
	}
	if err := database.DB.Model(&models.User{}).Where("id = ?", actor.ID).
		Update("password_hash", actor.PasswordHash).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// PUT /account/avatar — multipart "avatar"; ảnh được thu nhỏ 200x200,
// ảnh cũ bị xoá sau khi lưu xong ảnh mới.
func (h *AccountHandler) UpdateAvatar(c echo.Context) error {
	actor := middlewares.CurrentUser(c)

	fh, err := c.FormFile("avatar")
	if err != nil {
		return writeError(c, apperrors.NewValidation("avatar", "Vui lòng chọn file ảnh."))
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, &apperrors.StorageIO{Err: err})
	}
	defer f.Close()

	newName, err := h.Files.SaveAvatar(f, fh.Filename)
	if err != nil {
		return writeError(c, err)
	}

	if actor.Profile == nil {
		actor.Profile = &models.Profile{UserID: actor.ID}
	}
	oldName := actor.Profile.AvatarFilename
	actor.Profile.AvatarFilename = newName
	if err := database.DB.Save(actor.Profile).Error; err != nil {
		_ = h.Files.Delete(newName)
		return writeError(c, err)
	}
	_ = h.Files.Delete(oldName)

	return c.JSON(http.StatusOK, map[string]any{"avatar_filename": newName})
}
