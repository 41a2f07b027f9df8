package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/middlewares"
	"github.com/caobathien/Church/models"
	"github.com/caobathien/Church/storage"
)

type AnnouncementHandler struct {
	Files *storage.FileStore
}

func NewAnnouncementHandler(files *storage.FileStore) *AnnouncementHandler {
	return &AnnouncementHandler{Files: files}
}

// GET /announcements — mới nhất trước, ai đăng nhập cũng xem được.
func (h *AnnouncementHandler) List(c echo.Context) error {
	var anns []models.Announcement
	err := database.DB.
		Preload("Author").
		Order("created_at DESC").
		Find(&anns).Error
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, anns)
}

// POST /admin/announcements — multipart: title, content, image (tuỳ chọn).
func (h *AnnouncementHandler) Create(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	content := strings.TrimSpace(c.FormValue("content"))
	fields := map[string]string{}
	if title == "" {
		fields["title"] = "Tiêu đề là bắt buộc."
	}
	if content == "" {
		fields["content"] = "Nội dung là bắt buộc."
	}
	if len(fields) > 0 {
		return writeError(c, &apperrors.ValidationError{Fields: fields})
	}

	var imageFile string
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return writeError(c, &apperrors.StorageIO{Err: err})
		}
		defer f.Close()
		imageFile, err = h.Files.Save(f, fh.Filename)
		if err != nil {
			return writeError(c, err)
		}
	}

	ann := models.Announcement{
		Title:         title,
		Content:       content,
		ImageFilename: imageFile,
		UserID:        middlewares.CurrentUser(c).ID,
	}
	if err := database.DB.Create(&ann).Error; err != nil {
		// bản ghi hỏng thì đừng để file mồ côi
		_ = h.Files.Delete(imageFile)
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ann)
}

// PUT /admin/announcements/:id — thay ảnh thì xoá ảnh cũ sau khi lưu xong.
func (h *AnnouncementHandler) Update(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var ann models.Announcement
	if err := database.DB.First(&ann, id).Error; err != nil {
		return writeError(c, err)
	}

	if title := strings.TrimSpace(c.FormValue("title")); title != "" {
		ann.Title = title
	}
	if content := strings.TrimSpace(c.FormValue("content")); content != "" {
		ann.Content = content
	}

	oldImage := ""
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return writeError(c, &apperrors.StorageIO{Err: err})
		}
		defer f.Close()
		newImage, err := h.Files.Save(f, fh.Filename)
		if err != nil {
			return writeError(c, err)
		}
		oldImage = ann.ImageFilename
		ann.ImageFilename = newImage
	}

	if err := database.DB.Save(&ann).Error; err != nil {
		return writeError(c, err)
	}
	_ = h.Files.Delete(oldImage)
	return c.JSON(http.StatusOK, ann)
}

// DELETE /admin/announcements/:id
func (h *AnnouncementHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var ann models.Announcement
	if err := database.DB.First(&ann, id).Error; err != nil {
		return writeError(c, err)
	}
	if err := database.DB.Delete(&ann).Error; err != nil {
		return writeError(c, err)
	}
	_ = h.Files.Delete(ann.ImageFilename)
	return c.JSON(http.StatusOK, map[string]any{"deleted": id})
}
