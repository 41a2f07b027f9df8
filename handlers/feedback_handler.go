package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/middlewares"
	"github.com/caobathien/Church/models"
)

type FeedbackHandler struct{}

func NewFeedbackHandler() *FeedbackHandler { return &FeedbackHandler{} }

type feedbackPayload struct {
	Content string `json:"content" validate:"required"`
}

// POST /feedback — ai đăng nhập cũng gửi được.
func (h *FeedbackHandler) Create(c echo.Context) error {
	var req feedbackPayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	fb := models.Feedback{
		Content: strings.TrimSpace(req.Content),
		UserID:  middlewares.CurrentUser(c).ID,
	}
	if err := database.DB.Create(&fb).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, fb)
}

// GET /admin/feedback — mới nhất trước.
func (h *FeedbackHandler) List(c echo.Context) error {
	var fbs []models.Feedback
	err := database.DB.
		Preload("Sender").
		Order("created_at DESC").
		Find(&fbs).Error
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fbs)
}

// DELETE /admin/feedback/:id
func (h *FeedbackHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var fb models.Feedback
	if err := database.DB.First(&fb, id).Error; err != nil {
		return writeError(c, err)
	}
	if err := database.DB.Delete(&fb).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": id})
}
