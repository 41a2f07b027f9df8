package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/models"
)

type AuthHandler struct {
	JWTSecret string
}

func NewAuthHandler(secret string) *AuthHandler {
	return &AuthHandler{JWTSecret: secret}
}

func (h *AuthHandler) signJWT(u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": u.Role,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.JWTSecret))
}

/* ====================== DTOs ====================== */

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8"`
	HoTen    string `json:"ho_ten" validate:"required,max=100"`
	TenThanh string `json:"ten_thanh" validate:"max=50"`
	SDT      string `json:"sdt" validate:"max=15"`
	DiaChi   string `json:"dia_chi" validate:"max=255"`
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

/* ====================== Handlers ====================== */

// POST /auth/register — tự đăng ký, luôn là guest. User + Profile tạo
// trong cùng một transaction.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	var cnt int64
	if err := database.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&cnt).Error; err != nil {
		return writeError(c, err)
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_OR_EMAIL_EXISTS"})
	}

	user := models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleGuest,
		Profile: &models.Profile{
			HoTen:    strings.TrimSpace(req.HoTen),
			TenThanh: strings.TrimSpace(req.TenThanh),
			SDT:      strings.TrimSpace(req.SDT),
			DiaChi:   strings.TrimSpace(req.DiaChi),
		},
	}
	if err := user.SetPassword(req.Password); err != nil {
		return writeError(c, err)
	}

	if err := database.DB.Create(&user).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"id": user.ID})
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	var u models.User
	err := database.DB.Where("username = ?", strings.TrimSpace(req.Username)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
		}
		return writeError(c, err)
	}
	if !u.VerifyPassword(req.Password) {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}

	token, err := h.signJWT(&u, 7*24*time.Hour)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  map[string]any{"id": u.ID, "username": u.Username, "role": u.Role},
	})
}
