package handlers

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/models"
	"github.com/caobathien/Church/tabular"
)

// LeaderHandler quản lý huynh trưởng / dự trưởng (cặp User + Profile).
// Toàn bộ route nằm trong nhóm admin.
type LeaderHandler struct {
	ImportJobs *tabular.JobStore
}

func NewLeaderHandler(jobs *tabular.JobStore) *LeaderHandler {
	return &LeaderHandler{ImportJobs: jobs}
}

type leaderPayload struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role" validate:"required,oneof=huynh_truong du_truong"`
	HoTen    string `json:"ho_ten" validate:"required,max=100"`
	TenThanh string `json:"ten_thanh" validate:"max=50"`
	SDT      string `json:"sdt" validate:"max=15"`
	DiaChi   string `json:"dia_chi" validate:"max=255"`
}

func (p *leaderPayload) normalize() {
	trim := strings.TrimSpace
	p.Username = trim(p.Username)
	p.Email = trim(strings.ToLower(p.Email))
	p.Role = trim(p.Role)
	p.HoTen = strings.Join(strings.Fields(p.HoTen), " ")
	p.TenThanh = trim(p.TenThanh)
	p.SDT = trim(p.SDT)
	p.DiaChi = trim(p.DiaChi)
}

const pwAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

func randomPassword(n int) string {
	if n < 12 {
		n = 12
	}
	out := make([]byte, n)
	for i := range out {
		idx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(pwAlphabet))))
		out[i] = pwAlphabet[idx.Int64()]
	}
	return string(out)
}

/* ====================== CRUD ====================== */

// GET /admin/leaders
func (h *LeaderHandler) List(c echo.Context) error {
	var leaders []models.User
	err := database.DB.
		Where("role IN ?", []string{models.RoleHuynhTruong, models.RoleDuTruong}).
		Preload("Profile").
		Preload("AssignedClasses").
		Order("username").
		Find(&leaders).Error
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, leaders)
}

// POST /admin/leaders — tạo cặp User + Profile trong một transaction.
func (h *LeaderHandler) Create(c echo.Context) error {
	var req leaderPayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	req.normalize()
	if req.Password == "" {
		return writeError(c, apperrors.NewValidation("password", "Mật khẩu là bắt buộc khi tạo mới."))
	}

	var cnt int64
	if err := database.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&cnt).Error; err != nil {
		return writeError(c, err)
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_OR_EMAIL_EXISTS"})
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		Profile: &models.Profile{
			HoTen:    req.HoTen,
			TenThanh: req.TenThanh,
			SDT:      req.SDT,
			DiaChi:   req.DiaChi,
		},
	}
	if err := user.SetPassword(req.Password); err != nil {
		return writeError(c, err)
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// PUT /admin/leaders/:id
func (h *LeaderHandler) Update(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var user models.User
	if err := database.DB.Preload("Profile").First(&user, id).Error; err != nil {
		return writeError(c, err)
	}
	if !user.IsLeader() {
		return writeError(c, apperrors.ErrNotFound)
	}

	var req leaderPayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	req.normalize()

	var cnt int64
	if err := database.DB.Model(&models.User{}).
		Where("(username = ? OR email = ?) AND id <> ?", req.Username, req.Email, id).
		Count(&cnt).Error; err != nil {
		return writeError(c, err)
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_OR_EMAIL_EXISTS"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		user.Username = req.Username
		user.Email = req.Email
		user.Role = req.Role
		if req.Password != "" {
			if err := user.SetPassword(req.Password); err != nil {
				return err
			}
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if user.Profile == nil {
			user.Profile = &models.Profile{UserID: user.ID}
		}
		user.Profile.HoTen = req.HoTen
		user.Profile.TenThanh = req.TenThanh
		user.Profile.SDT = req.SDT
		user.Profile.DiaChi = req.DiaChi
		return tx.Save(user.Profile).Error
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DELETE /admin/leaders/:id — xoá user kèm profile và các phân công lớp.
func (h *LeaderHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return writeError(c, err)
	}
	if !user.IsLeader() {
		return writeError(c, apperrors.ErrNotFound)
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

/* ====================== Nhập file ====================== */

// POST /admin/leaders/import/preview — multipart "file"; trả job handle
// và vài dòng đầu để người dùng soát trước khi xác nhận.
func (h *LeaderHandler) ImportPreview(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, apperrors.NewValidation("file", "Vui lòng chọn file."))
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, &apperrors.StorageIO{Err: err})
	}
	defer f.Close()

	rows, err := tabular.Parse(fh.Filename, f)
	if err != nil {
		return writeError(c, err)
	}

	job := h.ImportJobs.Put(fh.Filename, rows)
	preview := rows.Records
	if len(preview) > 5 {
		preview = preview[:5]
	}
	return c.JSON(http.StatusOK, map[string]any{
		"job":     job,
		"headers": rows.Headers,
		"preview": preview,
		"total":   len(rows.Records),
	})
}

type importConfirmReq struct {
	JobID string `json:"job_id" validate:"required"`
}

// POST /admin/leaders/import/confirm — đổi job handle lấy dữ liệu và ghi.
// Dòng thiếu họ tên / email và dòng trùng username / email bị bỏ qua
// (đếm lại trong kết quả, không báo lỗi).
func (h *LeaderHandler) ImportConfirm(c echo.Context) error {
	var req importConfirmReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	job, ok := h.ImportJobs.Take(req.JobID)
	if !ok {
		return c.JSON(http.StatusGone, map[string]any{"error": "IMPORT_JOB_EXPIRED"})
	}

	added, skipped := 0, 0
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, rec := range job.Rows.Records {
			hoTen := rec.Get("họ và tên")
			email := strings.ToLower(rec.Get("email"))
			if hoTen == "" || email == "" {
				skipped++
				continue
			}
			username := rec.Get("username")
			if username == "" {
				username = strings.SplitN(email, "@", 2)[0]
			}
			role := rec.Get("vai trò")
			if role != models.RoleHuynhTruong && role != models.RoleDuTruong {
				role = models.RoleHuynhTruong
			}

			var cnt int64
			if err := tx.Model(&models.User{}).
				Where("username = ? OR email = ?", username, email).
				Count(&cnt).Error; err != nil {
				return err
			}
			if cnt > 0 {
				skipped++
				continue
			}

			user := models.User{
				Username: username,
				Email:    email,
				Role:     role,
				Profile: &models.Profile{
					HoTen:    hoTen,
					TenThanh: rec.Get("tên thánh"),
					SDT:      rec.Get("sđt"),
					DiaChi:   rec.Get("địa chỉ"),
				},
			}
			if err := user.SetPassword(randomPassword(12)); err != nil {
				return err
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"added": added, "skipped": skipped})
}

/* ====================== Xuất file ====================== */

var leaderExportHeaders = []string{"Tên Thánh", "Họ và tên", "Username", "Email", "Vai trò", "SĐT", "Địa chỉ"}

// GET /admin/leaders/export?format=xlsx|csv
func (h *LeaderHandler) Export(c echo.Context) error {
	var leaders []models.User
	err := database.DB.
		Where("role IN ?", []string{models.RoleHuynhTruong, models.RoleDuTruong}).
		Preload("Profile").
		Order("username").
		Find(&leaders).Error
	if err != nil {
		return writeError(c, err)
	}

	rows := make([][]string, 0, len(leaders))
	for _, l := range leaders {
		var tenThanh, hoTen, sdt, diaChi string
		if l.Profile != nil {
			tenThanh, hoTen, sdt, diaChi = l.Profile.TenThanh, l.Profile.HoTen, l.Profile.SDT, l.Profile.DiaChi
		}
		rows = append(rows, []string{tenThanh, hoTen, l.Username, l.Email, l.Role, sdt, diaChi})
	}

	base := "danh_sach_huynh_truong_" + time.Now().Format("20060102_150405")
	return writeTabular(c, c.QueryParam("format"), base, "HuynhTruong", leaderExportHeaders, rows)
}

// writeTabular dùng chung cho export huynh trưởng và thiếu nhi.
func writeTabular(c echo.Context, format, baseName, sheet string, headers []string, rows [][]string) error {
	var (
		buf      bytes.Buffer
		filename string
		mimetype string
	)
	switch format {
	case "", "xlsx":
		if err := tabular.WriteXLSX(&buf, sheet, headers, rows); err != nil {
			return writeError(c, err)
		}
		filename = baseName + ".xlsx"
		mimetype = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "csv":
		if err := tabular.WriteCSV(&buf, headers, rows); err != nil {
			return writeError(c, err)
		}
		filename = baseName + ".csv"
		mimetype = "text/csv"
	default:
		return writeError(c, apperrors.NewValidation("format", "Chỉ hỗ trợ định dạng xlsx hoặc csv."))
	}

	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, mimetype, buf.Bytes())
}
