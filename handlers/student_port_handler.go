package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/authz"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/middlewares"
	"github.com/caobathien/Church/models"
	"github.com/caobathien/Church/tabular"
)

// StudentPortHandler: nhập / xuất danh sách thiếu nhi.
type StudentPortHandler struct {
	ImportJobs *tabular.JobStore
}

func NewStudentPortHandler(jobs *tabular.JobStore) *StudentPortHandler {
	return &StudentPortHandler{ImportJobs: jobs}
}

// Ngày sinh trong file chấp nhận hai dạng thường gặp.
var dobLayouts = []string{"02-01-2006", "02/01/2006"}

func parseImportDOB(s string) *time.Time {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// POST /students/import/preview — multipart "file" (.xlsx / .csv).
func (h *StudentPortHandler) ImportPreview(c echo.Context) error {
	actor := middlewares.CurrentUser(c)
	if actor.Role == models.RoleGuest {
		return writeError(c, &apperrors.Forbidden{Reason: "Bạn không có quyền nhập dữ liệu từ file."})
	}

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

// POST /students/import/confirm — ghi dữ liệu của job xem trước.
// Bỏ qua (và đếm) các dòng: thiếu họ tên, ngày sinh không đọc được,
// trùng (họ tên, ngày sinh), hoặc lớp nằm ngoài quyền của actor.
func (h *StudentPortHandler) ImportConfirm(c echo.Context) error {
	actor := middlewares.CurrentUser(c)

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
		// tra tên lớp một lần
		var classes []models.ClassModel
		if err := tx.Find(&classes).Error; err != nil {
			return err
		}
		classByName := make(map[string]uint, len(classes))
		for _, cl := range classes {
			classByName[strings.ToLower(cl.Name)] = cl.ID
		}

		for _, rec := range job.Rows.Records {
			fullName := strings.Join(strings.Fields(rec.Get("họ và tên")), " ")
			if fullName == "" {
				skipped++
				continue
			}
			dob := parseImportDOB(rec.Get("ngày sinh"))
			if dob == nil {
				skipped++
				continue
			}

			var classID *uint
			if name := rec.Get("lớp"); name != "" {
				if id, ok := classByName[strings.ToLower(name)]; ok {
					classID = &id
				}
			}

			// Mỗi dòng đi qua đúng một cổng kiểm tra quyền như mọi thao tác
			// ghi khác; dòng bị từ chối thì bỏ qua chứ không hỏng cả file.
			if err := authz.Authorize(actor, authz.ActionMutate, authz.StudentIn(classID)); err != nil {
				skipped++
				continue
			}

			var cnt int64
			if err := tx.Model(&models.Student{}).
				Where("full_name = ? AND date_of_birth = ?", fullName, dob).
				Count(&cnt).Error; err != nil {
				return err
			}
			if cnt > 0 {
				skipped++
				continue
			}

			s := models.Student{
				FullName:    fullName,
				TenThanh:    rec.Get("tên thánh"),
				DateOfBirth: dob,
				Gender:      strings.ToLower(rec.Get("giới tính")),
				HoTenBo:     rec.Get("họ tên bố"),
				HoTenMe:     rec.Get("họ tên mẹ"),
				SDTPhuHuynh: rec.Get("sđt phụ huynh"),
				ClassID:     classID,
			}
			if err := tx.Create(&s).Error; err != nil {
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

var studentExportHeaders = []string{
	"Tên Thánh", "Họ và tên", "Ngày sinh", "Giới tính", "Lớp",
	"Họ tên Bố", "Họ tên Mẹ", "SĐT Phụ huynh",
	"Điểm miệng", "Điểm giữa kì 1", "Điểm cuối kì 1", "Điểm giữa kì 2", "Điểm cuối kì 2", "Điểm tổng",
}

// GET /students/export?format=xlsx|csv&q=&class_id= — cùng bộ lọc và
// phạm vi nhìn thấy như danh sách.
func (h *StudentPortHandler) Export(c echo.Context) error {
	actor := middlewares.CurrentUser(c)

	var students []models.Student
	q := studentListQuery(actor, strings.TrimSpace(c.QueryParam("q")), classFilterParam(c))
	if err := q.Find(&students).Error; err != nil {
		return writeError(c, err)
	}

	fmtScore := func(p *float64) string {
		if p == nil {
			return "0"
		}
		return formatFloat(*p)
	}

	rows := make([][]string, 0, len(students))
	for _, s := range students {
		var dobStr, className string
		if s.DateOfBirth != nil {
			dobStr = s.DateOfBirth.Format("02-01-2006")
		}
		if s.Class != nil {
			className = s.Class.Name
		}
		rows = append(rows, []string{
			s.TenThanh, s.FullName, dobStr, s.Gender, className,
			s.HoTenBo, s.HoTenMe, s.SDTPhuHuynh,
			fmtScore(s.DiemMieng), fmtScore(s.DiemGiuaKi1), fmtScore(s.DiemCuoiKi1),
			fmtScore(s.DiemGiuaKi2), fmtScore(s.DiemCuoiKi2),
			formatFloat(s.DiemTong()),
		})
	}

	base := "danh_sach_thieu_nhi_" + time.Now().Format("20060102_150405")
	return writeTabular(c, c.QueryParam("format"), base, "DanhSachThieuNhi", studentExportHeaders, rows)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
