package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/authz"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/middlewares"
	"github.com/caobathien/Church/models"
)

type StudentHandler struct{}

func NewStudentHandler() *StudentHandler { return &StudentHandler{} }

const dobLayout = "2006-01-02"

type studentPayload struct {
	FullName    string `json:"full_name" validate:"required,max=100"`
	TenThanh    string `json:"ten_thanh" validate:"max=50"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD hoặc rỗng
	Gender      string `json:"gender" validate:"omitempty,oneof=nam nữ"`
	HoTenBo     string `json:"ho_ten_bo" validate:"max=100"`
	HoTenMe     string `json:"ho_ten_me" validate:"max=100"`
	SDTPhuHuynh string `json:"sdt_phu_huynh" validate:"max=15"`
	ClassID     *uint  `json:"class_id"`

	DiemMieng   *float64 `json:"diem_mieng" validate:"omitempty,gte=0,lte=10"`
	DiemGiuaKi1 *float64 `json:"diem_giua_ki_1" validate:"omitempty,gte=0,lte=10"`
	DiemCuoiKi1 *float64 `json:"diem_cuoi_ki_1" validate:"omitempty,gte=0,lte=10"`
	DiemGiuaKi2 *float64 `json:"diem_giua_ki_2" validate:"omitempty,gte=0,lte=10"`
	DiemCuoiKi2 *float64 `json:"diem_cuoi_ki_2" validate:"omitempty,gte=0,lte=10"`
}

func (p *studentPayload) normalize() {
	trim := strings.TrimSpace
	p.FullName = strings.Join(strings.Fields(p.FullName), " ")
	p.TenThanh = trim(p.TenThanh)
	p.DateOfBirth = trim(p.DateOfBirth)
	p.Gender = trim(strings.ToLower(p.Gender))
	p.HoTenBo = trim(p.HoTenBo)
	p.HoTenMe = trim(p.HoTenMe)
	p.SDTPhuHuynh = trim(p.SDTPhuHuynh)
}

func (p *studentPayload) parseDOB() (*time.Time, error) {
	if p.DateOfBirth == "" {
		return nil, nil
	}
	t, err := time.Parse(dobLayout, p.DateOfBirth)
	if err != nil {
		return nil, apperrors.NewValidation("date_of_birth", "Ngày sinh phải có dạng YYYY-MM-DD.")
	}
	return &t, nil
}

type studentDTO struct {
	models.Student
	DiemTong  float64 `json:"diem_tong"`
	ClassName string  `json:"class_name,omitempty"`
}

func toStudentDTO(s models.Student) studentDTO {
	dto := studentDTO{Student: s, DiemTong: s.DiemTong()}
	if s.Class != nil {
		dto.ClassName = s.Class.Name
	}
	return dto
}

// studentListQuery áp bộ lọc tìm kiếm / lớp / phạm vi theo vai trò.
// Leader chỉ thấy thiếu nhi trong các lớp mình phụ trách; admin và guest
// thấy tất cả.
func studentListQuery(actor *models.User, searchTerm string, classFilter *uint) *gorm.DB {
	q := database.DB.Model(&models.Student{}).Preload("Class").Order("full_name")

	if actor.IsLeader() {
		ids := make([]uint, 0, len(actor.AssignedClasses))
		for _, cl := range actor.AssignedClasses {
			ids = append(ids, cl.ID)
		}
		q = q.Where("class_id IN ?", ids)
	}
	if searchTerm != "" {
		like := "%" + strings.ToLower(searchTerm) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(ten_thanh) LIKE ?", like, like)
	}
	if classFilter != nil {
		q = q.Where("class_id = ?", *classFilter)
	}
	return q
}

func classFilterParam(c echo.Context) *uint {
	if v := atoiOr(strings.TrimSpace(c.QueryParam("class_id")), 0); v > 0 {
		id := uint(v)
		return &id
	}
	return nil
}

/* ====================== Đọc ====================== */

// GET /students?q=&class_id= — guest xem được.
func (h *StudentHandler) List(c echo.Context) error {
	actor := middlewares.CurrentUser(c)

	var students []models.Student
	q := studentListQuery(actor, strings.TrimSpace(c.QueryParam("q")), classFilterParam(c))
	if err := q.Find(&students).Error; err != nil {
		return writeError(c, err)
	}

	out := make([]studentDTO, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentDTO(s))
	}
	return c.JSON(http.StatusOK, out)
}

// GET /students/:id
func (h *StudentHandler) Detail(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var s models.Student
	if err := database.DB.Preload("Class").First(&s, id).Error; err != nil {
		return writeError(c, err)
	}
	if err := authz.Authorize(middlewares.CurrentUser(c), authz.ActionView, authz.StudentIn(s.ClassID)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toStudentDTO(s))
}

/* ====================== Ghi ====================== */

// POST /students — thêm thiếu nhi. Lớp có thể bỏ trống (chỉ admin);
// leader phải chọn lớp mình phụ trách.
func (h *StudentHandler) Create(c echo.Context) error {
	var req studentPayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	req.normalize()

	actor := middlewares.CurrentUser(c)
	if err := authz.Authorize(actor, authz.ActionMutate, authz.StudentIn(req.ClassID)); err != nil {
		return writeError(c, err)
	}

	dob, err := req.parseDOB()
	if err != nil {
		return writeError(c, err)
	}
	if req.ClassID != nil {
		var cnt int64
		if err := database.DB.Model(&models.ClassModel{}).Where("id = ?", *req.ClassID).Count(&cnt).Error; err != nil {
			return writeError(c, err)
		}
		if cnt == 0 {
			return writeError(c, apperrors.NewValidation("class_id", "Lớp không tồn tại."))
		}
	}

	s := models.Student{
		FullName:    req.FullName,
		TenThanh:    req.TenThanh,
		DateOfBirth: dob,
		Gender:      req.Gender,
		HoTenBo:     req.HoTenBo,
		HoTenMe:     req.HoTenMe,
		SDTPhuHuynh: req.SDTPhuHuynh,
		ClassID:     req.ClassID,
		DiemMieng:   req.DiemMieng,
		DiemGiuaKi1: req.DiemGiuaKi1,
		DiemCuoiKi1: req.DiemCuoiKi1,
		DiemGiuaKi2: req.DiemGiuaKi2,
		DiemCuoiKi2: req.DiemCuoiKi2,
	}
	if err := database.DB.Create(&s).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toStudentDTO(s))
}

// PUT /students/:id
func (h *StudentHandler) Update(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var s models.Student
	if err := database.DB.First(&s, id).Error; err != nil {
		return writeError(c, err)
	}

	actor := middlewares.CurrentUser(c)
	if err := authz.Authorize(actor, authz.ActionMutate, authz.StudentIn(s.ClassID)); err != nil {
		return writeError(c, err)
	}

	var req studentPayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	req.normalize()

	// Chuyển lớp: lớp đích cũng phải thuộc quyền của actor
	if !sameClass(s.ClassID, req.ClassID) {
		if err := authz.Authorize(actor, authz.ActionMutate, authz.StudentIn(req.ClassID)); err != nil {
			return writeError(c, err)
		}
	}

	dob, err := req.parseDOB()
	if err != nil {
		return writeError(c, err)
	}

	s.FullName = req.FullName
	s.TenThanh = req.TenThanh
	s.DateOfBirth = dob
	s.Gender = req.Gender
	s.HoTenBo = req.HoTenBo
	s.HoTenMe = req.HoTenMe
	s.SDTPhuHuynh = req.SDTPhuHuynh
	s.ClassID = req.ClassID
	s.DiemMieng = req.DiemMieng
	s.DiemGiuaKi1 = req.DiemGiuaKi1
	s.DiemCuoiKi1 = req.DiemCuoiKi1
	s.DiemGiuaKi2 = req.DiemGiuaKi2
	s.DiemCuoiKi2 = req.DiemCuoiKi2

	if err := database.DB.Save(&s).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toStudentDTO(s))
}

// DELETE /students/:id
func (h *StudentHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var s models.Student
	if err := database.DB.First(&s, id).Error; err != nil {
		return writeError(c, err)
	}
	if err := authz.Authorize(middlewares.CurrentUser(c), authz.ActionMutate, authz.StudentIn(s.ClassID)); err != nil {
		return writeError(c, err)
	}

	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", s.ID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&s).Error
	}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": id})
}

/* ====================== Điểm ====================== */

type scorePayload struct {
	DiemMieng   *float64 `json:"diem_mieng" validate:"omitempty,gte=0,lte=10"`
	DiemGiuaKi1 *float64 `json:"diem_giua_ki_1" validate:"omitempty,gte=0,lte=10"`
	DiemCuoiKi1 *float64 `json:"diem_cuoi_ki_1" validate:"omitempty,gte=0,lte=10"`
	DiemGiuaKi2 *float64 `json:"diem_giua_ki_2" validate:"omitempty,gte=0,lte=10"`
	DiemCuoiKi2 *float64 `json:"diem_cuoi_ki_2" validate:"omitempty,gte=0,lte=10"`
}

// PUT /students/:id/scores — nhập / sửa năm cột điểm.
func (h *StudentHandler) UpdateScores(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var s models.Student
	if err := database.DB.First(&s, id).Error; err != nil {
		return writeError(c, err)
	}
	if err := authz.Authorize(middlewares.CurrentUser(c), authz.ActionMutate, authz.StudentIn(s.ClassID)); err != nil {
		return writeError(c, err)
	}

	var req scorePayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	s.DiemMieng = req.DiemMieng
	s.DiemGiuaKi1 = req.DiemGiuaKi1
	s.DiemCuoiKi1 = req.DiemCuoiKi1
	s.DiemGiuaKi2 = req.DiemGiuaKi2
	s.DiemCuoiKi2 = req.DiemCuoiKi2

	if err := database.DB.Save(&s).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toStudentDTO(s))
}

func sameClass(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
