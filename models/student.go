package models

import "time"

type Student struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	FullName     string     `json:"full_name" gorm:"size:100;not null;index:idx_students_name_dob"`
	TenThanh     string     `json:"ten_thanh" gorm:"size:50"`
	DateOfBirth  *time.Time `json:"date_of_birth" gorm:"index:idx_students_name_dob"`
	Gender       string     `json:"gender" gorm:"size:10"`
	HoTenBo      string     `json:"ho_ten_bo" gorm:"size:100"`
	HoTenMe      string     `json:"ho_ten_me" gorm:"size:100"`
	SDTPhuHuynh  string     `json:"sdt_phu_huynh" gorm:"size:15"`

	// Lớp có thể chưa xếp (nil); thiếu nhi chưa xếp lớp chỉ admin quản lý được
	ClassID *uint       `json:"class_id" gorm:"index"`
	Class   *ClassModel `json:"class,omitempty" gorm:"foreignKey:ClassID"`

	// Năm cột điểm, mỗi cột 0..10; nil = chưa nhập
	DiemMieng    *float64 `json:"diem_mieng"`
	DiemGiuaKi1  *float64 `json:"diem_giua_ki_1"`
	DiemCuoiKi1  *float64 `json:"diem_cuoi_ki_1"`
	DiemGiuaKi2  *float64 `json:"diem_giua_ki_2"`
	DiemCuoiKi2  *float64 `json:"diem_cuoi_ki_2"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scores trả về năm cột điểm theo thứ tự cố định.
func (s *Student) Scores() [5]*float64 {
	return [5]*float64{s.DiemMieng, s.DiemGiuaKi1, s.DiemCuoiKi1, s.DiemGiuaKi2, s.DiemCuoiKi2}
}

// DiemTong: điểm tổng = trung bình cộng năm cột, cột chưa nhập tính 0.
// Không lưu trong DB, luôn tính lại khi cần.
func (s *Student) DiemTong() float64 {
	var sum float64
	for _, p := range s.Scores() {
		if p != nil {
			sum += *p
		}
	}
	return sum / 5
}
