package models

type Profile struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	UserID         uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	HoTen          string `json:"ho_ten" gorm:"size:100;not null"`
	TenThanh       string `json:"ten_thanh" gorm:"size:50"`
	SDT            string `json:"sdt" gorm:"size:15"`
	DiaChi         string `json:"dia_chi" gorm:"size:255"`
	AvatarFilename string `json:"avatar_filename" gorm:"size:100"`
}
