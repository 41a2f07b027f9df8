package models

type ClassModel struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:50;not null"`

	Students []Student `json:"students,omitempty" gorm:"foreignKey:ClassID"`

	// Huynh trưởng / dự trưởng phụ trách lớp. Một bảng liên kết duy nhất
	// (class_leaders), truy vấn được từ cả hai phía.
	Leaders []User `json:"leaders,omitempty" gorm:"many2many:class_leaders"`
}

func (ClassModel) TableName() string { return "classes" }
