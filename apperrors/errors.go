// Package apperrors định nghĩa các loại lỗi nghiệp vụ của toàn hệ thống.
// Handler chuyển chúng thành HTTP response tại biên; service chỉ trả lỗi.
package apperrors

import (
	"errors"
	"fmt"
)

// Lỗi không mang dữ liệu kèm theo.
var (
	ErrUnauthenticated = errors.New("chưa đăng nhập")
	ErrNotFound        = errors.New("không tìm thấy dữ liệu")
)

// Forbidden: đã đăng nhập nhưng không đủ quyền. Reason hiển thị cho người dùng.
type Forbidden struct {
	Reason string
}

func (e *Forbidden) Error() string { return e.Reason }

// ValidationError: lỗi ràng buộc dữ liệu theo từng field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dữ liệu không hợp lệ (%d lỗi)", len(e.Fields))
}

func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// AlreadyRecorded: lớp đã được điểm danh cho ngày này.
type AlreadyRecorded struct {
	ClassID uint
	Date    string
}

func (e *AlreadyRecorded) Error() string {
	return fmt.Sprintf("đã điểm danh cho ngày %s rồi", e.Date)
}

// ConflictOnDelete: không xoá được vì còn dữ liệu phụ thuộc.
type ConflictOnDelete struct {
	Reason string
}

func (e *ConflictOnDelete) Error() string { return e.Reason }

// StorageIO: ghi file hoặc bản ghi thất bại; chi tiết chỉ ghi log,
// không trả về cho người dùng.
type StorageIO struct {
	Err error
}

func (e *StorageIO) Error() string { return "lỗi lưu trữ dữ liệu" }
func (e *StorageIO) Unwrap() error { return e.Err }
