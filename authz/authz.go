// Package authz là nơi duy nhất quyết định quyền truy cập.
// Mọi handler có thao tác ghi trên lớp / thiếu nhi / điểm danh đều phải gọi
// Authorize; không handler nào tự kiểm tra role lại lần nữa.
package authz

import (
	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/models"
)

// Action là tầng quyết định: xem / sửa / quản trị.
type Action int

const (
	ActionView Action = iota
	ActionMutate
	ActionAdminister
)

// Resource mô tả đối tượng bị tác động.
type Resource struct {
	// ClassID: lớp mà tài nguyên thuộc về; nil nghĩa là không gắn với lớp
	// nào (thiếu nhi chưa xếp lớp, hoặc tài nguyên toàn cục).
	ClassID *uint

	// GuestViewable: guest được phép xem (danh sách lớp, thiếu nhi,
	// lịch sử điểm danh).
	GuestViewable bool
}

// Class: tài nguyên gắn với một lớp cụ thể, guest xem được.
func Class(classID uint) Resource {
	return Resource{ClassID: &classID, GuestViewable: true}
}

// StudentIn: tài nguyên là thiếu nhi thuộc lớp classID (nil = chưa xếp lớp).
func StudentIn(classID *uint) Resource {
	return Resource{ClassID: classID, GuestViewable: true}
}

// AdminOnly: tài nguyên chỉ admin được thao tác (CRUD lớp, người dùng,
// huynh trưởng, thông báo, phản hồi).
func AdminOnly() Resource {
	return Resource{}
}

// Authorize trả nil khi cho phép; ngược lại trả ErrUnauthenticated hoặc
// *Forbidden kèm lý do hiển thị được. Hàm thuần: chỉ đọc actor đã nạp sẵn
// AssignedClasses, không chạm DB.
func Authorize(actor *models.User, action Action, res Resource) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}

	// Admin có toàn quyền
	if actor.IsAdmin() {
		return nil
	}

	switch action {
	case ActionView:
		if res.GuestViewable {
			return nil
		}
		return &apperrors.Forbidden{Reason: "Chức năng này yêu cầu quyền Admin."}

	case ActionMutate:
		if !actor.IsLeader() {
			return &apperrors.Forbidden{Reason: "Bạn không có quyền thực hiện thao tác này."}
		}
		if res.ClassID == nil {
			// Thiếu nhi chưa xếp lớp: chỉ admin được sửa
			return &apperrors.Forbidden{Reason: "Thiếu nhi chưa được xếp lớp, chỉ Admin quản lý được."}
		}
		if assignedTo(actor, *res.ClassID) {
			return nil
		}
		return &apperrors.Forbidden{Reason: "Bạn không có quyền quản lý lớp này."}

	case ActionAdminister:
		return &apperrors.Forbidden{Reason: "Chức năng này yêu cầu quyền Admin."}
	}

	return &apperrors.Forbidden{Reason: "Bạn không có quyền truy cập."}
}

func assignedTo(actor *models.User, classID uint) bool {
	for _, c := range actor.AssignedClasses {
		if c.ID == classID {
			return true
		}
	}
	return false
}
