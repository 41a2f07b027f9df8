package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/caobathien/Church/models"
)

func seedLeaderWithClass(t *testing.T, db *gorm.DB, username, className string) (*models.User, models.ClassModel) {
	t.Helper()
	class := models.ClassModel{Name: className}
	require.NoError(t, db.Create(&class).Error)

	u := &models.User{Username: username, Email: username + "@test.local", Role: models.RoleHuynhTruong}
	require.NoError(t, u.SetPassword("matkhau123"))
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Model(&class).Association("Leaders").Append(u))

	// actor trong request luôn được nạp sẵn AssignedClasses
	u.AssignedClasses = []models.ClassModel{class}
	return u, class
}

func TestStudentListScopedToLeaderClasses(t *testing.T) {
	db := setupDB(t)
	leader, class := seedLeaderWithClass(t, db, "truong", "Chiên Con 1")
	other := models.ClassModel{Name: "Ấu Nhi 1"}
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, db.Create(&models.Student{FullName: "Nguyễn Văn An", ClassID: &class.ID}).Error)
	require.NoError(t, db.Create(&models.Student{FullName: "Trần Thị Bình", ClassID: &other.ID}).Error)
	require.NoError(t, db.Create(&models.Student{FullName: "Lê Văn Chi"}).Error) // chưa xếp lớp

	h := NewStudentHandler()

	// leader chỉ thấy lớp mình
	c, rec := newRequest(t, http.MethodGet, "/students", nil)
	asUser(c, leader)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nguyễn Văn An")
	assert.NotContains(t, rec.Body.String(), "Trần Thị Bình")
	assert.NotContains(t, rec.Body.String(), "Lê Văn Chi")

	// guest thấy tất cả
	guest := &models.User{ID: 99, Role: models.RoleGuest}
	c, rec = newRequest(t, http.MethodGet, "/students", nil)
	asUser(c, guest)
	require.NoError(t, h.List(c))
	assert.Contains(t, rec.Body.String(), "Trần Thị Bình")
	assert.Contains(t, rec.Body.String(), "Lê Văn Chi")
}

func TestStudentCreateLeaderNeedsOwnClass(t *testing.T) {
	db := setupDB(t)
	leader, class := seedLeaderWithClass(t, db, "truong", "Chiên Con 1")
	other := models.ClassModel{Name: "Ấu Nhi 1"}
	require.NoError(t, db.Create(&other).Error)

	h := NewStudentHandler()

	// lớp của mình: được
	c, rec := newRequest(t, http.MethodPost, "/students", map[string]any{
		"full_name": "  Nguyễn   Văn An ",
		"class_id":  class.ID,
	})
	asUser(c, leader)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	// tên được chuẩn hoá khoảng trắng
	assert.Contains(t, rec.Body.String(), "Nguyễn Văn An")

	// lớp người khác: cấm
	c, rec = newRequest(t, http.MethodPost, "/students", map[string]any{
		"full_name": "Trần Thị Bình",
		"class_id":  other.ID,
	})
	asUser(c, leader)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// không chọn lớp: chỉ admin
	c, rec = newRequest(t, http.MethodPost, "/students", map[string]any{
		"full_name": "Lê Văn Chi",
	})
	asUser(c, leader)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStudentMoveRequiresTargetClassRight(t *testing.T) {
	db := setupDB(t)
	leader, class := seedLeaderWithClass(t, db, "truong", "Chiên Con 1")
	other := models.ClassModel{Name: "Ấu Nhi 1"}
	require.NoError(t, db.Create(&other).Error)

	student := models.Student{FullName: "Nguyễn Văn An", ClassID: &class.ID}
	require.NoError(t, db.Create(&student).Error)

	h := NewStudentHandler()

	// chuyển sang lớp không phụ trách -> 403, dữ liệu giữ nguyên
	c, rec := newRequest(t, http.MethodPut, "/", map[string]any{
		"full_name": "Nguyễn Văn An",
		"class_id":  other.ID,
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, leader)
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var got models.Student
	require.NoError(t, db.First(&got, student.ID).Error)
	require.NotNil(t, got.ClassID)
	assert.Equal(t, class.ID, *got.ClassID)
}

func TestStudentDeleteRemovesAttendance(t *testing.T) {
	db := setupDB(t)
	admin := seedAdmin(t, db)
	class := models.ClassModel{Name: "Chiên Con 1"}
	require.NoError(t, db.Create(&class).Error)
	student := models.Student{FullName: "Nguyễn Văn An", ClassID: &class.ID}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&models.Attendance{
		StudentID: student.ID, ClassID: class.ID, Date: "2026-03-08",
		Status: models.StatusPresent, CreatedBy: admin.ID,
	}).Error)

	h := NewStudentHandler()
	c, rec := newRequest(t, http.MethodDelete, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, admin)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var cnt int64
	require.NoError(t, db.Model(&models.Attendance{}).Count(&cnt).Error)
	assert.Zero(t, cnt)
}

func TestStudentScoreValidation(t *testing.T) {
	db := setupDB(t)
	admin := seedAdmin(t, db)
	student := models.Student{FullName: "Nguyễn Văn An"}
	require.NoError(t, db.Create(&student).Error)

	h := NewStudentHandler()
	c, rec := newRequest(t, http.MethodPut, "/", map[string]any{"diem_mieng": 11.0})
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, admin)
	require.NoError(t, h.UpdateScores(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
