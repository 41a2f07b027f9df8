package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caobathien/Church/models"
	"github.com/caobathien/Church/tabular"
)

func importRows(records ...tabular.Record) *tabular.Rows {
	return &tabular.Rows{
		Headers: []string{"Họ và tên", "Ngày sinh", "Lớp"},
		Records: records,
	}
}

func TestStudentImportConfirm(t *testing.T) {
	db := setupDB(t)
	admin := seedAdmin(t, db)
	class := models.ClassModel{Name: "Chiên Con 1"}
	require.NoError(t, db.Create(&class).Error)

	dob := time.Date(2015, 3, 8, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Student{
		FullName: "Nguyễn Văn An", DateOfBirth: &dob, ClassID: &class.ID,
	}).Error)

	jobs := tabular.NewJobStore(time.Minute)
	job := jobs.Put("danhsach.xlsx", importRows(
		tabular.Record{"họ và tên": "Nguyễn Văn An", "ngày sinh": "08-03-2015", "lớp": "Chiên Con 1"}, // trùng
		tabular.Record{"họ và tên": "Trần Thị Bình", "ngày sinh": "01/09/2016", "lớp": "chiên con 1"}, // tên lớp khác hoa thường
		tabular.Record{"họ và tên": "", "ngày sinh": "02-02-2016"},                                    // thiếu tên
		tabular.Record{"họ và tên": "Lê Văn Chi", "ngày sinh": "hôm qua"},                             // ngày sinh hỏng
	))

	h := NewStudentPortHandler(jobs)
	c, rec := newRequest(t, http.MethodPost, "/students/import/confirm", map[string]any{"job_id": job.ID})
	asUser(c, admin)
	require.NoError(t, h.ImportConfirm(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["added"])
	assert.EqualValues(t, 3, body["skipped"])

	var cnt int64
	require.NoError(t, db.Model(&models.Student{}).Count(&cnt).Error)
	assert.EqualValues(t, 2, cnt)

	// lớp được tra theo tên, không phân biệt hoa thường
	var binh models.Student
	require.NoError(t, db.Where("full_name = ?", "Trần Thị Bình").First(&binh).Error)
	require.NotNil(t, binh.ClassID)
	assert.Equal(t, class.ID, *binh.ClassID)

	// job handle chỉ dùng được một lần
	c, rec = newRequest(t, http.MethodPost, "/students/import/confirm", map[string]any{"job_id": job.ID})
	asUser(c, admin)
	require.NoError(t, h.ImportConfirm(c))
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestStudentImportConfirmLeaderScope(t *testing.T) {
	db := setupDB(t)
	leader, class := seedLeaderWithClass(t, db, "truong", "Chiên Con 1")
	other := models.ClassModel{Name: "Ấu Nhi 1"}
	require.NoError(t, db.Create(&other).Error)

	jobs := tabular.NewJobStore(time.Minute)
	job := jobs.Put("danhsach.csv", importRows(
		tabular.Record{"họ và tên": "Nguyễn Văn An", "ngày sinh": "08-03-2015", "lớp": class.Name},
		tabular.Record{"họ và tên": "Trần Thị Bình", "ngày sinh": "01-09-2016", "lớp": other.Name}, // ngoài quyền
		tabular.Record{"họ và tên": "Lê Văn Chi", "ngày sinh": "02-02-2016"},                       // không lớp -> chỉ admin
	))

	h := NewStudentPortHandler(jobs)
	c, rec := newRequest(t, http.MethodPost, "/students/import/confirm", map[string]any{"job_id": job.ID})
	asUser(c, leader)
	require.NoError(t, h.ImportConfirm(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["added"])
	assert.EqualValues(t, 2, body["skipped"])
}
