package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/models"
)

func setup(t *testing.T) (*gorm.DB, *Service, *models.User) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	actor := &models.User{Username: "truong", Email: "truong@test.local", Role: models.RoleHuynhTruong}
	require.NoError(t, actor.SetPassword("matkhau123"))
	require.NoError(t, db.Create(actor).Error)

	return db, NewService(db), actor
}

func seedClass(t *testing.T, db *gorm.DB, studentNames ...string) (models.ClassModel, []models.Student) {
	t.Helper()
	class := models.ClassModel{Name: "Chiên Con 1"}
	require.NoError(t, db.Create(&class).Error)

	students := make([]models.Student, 0, len(studentNames))
	for _, name := range studentNames {
		st := models.Student{FullName: name, ClassID: &class.ID}
		require.NoError(t, db.Create(&st).Error)
		students = append(students, st)
	}
	return class, students
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-08")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-08", d)

	_, err = ParseDate("08/03/2026")
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestTakeFillsDefaultPresent(t *testing.T) {
	db, svc, actor := setup(t)
	class, students := seedClass(t, db, "An", "Bình", "Chi")

	// chỉ báo vắng một em, hai em còn lại mặc định có mặt
	err := svc.Take(class.ID, "2026-03-08", map[uint]models.AttendanceStatus{
		students[1].ID: models.StatusAbsent,
	}, actor)
	require.NoError(t, err)

	byStudent, err := svc.ForDate(class.ID, "2026-03-08")
	require.NoError(t, err)
	require.Len(t, byStudent, 3)
	assert.Equal(t, models.StatusPresent, byStudent[students[0].ID].Status)
	assert.Equal(t, models.StatusAbsent, byStudent[students[1].ID].Status)
	assert.Equal(t, models.StatusPresent, byStudent[students[2].ID].Status)
	assert.Equal(t, actor.ID, byStudent[students[0].ID].CreatedBy)
}

func TestTakeTwiceSameDayRejected(t *testing.T) {
	db, svc, actor := setup(t)
	class, students := seedClass(t, db, "An", "Bình")

	require.NoError(t, svc.Take(class.ID, "2026-03-08", nil, actor))

	err := svc.Take(class.ID, "2026-03-08", map[uint]models.AttendanceStatus{
		students[0].ID: models.StatusLate,
	}, actor)
	var ar *apperrors.AlreadyRecorded
	require.ErrorAs(t, err, &ar)
	assert.Equal(t, "2026-03-08", ar.Date)

	// lần bị từ chối không được ghi thêm dòng nào
	var cnt int64
	require.NoError(t, db.Model(&models.Attendance{}).Count(&cnt).Error)
	assert.EqualValues(t, 2, cnt)

	// ngày khác vẫn điểm danh bình thường
	require.NoError(t, svc.Take(class.ID, "2026-03-15", nil, actor))
}

func TestTakeInvalidInput(t *testing.T) {
	db, svc, actor := setup(t)
	class, students := seedClass(t, db, "An")

	var ve *apperrors.ValidationError
	err := svc.Take(class.ID, "hôm nay", nil, actor)
	assert.ErrorAs(t, err, &ve)

	err = svc.Take(class.ID, "2026-03-08", map[uint]models.AttendanceStatus{
		students[0].ID: "ngủ",
	}, actor)
	assert.ErrorAs(t, err, &ve)

	err = svc.Take(999, "2026-03-08", nil, actor)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateUpsertsAndKeepsDepartedRows(t *testing.T) {
	db, svc, actor := setup(t)
	class, students := seedClass(t, db, "An", "Bình")
	require.NoError(t, svc.Take(class.ID, "2026-03-08", nil, actor))

	// An rời lớp sau ngày điểm danh; Chi vào lớp sau ngày điểm danh
	require.NoError(t, db.Model(&students[0]).Update("class_id", nil).Error)
	late := models.Student{FullName: "Chi", ClassID: &class.ID}
	require.NoError(t, db.Create(&late).Error)

	err := svc.Update(class.ID, "2026-03-08", map[uint]models.AttendanceStatus{
		students[1].ID: models.StatusLate,    // đổi bản ghi sẵn có
		late.ID:        models.StatusPresent, // thêm mới
	}, actor)
	require.NoError(t, err)

	byStudent, err := svc.ForDate(class.ID, "2026-03-08")
	require.NoError(t, err)
	require.Len(t, byStudent, 3)
	// bản ghi của An không bị xoá dù đã rời lớp
	assert.Equal(t, models.StatusPresent, byStudent[students[0].ID].Status)
	assert.Equal(t, models.StatusLate, byStudent[students[1].ID].Status)
	assert.Equal(t, models.StatusPresent, byStudent[late.ID].Status)
}

func TestHistoryForOrderAndRate(t *testing.T) {
	db, svc, actor := setup(t)
	class, students := seedClass(t, db, "An", "Bình", "Chi")

	require.NoError(t, svc.Take(class.ID, "2026-03-01", map[uint]models.AttendanceStatus{
		students[0].ID: models.StatusAbsent,
	}, actor))
	require.NoError(t, svc.Take(class.ID, "2026-03-08", map[uint]models.AttendanceStatus{
		students[0].ID: models.StatusAbsent,
		students[1].ID: models.StatusLate,
	}, actor))

	stats, err := svc.HistoryFor(class.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// mới nhất trước
	assert.Equal(t, "2026-03-08", stats[0].Date)
	assert.Equal(t, "2026-03-01", stats[1].Date)

	assert.Equal(t, 3, stats[0].Total)
	assert.Equal(t, 1, stats[0].Present)
	assert.Equal(t, 1, stats[0].Absent)
	assert.Equal(t, 1, stats[0].Late)
	assert.InDelta(t, 33.3, stats[0].PresentRate, 0.01)

	assert.Equal(t, 2, stats[1].Present)
	assert.InDelta(t, 66.7, stats[1].PresentRate, 0.01)
}

func TestHistoryForEmptyClass(t *testing.T) {
	db, svc, _ := setup(t)
	class, _ := seedClass(t, db)

	stats, err := svc.HistoryFor(class.ID)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestDistinctDays(t *testing.T) {
	db, svc, actor := setup(t)
	class, _ := seedClass(t, db, "An")

	require.NoError(t, svc.Take(class.ID, "2026-03-01", nil, actor))
	require.NoError(t, svc.Take(class.ID, "2026-03-08", nil, actor))

	n, err := svc.DistinctDays(class.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
