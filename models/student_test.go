package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestDiemTongAllScores(t *testing.T) {
	s := Student{
		DiemMieng:   f(8),
		DiemGiuaKi1: f(7),
		DiemCuoiKi1: f(9),
		DiemGiuaKi2: f(6),
		DiemCuoiKi2: f(10),
	}
	assert.InDelta(t, 8.0, s.DiemTong(), 1e-9)
}

func TestDiemTongMissingScoresCountAsZero(t *testing.T) {
	// chỉ có một cột điểm: 8 / 5 = 1.6, không phải 8
	s := Student{DiemMieng: f(8)}
	assert.InDelta(t, 1.6, s.DiemTong(), 1e-9)

	empty := Student{}
	assert.Zero(t, empty.DiemTong())
}

func TestAttendanceStatusValid(t *testing.T) {
	assert.True(t, StatusPresent.Valid())
	assert.True(t, StatusAbsent.Valid())
	assert.True(t, StatusLate.Valid())
	assert.False(t, AttendanceStatus("nghỉ hè").Valid())
	assert.False(t, AttendanceStatus("").Valid())
}

func TestUserRoles(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.True(t, (&User{Role: RoleHuynhTruong}).IsLeader())
	assert.True(t, (&User{Role: RoleDuTruong}).IsLeader())
	assert.False(t, (&User{Role: RoleGuest}).IsLeader())

	assert.True(t, ValidRole(RoleGuest))
	assert.False(t, ValidRole("giao_ly_vien"))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	u := User{}
	assert.NoError(t, u.SetPassword("matkhau123"))
	assert.NotEqual(t, "matkhau123", u.PasswordHash)
	assert.True(t, u.VerifyPassword("matkhau123"))
	assert.False(t, u.VerifyPassword("saimatkhau"))
}
