package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/models"
)

func leaderOf(classIDs ...uint) *models.User {
	u := &models.User{ID: 10, Role: models.RoleHuynhTruong}
	for _, id := range classIDs {
		u.AssignedClasses = append(u.AssignedClasses, models.ClassModel{ID: id})
	}
	return u
}

func TestAuthorizeNilActor(t *testing.T) {
	err := Authorize(nil, ActionView, Class(1))
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}

func TestAuthorizeAdminBypassesEverything(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	var unassigned *uint

	assert.NoError(t, Authorize(admin, ActionView, Class(3)))
	assert.NoError(t, Authorize(admin, ActionMutate, Class(3)))
	assert.NoError(t, Authorize(admin, ActionMutate, StudentIn(unassigned)))
	assert.NoError(t, Authorize(admin, ActionAdminister, AdminOnly()))
}

func TestAuthorizeGuestViewOnly(t *testing.T) {
	guest := &models.User{ID: 2, Role: models.RoleGuest}

	assert.NoError(t, Authorize(guest, ActionView, Class(1)))

	err := Authorize(guest, ActionMutate, Class(1))
	var fb *apperrors.Forbidden
	assert.ErrorAs(t, err, &fb)

	err = Authorize(guest, ActionAdminister, AdminOnly())
	assert.ErrorAs(t, err, &fb)
}

func TestAuthorizeLeaderAssignedClass(t *testing.T) {
	leader := leaderOf(1, 2)

	assert.NoError(t, Authorize(leader, ActionMutate, Class(1)))
	assert.NoError(t, Authorize(leader, ActionMutate, Class(2)))

	var fb *apperrors.Forbidden
	assert.ErrorAs(t, Authorize(leader, ActionMutate, Class(3)), &fb)
}

func TestAuthorizeDuTruongSameAsHuynhTruong(t *testing.T) {
	du := leaderOf(5)
	du.Role = models.RoleDuTruong

	assert.NoError(t, Authorize(du, ActionMutate, Class(5)))

	var fb *apperrors.Forbidden
	assert.ErrorAs(t, Authorize(du, ActionMutate, Class(6)), &fb)
}

func TestAuthorizeUnassignedStudentAdminOnly(t *testing.T) {
	leader := leaderOf(1)
	var nilClass *uint

	// Thiếu nhi chưa xếp lớp: huynh trưởng nào cũng bị từ chối
	var fb *apperrors.Forbidden
	assert.ErrorAs(t, Authorize(leader, ActionMutate, StudentIn(nilClass)), &fb)

	// nhưng vẫn xem được
	assert.NoError(t, Authorize(leader, ActionView, StudentIn(nilClass)))
}

func TestAuthorizeLeaderCannotAdminister(t *testing.T) {
	leader := leaderOf(1, 2, 3)

	var fb *apperrors.Forbidden
	assert.ErrorAs(t, Authorize(leader, ActionAdminister, AdminOnly()), &fb)
}
