package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/caobathien/Church/apperrors"
	"github.com/caobathien/Church/attendance"
	"github.com/caobathien/Church/authz"
	"github.com/caobathien/Church/middlewares"
	"github.com/caobathien/Church/models"
)

type AttendanceHandler struct {
	Ledger *attendance.Service
}

func NewAttendanceHandler(ledger *attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{Ledger: ledger}
}

type attendancePayload struct {
	Date string `json:"date" validate:"required"`
	// entries: student_id (dạng chuỗi vì là key JSON) -> trạng thái.
	// Thiếu nhi trong lớp không có trong entries sẽ được tính "present".
	Entries map[string]models.AttendanceStatus `json:"entries"`
}

func (p *attendancePayload) entriesByID() (map[uint]models.AttendanceStatus, error) {
	out := make(map[uint]models.AttendanceStatus, len(p.Entries))
	for k, v := range p.Entries {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil || id == 0 {
			return nil, apperrors.NewValidation("entries", "Mã thiếu nhi không hợp lệ: "+k)
		}
		out[uint(id)] = v
	}
	return out, nil
}

// POST /classes/:id/attendance — điểm danh cả lớp cho một ngày.
func (h *AttendanceHandler) Take(c echo.Context) error {
	classID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	actor := middlewares.CurrentUser(c)
	if err := authz.Authorize(actor, authz.ActionMutate, authz.Class(classID)); err != nil {
		return writeError(c, err)
	}

	var req attendancePayload
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	entries, err := req.entriesByID()
	if err != nil {
		return writeError(c, err)
	}

	if err := h.Ledger.Take(classID, req.Date, entries, actor); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

// PUT /classes/:id/attendance/:date — sửa điểm danh ngày đã ghi.
func (h *AttendanceHandler) Update(c echo.Context) error {
	classID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	actor := middlewares.CurrentUser(c)
	if err := authz.Authorize(actor, authz.ActionMutate, authz.Class(classID)); err != nil {
		return writeError(c, err)
	}

	var req attendancePayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Date = c.Param("date")
	entries, err := req.entriesByID()
	if err != nil {
		return writeError(c, err)
	}

	if err := h.Ledger.Update(classID, req.Date, entries, actor); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// GET /classes/:id/attendance — lịch sử các ngày đã điểm danh, guest xem được.
func (h *AttendanceHandler) History(c echo.Context) error {
	classID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := authz.Authorize(middlewares.CurrentUser(c), authz.ActionView, authz.Class(classID)); err != nil {
		return writeError(c, err)
	}

	stats, err := h.Ledger.HistoryFor(classID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GET /classes/:id/attendance/:date — điểm danh một ngày, theo thiếu nhi.
func (h *AttendanceHandler) ForDate(c echo.Context) error {
	classID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := authz.Authorize(middlewares.CurrentUser(c), authz.ActionView, authz.Class(classID)); err != nil {
		return writeError(c, err)
	}

	byStudent, err := h.Ledger.ForDate(classID, c.Param("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, byStudent)
}
