package handlers

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/caobathien/Church/apperrors"
)

// validate dùng chung cho mọi handler; báo lỗi theo tên field trong JSON.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate: Bind payload rồi kiểm tra tag validate; lỗi field trả
// thẳng dạng *apperrors.ValidationError để writeError xử lý thống nhất.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := map[string]string{}
			for _, fe := range verrs {
				fields[fe.Field()] = validationMessage(fe)
			}
			return &apperrors.ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Trường này là bắt buộc."
	case "email":
		return "Email không hợp lệ."
	case "min":
		return "Giá trị quá ngắn (tối thiểu " + fe.Param() + ")."
	case "max":
		return "Giá trị quá dài (tối đa " + fe.Param() + ")."
	case "gte":
		return "Giá trị phải ≥ " + fe.Param() + "."
	case "lte":
		return "Giá trị phải ≤ " + fe.Param() + "."
	case "oneof":
		return "Giá trị không nằm trong danh sách cho phép."
	default:
		return "Giá trị không hợp lệ."
	}
}

// writeError là chỗ duy nhất đổi lỗi nghiệp vụ thành HTTP response.
func writeError(c echo.Context, err error) error {
	var (
		httpErr    *echo.HTTPError
		forbidden  *apperrors.Forbidden
		validation *apperrors.ValidationError
		recorded   *apperrors.AlreadyRecorded
		conflict   *apperrors.ConflictOnDelete
		storageIO  *apperrors.StorageIO
	)
	switch {
	case errors.As(err, &httpErr):
		return err
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "UNAUTHENTICATED"})
	case errors.As(err, &forbidden):
		return c.JSON(http.StatusForbidden, map[string]any{"error": "FORBIDDEN", "message": forbidden.Reason})
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	case errors.As(err, &validation):
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{"error": "VALIDATION_ERROR", "fields": validation.Fields})
	case errors.As(err, &recorded):
		return c.JSON(http.StatusConflict, map[string]any{"error": "ALREADY_RECORDED", "message": recorded.Error()})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, map[string]any{"error": "CONFLICT_ON_DELETE", "message": conflict.Reason})
	case errors.As(err, &storageIO):
		log.Printf("[storage] %v", storageIO.Unwrap())
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
	default:
		log.Printf("[internal] %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "INTERNAL_ERROR"})
	}
}

// uintParam đọc một path param dạng số; 0 là không hợp lệ.
func uintParam(c echo.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	return uint(n), nil
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
