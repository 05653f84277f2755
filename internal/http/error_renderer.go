package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gpjen/bookingroom/internal/data"
	"github.com/gpjen/bookingroom/internal/domain/model"
	apperrors "github.com/gpjen/bookingroom/internal/errors"
	"github.com/gpjen/bookingroom/internal/service"
)

// RenderError maps a service or data layer error onto an HTTP status and
// writes the JSON error body. Unknown errors become a 500 without leaking the
// internal message.
func RenderError(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: errors.New("internal server error")})
		return
	}
	WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: err})
}

func classifyError(err error) (int, string) {
	var invalidBed *model.ErrInvalidBedTransition
	var invalidBooking *data.ErrInvalidBookingTransition
	switch {
	case errors.As(err, &invalidBed), errors.As(err, &invalidBooking):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, service.ErrRoleInUse),
		errors.Is(err, service.ErrBedUnavailable):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrSystemRole):
		return http.StatusForbidden, "system_role"
	case errors.Is(err, service.ErrManualBedTransition),
		errors.Is(err, service.ErrInvalidSelector):
		return http.StatusBadRequest, "validation"
	case isNotFoundErr(err):
		return http.StatusNotFound, "not_found"
	case isConflictErr(err):
		return http.StatusConflict, "conflict"
	case errors.Is(err, data.ErrAssignmentRoleMissing),
		errors.Is(err, data.ErrGrantBuildingMissing),
		errors.Is(err, data.ErrUnknownPermissionKey),
		errors.Is(err, data.ErrBookingBedMissing):
		return http.StatusUnprocessableEntity, "unknown_reference"
	}

	mapped := apperrors.MapDBError(err)
	var appErr *apperrors.AppError
	if errors.As(mapped, &appErr) {
		return appErrorStatus(appErr), string(appErr.Code)
	}

	// Request validation errors come out of the model layer as plain errors.
	if isValidationMessage(err) {
		return http.StatusBadRequest, "validation"
	}
	return http.StatusInternalServerError, "internal"
}

func appErrorStatus(appErr *apperrors.AppError) int {
	switch appErr.Code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeValidation, apperrors.ErrCodeForeignKey:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func isNotFoundErr(err error) bool {
	for _, sentinel := range []error{
		data.ErrRoleNotFound,
		data.ErrPermissionNotFound,
		data.ErrAssignmentNotFound,
		data.ErrGrantNotFound,
		data.ErrBuildingNotFound,
		data.ErrRoomNotFound,
		data.ErrBedNotFound,
		data.ErrBookingNotFound,
		data.ErrWebhookSinkNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isConflictErr(err error) bool {
	for _, sentinel := range []error{
		data.ErrRoleNameExists,
		data.ErrPermissionKeyExists,
		data.ErrPermissionInUse,
		data.ErrAssignmentExists,
		data.ErrGrantExists,
		data.ErrBuildingCodeExists,
		data.ErrRoomCodeExists,
		data.ErrBedCodeExists,
		data.ErrBookingReferenceExists,
		data.ErrWebhookSinkNameExists,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// isValidationMessage recognizes the "x is required"/"must be" style errors
// returned by request Validate methods.
func isValidationMessage(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "must be") ||
		strings.Contains(msg, "invalid")
}
