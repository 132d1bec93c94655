// Package httpx provides HTTP response utilities.
package httpx

import (
	"net/http"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

var kindStatus = map[shared.Kind]int{
	shared.KindNotFound:               http.StatusNotFound,
	shared.KindCapacityExceeded:       http.StatusConflict,
	shared.KindInvalidQuantity:        http.StatusUnprocessableEntity,
	shared.KindStorageAlreadyAttached: http.StatusConflict,
	shared.KindStorageNotAttached:     http.StatusConflict,
	shared.KindInventoryNotEmpty:      http.StatusConflict,
	shared.KindProductInUse:           http.StatusConflict,
	shared.KindValidation:             http.StatusBadRequest,
	shared.KindDuplicate:              http.StatusConflict,
	shared.KindUnauthorized:           http.StatusUnauthorized,
	shared.KindForbidden:              http.StatusForbidden,
}

// StatusFor returns the stable HTTP status for an error kind.
func StatusFor(kind shared.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondError maps domain errors to HTTP responses.
func RespondError(w http.ResponseWriter, err error) {
	kind := shared.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusInternalServerError {
		Problem(w, status, shared.KindInternal, "internal error")
		return
	}
	Problem(w, status, kind, shared.UserSafeMessage(err))
}
