package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

func TestRespondErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   shared.Kind
	}{
		{shared.Errorf(shared.KindNotFound, "inventory x not found"), http.StatusNotFound, shared.KindNotFound},
		{shared.Errorf(shared.KindCapacityExceeded, "too heavy"), http.StatusConflict, shared.KindCapacityExceeded},
		{shared.Errorf(shared.KindInvalidQuantity, "bad qty"), http.StatusUnprocessableEntity, shared.KindInvalidQuantity},
		{shared.ErrStorageAlreadyAttached, http.StatusConflict, shared.KindStorageAlreadyAttached},
		{shared.ErrUnauthorized, http.StatusUnauthorized, shared.KindUnauthorized},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, shared.KindInternal},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code)
		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, tc.kind, body.Kind)
		require.False(t, body.Success)
		if tc.status == http.StatusInternalServerError {
			require.Equal(t, "internal error", body.Message)
		}
	}
}

type sample struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gt=0"`
}

func TestDecodeAndValidate(t *testing.T) {
	v := NewValidator()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":"p","quantity":3}`))
	var ok sample
	require.NoError(t, DecodeJSON(req, &ok))
	require.NoError(t, ValidateStruct(v, ok))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":0}`))
	var bad sample
	require.NoError(t, DecodeJSON(req, &bad))
	err := ValidateStruct(v, bad)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "productId: is required")
	require.Contains(t, err.Error(), "quantity: must be greater than 0")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":"p","extra":1}`))
	require.ErrorIs(t, DecodeJSON(req, &bad), shared.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":"p"} {}`))
	require.ErrorIs(t, DecodeJSON(req, &bad), shared.ErrValidation)

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	require.ErrorIs(t, DecodeJSON(req, &bad), shared.ErrValidation)
	require.NoError(t, DecodeOptionalJSON(req, &bad))
}

func TestDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Data(rec, http.StatusCreated, map[string]string{"id": "1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"success":true,"data":{"id":"1"}}`, rec.Body.String())
}
