package errors

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromResponse_BaseMapping(t *testing.T) {
	tcs := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"invalid_argument", http.StatusBadRequest, "invalid_argument"},
		{"unauth", http.StatusUnauthorized, "unauthenticated"},
		{"perm_denied", http.StatusForbidden, "permission_denied"},
		{"not_found", http.StatusNotFound, "not_found"},
		{"already_exists", http.StatusConflict, "already_exists"},
		{"failed_prec", http.StatusPreconditionFailed, "failed_precondition"},
		{"unprocessable", http.StatusUnprocessableEntity, "unprocessable"},
		{"res_exhausted", http.StatusTooManyRequests, "resource_exhausted"},
		{"canceled", StatusClientClosedRequest, "canceled"},
		{"unimplemented", http.StatusNotImplemented, "unimplemented"},
		{"unavailable", http.StatusServiceUnavailable, "unavailable"},
		{"deadline", http.StatusGatewayTimeout, "deadline_exceeded"},
		{"other_4xx", http.StatusTeapot, "failed_request"},
		{"internal", http.StatusInternalServerError, "internal"},
		{"bad_gateway", http.StatusBadGateway, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			e := FromResponse(tc.status, nil, nil)
			require.Equal(t, tc.status, e.Status)
			require.Equal(t, tc.wantCode, e.Code)
			require.NotEmpty(t, e.Message)
		})
	}
}

func TestFromResponse_StringDetail(t *testing.T) {
	h := http.Header{}
	h.Set("X-Request-Id", "rid-1")

	e := FromResponse(http.StatusConflict, h, []byte(`{"detail":"Email already registered"}`))
	require.Equal(t, "already_exists", e.Code)
	require.Equal(t, "Email already registered", e.Message)
	require.Equal(t, "rid-1", e.RequestID)
	require.Contains(t, e.Error(), "request_id=rid-1")
}

func TestFromResponse_ValidationDetail(t *testing.T) {
	body := []byte(`{"detail":[{"loc":["body","password"],"msg":"ensure this value has at least 8 characters","type":"value_error"},{"loc":["body","email"],"msg":"bad","type":"value_error"}]}`)

	e := FromResponse(http.StatusUnprocessableEntity, nil, body)
	require.Len(t, e.Fields, 2)
	require.Equal(t, "password", e.Fields[0].Field())
	require.Equal(t, "password: ensure this value has at least 8 characters", e.Message)
}

func TestFromResponse_NonJSONBody_UsesStatusMessage(t *testing.T) {
	e := FromResponse(http.StatusBadGateway, nil, []byte("<html>bad gateway</html>"))
	require.Equal(t, "internal error", e.Message)
	require.Empty(t, e.Fields)
}

func TestIsStatus_IsCode_ThroughWrapping(t *testing.T) {
	base := FromResponse(http.StatusNotFound, nil, []byte(`{"detail":"Skill not found"}`))
	err := fmt.Errorf("api.GetSkill: %w", base)

	require.True(t, IsStatus(err, http.StatusNotFound))
	require.False(t, IsStatus(err, http.StatusConflict))
	require.True(t, IsCode(err, "not_found"))

	got, ok := As(err)
	require.True(t, ok)
	require.Equal(t, "Skill not found", got.Message)

	require.False(t, IsStatus(fmt.Errorf("plain"), http.StatusNotFound))
}

func TestWriteDetail_EchoesRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("X-Request-Id", "rid-42")
	w := httptest.NewRecorder()

	WriteDetail(w, r, http.StatusNotFound, "Resource not found")

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.Equal(t, "rid-42", w.Header().Get("X-Request-Id"))
	require.JSONEq(t, `{"detail":"Resource not found"}`, w.Body.String())
}
