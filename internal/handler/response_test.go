package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"go-user-service/internal/model"
	"go-user-service/pkg/apierror"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()

	var body model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(rec, http.StatusOK, "User found", map[string]string{"name": "alice"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	require.Equal(t, model.StatusSuccess, body.Status)
	require.Equal(t, "User found", body.Message)
	require.Nil(t, body.Count)
	require.NotNil(t, body.Data)
}

func TestWriteSuccessCountEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccessCount(rec, http.StatusOK, "2 users found", 2, []string{"a", "b"})

	body := decodeBody(t, rec)
	require.NotNil(t, body.Count)
	require.Equal(t, int64(2), *body.Count)
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"api error passthrough", apierror.Unauthorized("invalid credentials"), http.StatusUnauthorized, "invalid credentials"},
		{"wrapped api error", errors.Join(errors.New("ctx"), apierror.Conflict("user email already exists")), http.StatusConflict, "user email already exists"},
		{"user not found", model.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"invalid token", model.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
		{"store unavailable", errors.Join(model.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable, "Service unavailable"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "Unexpected server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			require.Equal(t, tc.status, rec.Code)
			body := decodeBody(t, rec)
			require.Equal(t, model.StatusFail, body.Status)
			require.Equal(t, tc.message, body.Message)
		})
	}
}
