package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		status      int
		contentType string
		body        string
	}{
		{"not found", NotFound("Could not find invoice %d", 7), http.StatusNotFound, "text/plain", "Could not find invoice 7"},
		{"validation", Invalid("Not a valid account."), http.StatusUnprocessableEntity, "text/plain", "Not a valid account."},
		{"duplicate", Duplicate("An account already exists for student ID %s.", "c1"), http.StatusUnprocessableEntity, "text/plain", "An account already exists for student ID c1."},
		{"malformed", Malformed("Request body is required."), http.StatusBadRequest, "text/plain", "Request body is required."},
		{"wrapped not found", fmt.Errorf("lookup: %w", NotFound("gone")), http.StatusNotFound, "text/plain", "lookup: gone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, nil, tc.err)
			assert.Equal(t, tc.status, rr.Code)
			assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), tc.contentType))
			assert.Equal(t, tc.body, rr.Body.String())
		})
	}
}

func TestRespondErrorInvalidTransitionIsProblem(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, InvalidTransition("You can't pay an invoice that is in the %s status", "PAID"))

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	require.Equal(t, ProblemContentType, rr.Header().Get("Content-Type"))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, "Method not allowed", problem.Title)
	assert.Equal(t, "You can't pay an invoice that is in the PAID status", problem.Detail)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, errors.New("pq: connection reset"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection reset")
}

func TestDecodeJSONRejectsEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(""))
	var target map[string]any
	err := DecodeJSON(req, &target)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeJSONRejectsTrailingDocuments(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"a":1}{"b":2}`))
	var target map[string]any
	err := DecodeJSON(req, &target)
	require.ErrorIs(t, err, ErrMalformed)
}
