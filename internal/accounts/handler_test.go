package accounts_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-finance/finance/internal/accounts"
	"github.com/campus-finance/finance/internal/platform/memstore"
)

type linkDoc struct {
	Href string `json:"href"`
}

type accountDoc struct {
	ID                    int64              `json:"id"`
	StudentID             string             `json:"studentId"`
	HasOutstandingBalance bool               `json:"hasOutstandingBalance"`
	Links                 map[string]linkDoc `json:"_links"`
}

func newRouter(t *testing.T) (http.Handler, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := accounts.NewService(store.Accounts(), store.Invoices())
	r := chi.NewRouter()
	accounts.NewHandler(logger, svc, nil).MountRoutes(r)
	return r, store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPostAccountReturnsHALWithLocation(t *testing.T) {
	h, _ := newRouter(t)

	rr := do(t, h, http.MethodPost, "/accounts", `{"studentId":"c3429928"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "application/hal+json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "http://example.com/accounts/1", rr.Header().Get("Location"))

	var doc accountDoc
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Equal(t, int64(1), doc.ID)
	assert.False(t, doc.HasOutstandingBalance)
	assert.Equal(t, "http://example.com/accounts/1", doc.Links["self"].Href)
	assert.Equal(t, "http://example.com/accounts/student/c3429928", doc.Links["student"].Href)
	assert.Equal(t, "http://example.com/accounts", doc.Links["accounts"].Href)
}

func TestPostAccountErrors(t *testing.T) {
	h, _ := newRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/accounts", `{"studentId":"dup"}`).Code)

	cases := []struct {
		name   string
		body   string
		status int
		text   string
	}{
		{"duplicate", `{"studentId":"dup"}`, http.StatusUnprocessableEntity, "An account already exists for student ID dup."},
		{"missing student", `{}`, http.StatusUnprocessableEntity, "Not a valid account."},
		{"malformed", `{"studentId":`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/accounts", tc.body)
			assert.Equal(t, tc.status, rr.Code)
			if tc.text != "" {
				assert.Equal(t, tc.text, rr.Body.String())
			}
		})
	}
}

func TestGetAccountNotFoundIsPlainText(t *testing.T) {
	h, _ := newRouter(t)

	rr := do(t, h, http.MethodGet, "/accounts/9", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Could not find account 9", rr.Body.String())
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))

	rr = do(t, h, http.MethodGet, "/accounts/student/ghost", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Could not find account for student ID ghost", rr.Body.String())

	rr = do(t, h, http.MethodGet, "/accounts/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListAccountsEmbedsAccountList(t *testing.T) {
	h, _ := newRouter(t)

	rr := do(t, h, http.MethodGet, "/accounts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"_links":{"self":{"href":"http://example.com/accounts"}}}`, rr.Body.String())

	do(t, h, http.MethodPost, "/accounts", `{"studentId":"a"}`)
	do(t, h, http.MethodPost, "/accounts", `{"studentId":"b"}`)

	rr = do(t, h, http.MethodGet, "/accounts", "")
	var doc struct {
		Embedded struct {
			AccountList []accountDoc `json:"accountList"`
		} `json:"_embedded"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	require.Len(t, doc.Embedded.AccountList, 2)
	assert.Equal(t, "a", doc.Embedded.AccountList[0].StudentID)
	assert.Equal(t, "b", doc.Embedded.AccountList[1].StudentID)
}

func TestPutAccountUpserts(t *testing.T) {
	h, _ := newRouter(t)

	rr := do(t, h, http.MethodPut, "/accounts/5", `{"studentId":"c5"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "http://example.com/accounts/5", rr.Header().Get("Location"))

	rr = do(t, h, http.MethodPut, "/accounts/5", `{"studentId":"c5-new"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodGet, "/accounts/student/c5-new", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var doc accountDoc
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Equal(t, int64(5), doc.ID)
}

func TestPutAccountRejectsNonPositiveID(t *testing.T) {
	h, store := newRouter(t)

	for _, target := range []string{"/accounts/0", "/accounts/-7"} {
		rr := do(t, h, http.MethodPut, target, `{"studentId":"ghost"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, target)
		assert.Equal(t, "Not a valid account.", rr.Body.String())
	}

	list, err := store.Accounts().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	rr := do(t, h, http.MethodPost, "/accounts", `{"studentId":"ghost"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = do(t, h, http.MethodPost, "/accounts", `{"studentId":"ghost"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "An account already exists for student ID ghost.", rr.Body.String())
}

func TestDeleteAccount(t *testing.T) {
	h, _ := newRouter(t)
	do(t, h, http.MethodPost, "/accounts", `{"studentId":"gone"}`)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/accounts/1", "").Code)
	rr := do(t, h, http.MethodDelete, "/accounts/1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Could not find account 1", rr.Body.String())
}
