package portal_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-finance/finance/internal/invoices"
	"github.com/campus-finance/finance/internal/platform/memstore"
	"github.com/campus-finance/finance/internal/portal"
	"github.com/campus-finance/finance/internal/shared"
	"github.com/campus-finance/finance/internal/view"
)

var tokenPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

type portalClient struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
	token   string
}

func newPortal(t *testing.T) (*portalClient, *invoices.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := shared.NewSessionManager(client, "finance_session", time.Hour, false)
	csrf := shared.NewCSRFManager("portal-secret")
	engine, err := view.NewEngine()
	require.NoError(t, err)
	messages, err := portal.NewMessages("en-GB")
	require.NoError(t, err)

	store := memstore.New()
	_, err = store.Accounts().Create(context.Background(), "c3429928")
	require.NoError(t, err)
	svc := invoices.NewService(store.Invoices(), store.Accounts(), invoices.ServiceConfig{})

	r := chi.NewRouter()
	r.Use(sessions.Middleware(nil), csrf.Middleware(logger))
	portal.NewHandler(logger, svc, engine, csrf, messages).MountRoutes(r)

	return &portalClient{t: t, handler: r}, svc
}

func (c *portalClient) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return c.do(req)
}

func (c *portalClient) post(target string, form url.Values) *httptest.ResponseRecorder {
	if form.Get(shared.CSRFFormField) == "" {
		form.Set(shared.CSRFFormField, c.token)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *portalClient) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	if cookies := rr.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}
	if m := tokenPattern.FindStringSubmatch(rr.Body.String()); m != nil {
		c.token = m[1]
	}
	return rr
}

func createInvoice(t *testing.T, svc *invoices.Service) *invoices.Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), invoices.CreateInput{
		Amount:    decimal.RequireFromString("15.00"),
		DueDate:   time.Date(2021, 11, 6, 0, 0, 0, 0, time.UTC),
		Type:      invoices.TypeLibraryFine,
		StudentID: "c3429928",
	})
	require.NoError(t, err)
	return inv
}

func TestRootRedirectsToPortal(t *testing.T) {
	c, _ := newPortal(t)

	rr := c.get("/")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/portal", rr.Header().Get("Location"))
}

func TestPortalPagesRenderLookupForm(t *testing.T) {
	c, _ := newPortal(t)

	for _, path := range []string{"/portal", "/portal/invoice"} {
		rr := c.get(path)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invoice Payment Portal")
		assert.Contains(t, rr.Body.String(), `action="/portal/invoice"`)
	}
	assert.NotEmpty(t, c.token)
}

func TestFindAndPayInvoice(t *testing.T) {
	c, svc := newPortal(t)
	inv := createInvoice(t, svc)
	c.get("/portal")

	rr := c.post("/portal/invoice", url.Values{"reference": {inv.Reference}})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, inv.Reference)
	assert.Contains(t, body, "£15.00")
	assert.Contains(t, body, "06 Nov 2021")
	assert.Contains(t, body, `action="/portal/pay"`)

	rr = c.post("/portal/pay", url.Values{"reference": {inv.Reference}})
	require.Equal(t, http.StatusOK, rr.Code)
	body = rr.Body.String()
	assert.Contains(t, body, "Invoice paid successfully.")
	assert.Contains(t, body, "PAID")
	assert.NotContains(t, body, `action="/portal/pay"`)

	rr = c.post("/portal/pay", url.Values{"reference": {inv.Reference}})
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Contains(t, rr.Body.String(), "You can't pay an invoice that is in the PAID status")
}

func TestPortalNotFoundIsPlainText(t *testing.T) {
	c, _ := newPortal(t)
	c.get("/portal")

	rr := c.post("/portal/invoice", url.Values{"reference": {""}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Could not find invoice.", rr.Body.String())

	rr = c.post("/portal/invoice", url.Values{"reference": {"MISSING1"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Could not find invoice for reference MISSING1", rr.Body.String())

	rr = c.post("/portal/pay", url.Values{})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Could not find invoice.", rr.Body.String())
}

func TestPortalRejectsMissingCSRFToken(t *testing.T) {
	c, svc := newPortal(t)
	inv := createInvoice(t, svc)
	c.get("/portal")

	rr := c.post("/portal/pay", url.Values{"reference": {inv.Reference}, shared.CSRFFormField: {"forged"}})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	got, err := svc.GetByReference(context.Background(), inv.Reference)
	require.NoError(t, err)
	assert.Equal(t, invoices.StatusOutstanding, got.Status)
}
