// Package portal serves the browser flow for looking up and paying an
// invoice by its reference.
package portal

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/campus-finance/finance/internal/invoices"
	"github.com/campus-finance/finance/internal/platform/httpx"
	"github.com/campus-finance/finance/internal/shared"
	"github.com/campus-finance/finance/internal/view"
)

const pageTitle = "Invoice Payment Portal"

// InvoiceService is the slice of the lifecycle engine the portal drives.
type InvoiceService interface {
	GetByReference(ctx context.Context, reference string) (*invoices.Invoice, error)
	Pay(ctx context.Context, reference string) (*invoices.Invoice, error)
}

// Handler serves the portal pages.
type Handler struct {
	logger    *slog.Logger
	invoices  InvoiceService
	templates *view.Engine
	csrf      *shared.CSRFManager
	messages  *Messages
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, svc InvoiceService, templates *view.Engine, csrf *shared.CSRFManager, messages *Messages) *Handler {
	return &Handler{logger: logger, invoices: svc, templates: templates, csrf: csrf, messages: messages}
}

// MountRoutes registers portal routes. The caller provides session and CSRF
// middleware on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/portal", h.showPortal)
	r.Get("/portal/invoice", h.showPortal)
	r.Post("/portal/invoice", h.findInvoice)
	r.Post("/portal/pay", h.payInvoice)
}

type invoiceDetail struct {
	Reference string
	StudentID string
	Type      invoices.Type
	Amount    decimal.Decimal
	DueDate   time.Time
	Status    invoices.Status
	Payable   bool
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/portal", http.StatusFound)
}

func (h *Handler) showPortal(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/portal.html", nil, nil)
}

func (h *Handler) findInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.GetByReference(r.Context(), formReference(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.render(w, r, "pages/invoice.html", detail(inv), nil)
}

func (h *Handler) payInvoice(w http.ResponseWriter, r *http.Request) {
	reference := formReference(r)
	inv, err := h.invoices.Pay(r.Context(), reference)
	if err != nil {
		h.logger.Warn("portal payment rejected", slog.String("reference", reference), slog.Any("error", err))
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.logger.Info("invoice paid through portal", slog.String("reference", inv.Reference))
	flash := &shared.FlashMessage{
		Kind:    "success",
		Message: h.messages.Text(r.Header.Get("Accept-Language"), MsgInvoicePaid),
	}
	h.render(w, r, "pages/invoice.html", detail(inv), flash)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data any, flash *shared.FlashMessage) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrf.EnsureToken(sess)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if flash == nil && sess != nil {
		flash = sess.PopFlash()
	}
	if err := h.templates.Render(w, http.StatusOK, page, view.TemplateData{
		Title:     pageTitle,
		CSRFToken: token,
		Flash:     flash,
		Data:      data,
	}); err != nil {
		h.logger.Error("render portal page", slog.String("page", page), slog.Any("error", err))
	}
}

func formReference(r *http.Request) string {
	return strings.TrimSpace(r.PostFormValue("reference"))
}

func detail(inv *invoices.Invoice) invoiceDetail {
	return invoiceDetail{
		Reference: inv.Reference,
		StudentID: inv.StudentID,
		Type:      inv.Type,
		Amount:    inv.Amount,
		DueDate:   inv.DueDate,
		Status:    inv.Status,
		Payable:   invoices.CanTransition(inv.Status, invoices.StatusPaid),
	}
}
