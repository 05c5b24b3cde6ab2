package invoices

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campus-finance/finance/internal/hal"
	"github.com/campus-finance/finance/internal/platform/httpx"
)

// Handler serves the invoice REST resources.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	if validate == nil {
		validate = validator.New()
	}
	return &Handler{logger: logger, service: service, validator: validate}
}

// MountRoutes registers invoice routes, including the per-account listing.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.list)
	r.Post("/invoices", h.create)
	r.Get("/invoices/{id}", h.show)
	r.Get("/invoices/reference/{reference}", h.showByReference)
	r.Delete("/invoices/{reference}/cancel", h.cancel)
	r.Put("/invoices/{reference}/pay", h.pay)
	r.Get("/accounts/{id}/invoices", h.listForAccount)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	doc, err := PresentList(hal.BaseURL(r), list)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.HAL(w, http.StatusOK, doc)
}

func (h *Handler) listForAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Text(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	list, err := h.service.ListForAccount(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	doc, err := PresentAccountList(hal.BaseURL(r), id, list)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.HAL(w, http.StatusOK, doc)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	studentID := req.Student()
	if studentID == "" {
		httpx.RespondError(w, h.logger, httpx.Invalid("You can't create an invoice without a valid student ID."))
		return
	}
	if err := h.validator.Struct(req); err != nil || !req.Amount.Valid {
		httpx.RespondError(w, h.logger, errNotValid())
		return
	}
	due, err := time.Parse(DateLayout, req.DueDate)
	if err != nil {
		httpx.RespondError(w, h.logger, errNotValid())
		return
	}

	inv, err := h.service.Create(r.Context(), CreateInput{
		Amount:    req.Amount.Decimal,
		DueDate:   due,
		Type:      Type(req.Type),
		StudentID: studentID,
	})
	if err != nil {
		h.logger.Warn("create invoice", slog.String("student_id", studentID), slog.Any("error", err))
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.logger.Info("invoice created",
		slog.Int64("id", inv.ID),
		slog.String("reference", inv.Reference),
		slog.String("student_id", inv.StudentID),
	)
	res, err := Present(hal.BaseURL(r), *inv)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	w.Header().Set("Location", res.Self())
	httpx.HAL(w, http.StatusCreated, res)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Text(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	h.respond(w, r, inv, err)
}

func (h *Handler) showByReference(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetByReference(r.Context(), chi.URLParam(r, "reference"))
	h.respond(w, r, inv, err)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	inv, err := h.service.Pay(r.Context(), reference)
	if err == nil {
		h.logger.Info("invoice paid", slog.String("reference", reference))
	}
	h.respond(w, r, inv, err)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	inv, err := h.service.Cancel(r.Context(), reference)
	if err == nil {
		h.logger.Info("invoice cancelled", slog.String("reference", reference))
	}
	h.respond(w, r, inv, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, inv *Invoice, err error) {
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	res, err := Present(hal.BaseURL(r), *inv)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.HAL(w, http.StatusOK, res)
}
