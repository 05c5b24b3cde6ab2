package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campus-finance/finance/internal/hal"
	"github.com/campus-finance/finance/internal/platform/httpx"
)

// Handler serves the account REST resources.
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

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.list)
	r.Post("/accounts", h.create)
	r.Get("/accounts/student/{studentId}", h.showByStudent)
	r.Get("/accounts/{id}", h.show)
	r.Put("/accounts/{id}", h.updateOrCreate)
	r.Delete("/accounts/{id}", h.delete)
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

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	account, err := h.service.Create(r.Context(), req.StudentID)
	if err != nil {
		h.logger.Warn("create account", slog.String("student_id", req.StudentID), slog.Any("error", err))
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.logger.Info("account created", slog.Int64("id", account.ID), slog.String("student_id", account.StudentID))
	h.respondCreated(w, r, *account)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.respond(w, r, http.StatusOK, *account)
}

func (h *Handler) showByStudent(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetByStudentID(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.respond(w, r, http.StatusOK, *account)
}

// updateOrCreate keeps upsert semantics on PUT: an unknown id is created
// rather than rejected.
func (h *Handler) updateOrCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	account, err := h.service.UpdateOrCreate(r.Context(), id, req.StudentID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.respondCreated(w, r, *account)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.logger.Info("account deleted", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (AccountRequest, bool) {
	var req AccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, errNotValid())
		return req, false
	}
	return req, true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, account Account) {
	res, err := Present(hal.BaseURL(r), account)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.HAL(w, status, res)
}

func (h *Handler) respondCreated(w http.ResponseWriter, r *http.Request, account Account) {
	res, err := Present(hal.BaseURL(r), account)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	w.Header().Set("Location", res.Self())
	httpx.HAL(w, http.StatusCreated, res)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Text(w, http.StatusBadRequest, "Invalid account ID")
		return 0, false
	}
	return id, true
}
