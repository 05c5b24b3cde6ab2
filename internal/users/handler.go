package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campus-finance/finance/internal/hal"
	"github.com/campus-finance/finance/internal/platform/httpx"
)

type userRequest struct {
	Name string `json:"name" validate:"required,max=128"`
	Role string `json:"role" validate:"max=64"`
}

// Handler serves /users.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	if validate == nil {
		validate = validator.New()
	}
	return &Handler{logger: logger, service: service, validator: validate}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.list)
	r.Post("/users", h.create)
	r.Get("/users/{id}", h.show)
	r.Put("/users/{id}", h.replace)
	r.Delete("/users/{id}", h.delete)
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
	u, err := h.service.Create(r.Context(), req.Name, req.Role)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.respond(w, r, http.StatusCreated, *u)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.respond(w, r, http.StatusOK, *u)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	u, err := h.service.Replace(r.Context(), id, req.Name, req.Role)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.respond(w, r, http.StatusCreated, *u)
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
	h.logger.Info("user deleted", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (userRequest, bool) {
	var req userRequest
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

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, u User) {
	res, err := Present(hal.BaseURL(r), u)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if status == http.StatusCreated {
		w.Header().Set("Location", res.Self())
	}
	httpx.HAL(w, status, res)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Text(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}
