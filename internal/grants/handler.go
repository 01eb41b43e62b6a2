package grants

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campushq/campus-console/internal/permission"
	"github.com/campushq/campus-console/internal/platform/httpx"
	"github.com/campushq/campus-console/internal/profiles"
	"github.com/campushq/campus-console/internal/shared"
	"github.com/campushq/campus-console/internal/users"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Grants(r.Context(), userID)
	if err != nil {
		h.logger.Error("list grants", slog.Any("error", err), slog.Int64("user", userID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	stats, err := h.service.UserStats(r.Context(), userID)
	if err != nil {
		h.logger.Error("grant stats", slog.Any("error", err), slog.Int64("user", userID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req AssignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sel := Selection{ModuleIDs: req.ModuleIDs, CategoryIDs: req.CategoryIDs}
	if sel.Empty() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "selection is empty")
		return
	}

	result, err := h.service.Assign(r.Context(), actorID, userID, sel)
	if err != nil {
		h.respondMutationError(w, err, userID)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	moduleID, err := strconv.ParseInt(chi.URLParam(r, "moduleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid module id")
		return
	}
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	result, err := h.service.Revoke(r.Context(), actorID, userID, moduleID)
	if err != nil {
		h.respondMutationError(w, err, userID)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) EditPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	moduleID, err := strconv.ParseInt(chi.URLParam(r, "moduleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid module id")
		return
	}
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req EditPermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payload")
		return
	}
	perms := permission.Set{Read: req.Read, Write: req.Write, Delete: req.Delete, Export: req.Export}

	result, err := h.service.EditPermissions(r.Context(), actorID, userID, moduleID, perms)
	if err != nil {
		h.respondMutationError(w, err, userID)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error, userID int64) {
	switch {
	case errors.Is(err, ErrNoProfile):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Configuration Error",
			"user has no access profile and cannot receive module grants")
	case errors.Is(err, users.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, profiles.ErrProfileNotFound):
		// Data-integrity error: surfaced, never swallowed.
		h.logger.Error("profile integrity", slog.Any("error", err), slog.Int64("user", userID))
		httpx.Problem(w, http.StatusInternalServerError, "Data Integrity Error", err.Error())
	default:
		h.logger.Error("grant mutation", slog.Any("error", err), slog.Int64("user", userID))
		httpx.RespondError(w, httpx.ErrDependency)
	}
}
