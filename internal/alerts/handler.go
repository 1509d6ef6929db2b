package alerts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/termene/termene/internal/platform/httpx"
	"github.com/termene/termene/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListRequest{
		UserID:  shared.ActorID(r),
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 25),
	}
	if raw := r.URL.Query().Get("alert_type"); raw != "" {
		class := Class(raw)
		req.Type = &class
	}
	if raw := r.URL.Query().Get("priority"); raw != "" {
		priority := Priority(raw)
		req.Priority = &priority
	}
	if raw := r.URL.Query().Get("is_read"); raw != "" {
		isRead := raw == "true"
		req.IsRead = &isRead
	}

	alerts, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list alerts failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if alerts == nil {
		alerts = []Alert{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"alerts":     alerts,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context(), shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.DashboardSummary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.GenerateForUser(r.Context(), shared.ActorID(r))
	if err != nil {
		h.logger.Error("generate alerts failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Alertele au fost generate.",
		"count":   count,
	})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		httpx.FieldProblem(w, "alertID", "invalid uuid")
		return
	}
	if err := h.service.MarkRead(r.Context(), shared.ActorID(r), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Alerta a fost marcată ca citită."})
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.MarkAllRead(r.Context(), shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Toate alertele au fost marcate ca citite.",
		"count":   count,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
