package persons

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/termene/termene/internal/platform/httpx"
	"github.com/termene/termene/internal/shared"
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
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Query:   r.URL.Query().Get("q"),
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 25),
	}

	people, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list persons failed", "error", err)
		httpx.RespondError(w, err)
		return
	}

	views := make([]PersonView, 0, len(people))
	for i := range people {
		summary, err := h.service.SentenceSummary(r.Context(), people[i].ID)
		if err != nil {
			h.logger.Error("sentence summary failed", "person_id", people[i].ID, "error", err)
			httpx.RespondError(w, err)
			return
		}
		views = append(views, NewPersonView(&people[i], summary))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"persons":    views,
		"pagination": shared.NewPagination(filter.Page, filter.PerPage, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	person, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.SentenceSummary(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewPersonView(person, summary))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if !h.decode(w, r, &req) {
		return
	}
	person, err := h.service.Create(r.Context(), req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewPersonView(person, SentenceSummary{}))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdatePersonRequest
	if !h.decode(w, r, &req) {
		return
	}
	person, err := h.service.Update(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.SentenceSummary(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewPersonView(person, summary))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, shared.ActorID(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			httpx.FieldProblem(w, fieldErrs[0].Field(), "failed validation rule: "+fieldErrs[0].Tag())
			return false
		}
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "personID"))
	if err != nil {
		httpx.FieldProblem(w, "personID", "invalid uuid")
		return uuid.Nil, false
	}
	return id, true
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
