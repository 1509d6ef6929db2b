package petitions

import (
	"errors"
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
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 25),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := Status(v)
		if !ValidStatus(status) {
			httpx.FieldProblem(w, "status", "status necunoscut")
			return
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("petitioner_type"); v != "" {
		pt := PetitionerType(v)
		if !ValidPetitionerType(pt) {
			httpx.FieldProblem(w, "petitioner_type", "tip petiționar necunoscut")
			return
		}
		filter.PetitionerType = &pt
	}
	if v := r.URL.Query().Get("object_type"); v != "" {
		ot := ObjectType(v)
		if !ValidObjectType(ot) {
			httpx.FieldProblem(w, "object_type", "tip obiect necunoscut")
			return
		}
		filter.ObjectType = &ot
	}
	if v := r.URL.Query().Get("assigned_to"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpx.FieldProblem(w, "assigned_to", "identificator invalid")
			return
		}
		filter.AssignedTo = &id
	}

	petitions, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	today := h.service.Today()
	deadlines := h.service.Deadlines()
	views := make([]PetitionView, 0, len(petitions))
	for i := range petitions {
		views = append(views, NewPetitionView(&petitions[i], deadlines, today))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"petitions":  views,
		"pagination": shared.NewPagination(filter.Page, filter.PerPage, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "petitionID")
	if !ok {
		return
	}
	petition, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewPetitionView(petition, h.service.Deadlines(), h.service.Today()))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePetitionRequest
	if !h.decode(w, r, &req) {
		return
	}
	petition, err := h.service.Create(r.Context(), req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewPetitionView(petition, h.service.Deadlines(), h.service.Today()))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "petitionID")
	if !ok {
		return
	}
	var req UpdatePetitionRequest
	if !h.decode(w, r, &req) {
		return
	}
	petition, err := h.service.Update(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewPetitionView(petition, h.service.Deadlines(), h.service.Today()))
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "petitionID")
	if !ok {
		return
	}
	var req AssignRequest
	if !h.decode(w, r, &req) {
		return
	}
	petition, err := h.service.Assign(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewPetitionView(petition, h.service.Deadlines(), h.service.Today()))
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "petitionID")
	if !ok {
		return
	}
	var req ResolveRequest
	if !h.decode(w, r, &req) {
		return
	}
	petition, err := h.service.Resolve(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewPetitionView(petition, h.service.Deadlines(), h.service.Today()))
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 25)
	notifications, total, err := h.service.ListNotifications(r.Context(), shared.ActorID(r), page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"pagination":    shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "notificationID")
	if !ok {
		return
	}
	if err := h.service.MarkNotificationRead(r.Context(), shared.ActorID(r), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Notificarea a fost marcată ca citită."})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "corp invalid", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			httpx.FieldProblem(w, verrs[0].Field(), "valoare invalidă")
			return false
		}
		httpx.Problem(w, http.StatusBadRequest, "date invalide", err.Error())
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "identificator invalid", "identificatorul din cale nu este un UUID valid")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
