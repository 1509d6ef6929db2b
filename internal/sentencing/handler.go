package sentencing

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
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 25),
	}
	if raw := r.URL.Query().Get("person_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.FieldProblem(w, "person_id", "invalid uuid")
			return
		}
		filter.PersonID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("crime_type"); raw != "" {
		ct := CrimeType(raw)
		if !ValidCrimeType(ct) {
			httpx.FieldProblem(w, "crime_type", "unknown crime type")
			return
		}
		filter.CrimeType = &ct
	}

	sentences, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list sentences failed", "error", err)
		httpx.RespondError(w, err)
		return
	}

	views := make([]SentenceView, 0, len(sentences))
	for i := range sentences {
		views = append(views, NewSentenceView(&sentences[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"sentences":  views,
		"pagination": shared.NewPagination(filter.Page, filter.PerPage, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	sentence, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSentenceRequest
	if !h.decode(w, r, &req) {
		return
	}
	sentence, err := h.service.Create(r.Context(), req, shared.ActorID(r))
	if err != nil {
		h.logger.Error("create sentence failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewSentenceView(sentence))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	var req UpdateSentenceRequest
	if !h.decode(w, r, &req) {
		return
	}
	sentence, err := h.service.Update(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	var req ReleaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	sentence, err := h.service.Release(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) Cumulate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	sentence, err := h.service.Cumulate(r.Context(), id, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	sentence, err := h.service.Recalculate(r.Context(), id, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) AddReduction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	var req AddReductionRequest
	if !h.decode(w, r, &req) {
		return
	}
	sentence, err := h.service.AddReduction(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewSentenceView(sentence))
}

func (h *Handler) DeleteReduction(w http.ResponseWriter, r *http.Request) {
	sentenceID, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}
	sentence, err := h.service.DeleteReduction(r.Context(), sentenceID, entryID, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) AddArrest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	var req ArrestPeriodRequest
	if !h.decode(w, r, &req) {
		return
	}
	sentence, err := h.service.AddArrest(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewSentenceView(sentence))
}

func (h *Handler) UpdateArrest(w http.ResponseWriter, r *http.Request) {
	sentenceID, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}
	var req ArrestPeriodRequest
	if !h.decode(w, r, &req) {
		return
	}
	sentence, err := h.service.UpdateArrest(r.Context(), sentenceID, entryID, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) DeleteArrest(w http.ResponseWriter, r *http.Request) {
	sentenceID, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}
	sentence, err := h.service.DeleteArrest(r.Context(), sentenceID, entryID, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) AddLaborCredit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	var req LaborCreditRequest
	if !h.decode(w, r, &req) {
		return
	}
	sentence, err := h.service.AddLaborCredit(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewSentenceView(sentence))
}

func (h *Handler) UpdateLaborCredit(w http.ResponseWriter, r *http.Request) {
	sentenceID, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}
	var req LaborCreditRequest
	if !h.decode(w, r, &req) {
		return
	}
	sentence, err := h.service.UpdateLaborCredit(r.Context(), sentenceID, entryID, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) DeleteLaborCredit(w http.ResponseWriter, r *http.Request) {
	sentenceID, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}
	sentence, err := h.service.DeleteLaborCredit(r.Context(), sentenceID, entryID, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSentenceView(sentence))
}

func (h *Handler) UpdateFraction(w http.ResponseWriter, r *http.Request) {
	sentenceID, ok := pathID(w, r, "sentenceID")
	if !ok {
		return
	}
	fractionID, ok := pathID(w, r, "fractionID")
	if !ok {
		return
	}
	var req UpdateFractionRequest
	if !h.decode(w, r, &req) {
		return
	}
	fraction, err := h.service.UpdateFraction(r.Context(), sentenceID, fractionID, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewFractionView(*fraction))
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

func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpx.FieldProblem(w, param, "invalid uuid")
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
