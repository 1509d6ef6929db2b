package transfers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			httpx.FieldProblem(w, "year", "an invalid")
			return
		}
		filter.Year = &year
	}
	if v := r.URL.Query().Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			httpx.FieldProblem(w, "month", "lună invalidă")
			return
		}
		filter.Month = &month
	}
	if v := r.URL.Query().Get("date_from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			httpx.FieldProblem(w, "date_from", "dată invalidă")
			return
		}
		filter.DateFrom = &from
	}
	if v := r.URL.Query().Get("date_to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			httpx.FieldProblem(w, "date_to", "dată invalidă")
			return
		}
		filter.DateTo = &to
	}

	transfers, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]TransferView, 0, len(transfers))
	for i := range transfers {
		views = append(views, NewTransferView(&transfers[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"transfers":  views,
		"pagination": shared.NewPagination(filter.Page, filter.PerPage, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "transferID")
	if !ok {
		return
	}
	transfer, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewTransferView(transfer))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if !h.decode(w, r, &req) {
		return
	}
	transfer, err := h.service.Create(r.Context(), req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewTransferView(transfer))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "transferID")
	if !ok {
		return
	}
	var req UpdateTransferRequest
	if !h.decode(w, r, &req) {
		return
	}
	transfer, err := h.service.Update(r.Context(), id, req, shared.ActorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewTransferView(transfer))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "transferID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, shared.ActorID(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))

	rows, totals, sessions, err := h.service.MonthlyReport(r.Context(), year, month)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]TransferView, 0, len(sessions))
	for i := range sessions {
		views = append(views, NewTransferView(&sessions[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"year":      year,
		"month":     month,
		"entries":   rows,
		"totals":    totals,
		"transfers": views,
	})
}

func (h *Handler) QuarterlyReport(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", time.Now().UTC().Year())
	quarter := queryInt(r, "quarter", 1)

	rows, totals, err := h.service.QuarterlyReport(r.Context(), year, quarter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"year":    year,
		"quarter": quarter,
		"entries": rows,
		"totals":  totals,
	})
}

func (h *Handler) Penitentiaries(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Penitentiaries())
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
