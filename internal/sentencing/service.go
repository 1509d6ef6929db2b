package sentencing

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/termene/termene/internal/sentencing/calc"
	"github.com/termene/termene/internal/shared"
)

// Service holds the sentence lifecycle and the adjustment ledgers. Every
// mutation that touches the start date, the nominal duration, or any ledger
// entry runs inside one transaction together with fraction regeneration, so
// readers never observe fractions computed from a stale duration.
type Service struct {
	repo   Repository
	audit  shared.AuditRecorder
	logger *slog.Logger
}

func NewService(repo Repository, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) Create(ctx context.Context, req CreateSentenceRequest, actorID uuid.UUID) (*Sentence, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}

	sentence := Sentence{
		ID:               uuid.New(),
		PersonID:         req.PersonID,
		CrimeType:        req.CrimeType,
		CrimeDescription: req.CrimeDescription,
		Years:            req.Years,
		Months:           req.Months,
		Days:             req.Days,
		StartDate:        dateOnly(req.StartDate),
		Status:           status,
		Notes:            req.Notes,
		CreatedBy:        actorID,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, sentence); err != nil {
			return fmt.Errorf("create sentence: %w", err)
		}
		return s.regenerateFractions(ctx, repo, &sentence, nil)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.create", sentence.ID, map[string]any{
		"person_id": sentence.PersonID.String(),
		"duration":  sentence.DurationDisplay(),
	})
	s.logger.Info("sentence created",
		"sentence_id", sentence.ID, "person_id", sentence.PersonID, "crime_type", sentence.CrimeType)

	return s.repo.Get(ctx, sentence.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sentence, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sentence, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 25
	}
	return s.repo.List(ctx, filter)
}

// Update edits sentence fields. When the start date or any duration
// component changes the fractions are regenerated in the same transaction,
// carrying fulfilment annotations over by fraction type.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateSentenceRequest, actorID uuid.UUID) (*Sentence, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}

		recompute := false
		if req.CrimeType != nil {
			if !ValidCrimeType(*req.CrimeType) {
				return shared.Validationf("crime_type", "tip infracțiune necunoscut")
			}
			sentence.CrimeType = *req.CrimeType
		}
		if req.CrimeDescription != nil {
			sentence.CrimeDescription = *req.CrimeDescription
		}
		if req.Years != nil && *req.Years != sentence.Years {
			sentence.Years = *req.Years
			recompute = true
		}
		if req.Months != nil && *req.Months != sentence.Months {
			sentence.Months = *req.Months
			recompute = true
		}
		if req.Days != nil && *req.Days != sentence.Days {
			sentence.Days = *req.Days
			recompute = true
		}
		if req.StartDate != nil && !dateOnly(*req.StartDate).Equal(sentence.StartDate) {
			sentence.StartDate = dateOnly(*req.StartDate)
			recompute = true
		}
		if req.Notes != nil {
			sentence.Notes = *req.Notes
		}

		if sentence.Years < 0 || sentence.Months < 0 || sentence.Days < 0 {
			return shared.Validationf("duration", "durata nu poate fi negativă")
		}
		if sentence.Years == 0 && sentence.Months == 0 && sentence.Days == 0 {
			return shared.Validationf("duration", "durata sentinței trebuie să fie cel puțin o zi")
		}

		if err := repo.Update(ctx, *sentence); err != nil {
			return fmt.Errorf("update sentence: %w", err)
		}
		if recompute {
			return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.update", id, nil)
	return s.repo.Get(ctx, id)
}

// Release finishes an active sentence.
func (s *Service) Release(ctx context.Context, id uuid.UUID, req ReleaseRequest, actorID uuid.UUID) (*Sentence, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if sentence.Status == StatusFinished {
			return shared.Validationf("status", "sentința este deja finalizată")
		}
		release := dateOnly(req.ReleaseDate)
		return repo.UpdateStatus(ctx, id, StatusFinished, &release)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.release", id, map[string]any{
		"release_date": req.ReleaseDate.Format(dateLayout),
	})
	s.logger.Info("sentence released", "sentence_id", id, "release_date", req.ReleaseDate.Format(dateLayout))
	return s.repo.Get(ctx, id)
}

// Cumulate marks a sentence as absorbed into a merged sentence. Its fractions
// stop being tracked by alert scans since only active sentences are scanned.
func (s *Service) Cumulate(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Sentence, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if sentence.Status != StatusActive && sentence.Status != StatusNew {
			return shared.Validationf("status", "doar sentințele active sau noi pot fi cumulate")
		}
		return repo.UpdateStatus(ctx, id, StatusCumulated, nil)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.cumulate", id, nil)
	return s.repo.Get(ctx, id)
}

// Recalculate regenerates the fractions of one sentence from its current
// state. The operation is idempotent: unchanged inputs produce the same
// dates, and fulfilment annotations are carried over by fraction type.
func (s *Service) Recalculate(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Sentence, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.recalculate", id, nil)
	return s.repo.Get(ctx, id)
}

// recalcConcurrency bounds the number of sentences recalculated in
// parallel. Each sentence runs in its own transaction.
const recalcConcurrency = 4

// RecalculateAll regenerates fractions for every active sentence, one
// transaction per sentence. Used by the scheduled recalculation job.
func (s *Service) RecalculateAll(ctx context.Context) (int, error) {
	sentences, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(recalcConcurrency)
	var count atomic.Int64
	for i := range sentences {
		sentence := &sentences[i]
		g.Go(func() error {
			err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
				return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
			})
			if err != nil {
				return fmt.Errorf("recalculate sentence %s: %w", sentence.ID, err)
			}
			count.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(count.Load()), err
	}
	return int(count.Load()), nil
}

func (s *Service) AddReduction(ctx context.Context, sentenceID uuid.UUID, req AddReductionRequest, actorID uuid.UUID) (*Sentence, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	reduction := Reduction{
		ID:           uuid.New(),
		SentenceID:   sentenceID,
		LegalArticle: req.LegalArticle,
		Years:        req.Years,
		Months:       req.Months,
		Days:         req.Days,
		AppliedDate:  dateOnly(req.AppliedDate),
		CreatedBy:    actorID,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, sentenceID)
		if err != nil {
			return err
		}
		if err := checkBudget(sentence, reduction.TotalDays(), 0); err != nil {
			return err
		}
		if err := repo.InsertReduction(ctx, reduction); err != nil {
			return fmt.Errorf("insert reduction: %w", err)
		}
		sentence.Reductions = append(sentence.Reductions, reduction)
		return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.reduction.add", sentenceID, map[string]any{
		"legal_article": req.LegalArticle,
		"days":          reduction.TotalDays(),
	})
	return s.repo.Get(ctx, sentenceID)
}

func (s *Service) DeleteReduction(ctx context.Context, sentenceID, id uuid.UUID, actorID uuid.UUID) (*Sentence, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, sentenceID)
		if err != nil {
			return err
		}
		if err := repo.DeleteReduction(ctx, sentenceID, id); err != nil {
			return err
		}
		removeEntry(&sentence.Reductions, id)
		return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.reduction.delete", sentenceID, map[string]any{"entry_id": id.String()})
	return s.repo.Get(ctx, sentenceID)
}

func (s *Service) AddArrest(ctx context.Context, sentenceID uuid.UUID, req ArrestPeriodRequest, actorID uuid.UUID) (*Sentence, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	arrest := PreventiveArrest{
		ID:         uuid.New(),
		SentenceID: sentenceID,
		StartDate:  dateOnly(req.StartDate),
		EndDate:    dateOnly(req.EndDate),
		CreatedBy:  actorID,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, sentenceID)
		if err != nil {
			return err
		}
		if err := checkBudget(sentence, arrest.Days(), 0); err != nil {
			return err
		}
		if err := repo.InsertArrest(ctx, arrest); err != nil {
			return fmt.Errorf("insert arrest period: %w", err)
		}
		sentence.Arrests = append(sentence.Arrests, arrest)
		return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.arrest.add", sentenceID, map[string]any{"days": arrest.Days()})
	return s.repo.Get(ctx, sentenceID)
}

func (s *Service) UpdateArrest(ctx context.Context, sentenceID, id uuid.UUID, req ArrestPeriodRequest, actorID uuid.UUID) (*Sentence, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, sentenceID)
		if err != nil {
			return err
		}
		current, err := repo.GetArrest(ctx, sentenceID, id)
		if err != nil {
			return err
		}
		updated := *current
		updated.StartDate = dateOnly(req.StartDate)
		updated.EndDate = dateOnly(req.EndDate)

		if err := checkBudget(sentence, updated.Days(), current.Days()); err != nil {
			return err
		}
		if err := repo.UpdateArrest(ctx, updated); err != nil {
			return err
		}
		replaceArrest(sentence, updated)
		return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.arrest.update", sentenceID, map[string]any{"entry_id": id.String()})
	return s.repo.Get(ctx, sentenceID)
}

func (s *Service) DeleteArrest(ctx context.Context, sentenceID, id uuid.UUID, actorID uuid.UUID) (*Sentence, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, sentenceID)
		if err != nil {
			return err
		}
		if err := repo.DeleteArrest(ctx, sentenceID, id); err != nil {
			return err
		}
		removeArrest(sentence, id)
		return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.arrest.delete", sentenceID, map[string]any{"entry_id": id.String()})
	return s.repo.Get(ctx, sentenceID)
}

func (s *Service) AddLaborCredit(ctx context.Context, sentenceID uuid.UUID, req LaborCreditRequest, actorID uuid.UUID) (*Sentence, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	credit := LaborCredit{
		ID:         uuid.New(),
		SentenceID: sentenceID,
		Month:      req.Month,
		Year:       req.Year,
		Days:       req.Days,
		CreatedBy:  actorID,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, sentenceID)
		if err != nil {
			return err
		}
		for _, existing := range sentence.LaborCredits {
			if existing.Month == credit.Month && existing.Year == credit.Year {
				return shared.Validationf("month", "există deja o înregistrare pentru luna %02d/%d", credit.Month, credit.Year)
			}
		}
		if err := checkBudget(sentence, credit.Days, 0); err != nil {
			return err
		}
		if err := repo.InsertLaborCredit(ctx, credit); err != nil {
			return fmt.Errorf("insert labor credit: %w", err)
		}
		sentence.LaborCredits = append(sentence.LaborCredits, credit)
		return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.labor.add", sentenceID, map[string]any{
		"month": req.Month, "year": req.Year, "days": req.Days,
	})
	return s.repo.Get(ctx, sentenceID)
}

func (s *Service) UpdateLaborCredit(ctx context.Context, sentenceID, id uuid.UUID, req LaborCreditRequest, actorID uuid.UUID) (*Sentence, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, sentenceID)
		if err != nil {
			return err
		}
		current, err := repo.GetLaborCredit(ctx, sentenceID, id)
		if err != nil {
			return err
		}
		for _, existing := range sentence.LaborCredits {
			if existing.ID != id && existing.Month == req.Month && existing.Year == req.Year {
				return shared.Validationf("month", "există deja o înregistrare pentru luna %02d/%d", req.Month, req.Year)
			}
		}
		updated := *current
		updated.Month = req.Month
		updated.Year = req.Year
		updated.Days = req.Days

		if err := checkBudget(sentence, updated.Days, current.Days); err != nil {
			return err
		}
		if err := repo.UpdateLaborCredit(ctx, updated); err != nil {
			return err
		}
		replaceLaborCredit(sentence, updated)
		return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.labor.update", sentenceID, map[string]any{"entry_id": id.String()})
	return s.repo.Get(ctx, sentenceID)
}

func (s *Service) DeleteLaborCredit(ctx context.Context, sentenceID, id uuid.UUID, actorID uuid.UUID) (*Sentence, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		sentence, err := repo.Get(ctx, sentenceID)
		if err != nil {
			return err
		}
		if err := repo.DeleteLaborCredit(ctx, sentenceID, id); err != nil {
			return err
		}
		removeLaborCredit(sentence, id)
		return s.regenerateFractions(ctx, repo, sentence, sentence.Fractions)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "sentence.labor.delete", sentenceID, map[string]any{"entry_id": id.String()})
	return s.repo.Get(ctx, sentenceID)
}

// UpdateFraction edits annotation fields only. The calculated date stays
// owned by the engine.
func (s *Service) UpdateFraction(ctx context.Context, sentenceID, id uuid.UUID, req UpdateFractionRequest, actorID uuid.UUID) (*Fraction, error) {
	var result *Fraction
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		fraction, err := repo.GetFraction(ctx, sentenceID, id)
		if err != nil {
			return err
		}
		if req.IsFulfilled != nil {
			fraction.IsFulfilled = *req.IsFulfilled
		}
		if req.FulfilledDate != nil {
			date := dateOnly(*req.FulfilledDate)
			fraction.FulfilledDate = &date
		}
		if req.Notes != nil {
			fraction.Notes = *req.Notes
		}
		// The date only exists on fulfilled fractions.
		if !fraction.IsFulfilled {
			fraction.FulfilledDate = nil
		} else if fraction.FulfilledDate == nil {
			today := dateOnly(time.Now())
			fraction.FulfilledDate = &today
		}
		if err := repo.UpdateFraction(ctx, *fraction); err != nil {
			return err
		}
		result = fraction
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "fraction.update", sentenceID, map[string]any{
		"fraction_id": id.String(),
	})
	return result, nil
}

// regenerateFractions deletes and recreates all fraction rows from the
// sentence's effective duration. Fulfilment annotations from previous are
// reapplied by matching fraction type so a ledger edit does not silently
// clear an operator's fulfilment marking.
func (s *Service) regenerateFractions(ctx context.Context, repo Repository, sentence *Sentence, previous []Fraction) error {
	fulfilment := make(map[calc.FractionType]Fraction, len(previous))
	for _, f := range previous {
		if f.IsFulfilled || f.Notes != "" {
			fulfilment[f.Type] = f
		}
	}

	if err := repo.DeleteFractions(ctx, sentence.ID); err != nil {
		return fmt.Errorf("delete fractions: %w", err)
	}

	years, months, days := sentence.EffectiveDuration()
	for _, spec := range calc.FractionSpecs {
		fraction := Fraction{
			ID:             uuid.New(),
			SentenceID:     sentence.ID,
			Type:           spec.Type,
			CalculatedDate: calc.FractionDate(sentence.StartDate, years, months, days, spec.Numerator, spec.Denominator),
			Description:    spec.Description,
		}
		if prev, ok := fulfilment[spec.Type]; ok {
			fraction.IsFulfilled = prev.IsFulfilled
			fraction.FulfilledDate = prev.FulfilledDate
			fraction.Notes = prev.Notes
		}
		if err := repo.InsertFraction(ctx, fraction); err != nil {
			return fmt.Errorf("insert fraction %s: %w", spec.Type, err)
		}
	}
	return nil
}

// checkBudget rejects a ledger mutation whose day-equivalent would consume
// the entire remaining effective duration. For updates, oldDays restores the
// entry's current contribution before comparing.
func checkBudget(sentence *Sentence, newDays, oldDays int) error {
	remaining := sentence.EffectiveTotalDays() + oldDays
	if newDays >= remaining {
		return shared.Validationf("days",
			"ajustarea de %d zile depășește durata efectivă rămasă de %d zile", newDays, remaining)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID uuid.UUID, action string, sentenceID uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "sentence",
		EntityID: sentenceID.String(),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func removeEntry(entries *[]Reduction, id uuid.UUID) {
	out := (*entries)[:0]
	for _, e := range *entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	*entries = out
}

func removeArrest(s *Sentence, id uuid.UUID) {
	out := s.Arrests[:0]
	for _, a := range s.Arrests {
		if a.ID != id {
			out = append(out, a)
		}
	}
	s.Arrests = out
}

func removeLaborCredit(s *Sentence, id uuid.UUID) {
	out := s.LaborCredits[:0]
	for _, lc := range s.LaborCredits {
		if lc.ID != id {
			out = append(out, lc)
		}
	}
	s.LaborCredits = out
}

func replaceArrest(s *Sentence, updated PreventiveArrest) {
	for i, a := range s.Arrests {
		if a.ID == updated.ID {
			s.Arrests[i] = updated
			return
		}
	}
}

func replaceLaborCredit(s *Sentence, updated LaborCredit) {
	for i, lc := range s.LaborCredits {
		if lc.ID == updated.ID {
			s.LaborCredits[i] = updated
			return
		}
	}
}
