package commissions

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

type Service struct {
	repo   Repository
	audit  shared.AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// Create records a session with its nested evaluations and article results.
func (s *Service) Create(ctx context.Context, req CreateSessionRequest, actorID uuid.UUID) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session := Session{
		ID:            uuid.New(),
		SessionDate:   req.SessionDate,
		Year:          req.SessionDate.Year(),
		Month:         int(req.SessionDate.Month()),
		SessionNumber: req.SessionNumber,
		Description:   req.Description,
		CreatedBy:     actorID,
	}
	evaluations := buildEvaluations(session.ID, req.Evaluations)

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, session); err != nil {
			return err
		}
		return repo.ReplaceEvaluations(ctx, session.ID, evaluations)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "commission_session.create", session.ID)
	s.logger.Info("commission session recorded",
		"session_id", session.ID, "date", session.SessionDate.Format(dateLayout),
		"evaluations", len(evaluations))
	return s.repo.Get(ctx, session.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Session, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 25
	}
	return s.repo.List(ctx, filter)
}

// Update edits the session header and, when evaluations are supplied,
// replaces the full nested set.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateSessionRequest, actorID uuid.UUID) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SessionDate != nil {
		session.SessionDate = *req.SessionDate
		session.Year = req.SessionDate.Year()
		session.Month = int(req.SessionDate.Month())
	}
	if req.SessionNumber != nil {
		session.SessionNumber = *req.SessionNumber
	}
	if req.Description != nil {
		session.Description = *req.Description
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, *session); err != nil {
			return err
		}
		if req.Evaluations != nil {
			return repo.ReplaceEvaluations(ctx, id, buildEvaluations(id, req.Evaluations))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "commission_session.update", id)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "commission_session.delete", id)
	return nil
}

// Stats summarises the current month for the dashboard.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	year, month := now.Year(), int(now.Month())

	sessions, err := s.repo.CountSessions(ctx, year, month)
	if err != nil {
		return nil, err
	}
	results, err := s.repo.ListResults(ctx, year, month, month)
	if err != nil {
		return nil, err
	}

	stats := Stats{TotalSessions: sessions, TotalExaminations: len(results)}
	for _, res := range results {
		switch res.Article {
		case ArticleArt91:
			stats.Art91Total++
			if res.Decision == DecisionAdmis {
				stats.Art91Admis++
			} else {
				stats.Art91Respins++
			}
		case ArticleArt92:
			stats.Art92Total++
			if res.Decision == DecisionAdmis {
				stats.Art92Admis++
			} else {
				stats.Art92Respins++
			}
		}
	}
	return &stats, nil
}

// MonthlyReport aggregates one month per article, with the sessions of that
// month appended.
func (s *Service) MonthlyReport(ctx context.Context, year, month int) ([]ArticleReportRow, ArticleReportRow, []Session, error) {
	if month < 1 || month > 12 {
		return nil, ArticleReportRow{}, nil, shared.Validationf("month", "luna trebuie să fie între 1 și 12")
	}
	results, err := s.repo.ListResults(ctx, year, month, month)
	if err != nil {
		return nil, ArticleReportRow{}, nil, err
	}
	rows, totals := aggregateResults(results)

	sessions, _, err := s.repo.List(ctx, ListFilter{
		Year: &year, Month: &month, Page: 1, PerPage: 100,
	})
	if err != nil {
		return nil, ArticleReportRow{}, nil, err
	}
	return rows, totals, sessions, nil
}

// QuarterlyReport aggregates a calendar quarter per article.
func (s *Service) QuarterlyReport(ctx context.Context, year, quarter int) ([]ArticleReportRow, ArticleReportRow, error) {
	if quarter < 1 || quarter > 4 {
		return nil, ArticleReportRow{}, shared.Validationf("quarter", "trimestrul trebuie să fie între 1 și 4")
	}
	startMonth := (quarter-1)*3 + 1
	results, err := s.repo.ListResults(ctx, year, startMonth, startMonth+2)
	if err != nil {
		return nil, ArticleReportRow{}, err
	}
	rows, totals := aggregateResults(results)
	return rows, totals, nil
}

// aggregateResults buckets results per article in catalogue order. Every
// article gets a row even when empty, matching the report layout.
func aggregateResults(results []ArticleResult) ([]ArticleReportRow, ArticleReportRow) {
	byArticle := map[Article]*ArticleReportRow{}
	rows := make([]ArticleReportRow, len(Articles))
	for i, art := range Articles {
		rows[i] = ArticleReportRow{Article: art, Label: art.Label()}
		byArticle[art] = &rows[i]
	}

	for _, res := range results {
		row, ok := byArticle[res.Article]
		if !ok {
			continue
		}
		row.Total++
		switch res.ProgramResult {
		case ProgramRealizat:
			row.Realizat++
		case ProgramNerealizat:
			row.Nerealizat++
		case ProgramNerealizatIndependent:
			row.NerealizatIndependent++
		}
		switch res.BehaviorResult {
		case BehaviorPozitiv:
			row.Pozitiv++
		case BehaviorNegativ:
			row.Negativ++
		}
		switch res.Decision {
		case DecisionAdmis:
			row.Admis++
		case DecisionRespins:
			row.Respins++
		}
	}

	totals := ArticleReportRow{Label: "Total"}
	for _, row := range rows {
		totals.Total += row.Total
		totals.Realizat += row.Realizat
		totals.Nerealizat += row.Nerealizat
		totals.NerealizatIndependent += row.NerealizatIndependent
		totals.Pozitiv += row.Pozitiv
		totals.Negativ += row.Negativ
		totals.Admis += row.Admis
		totals.Respins += row.Respins
	}
	return rows, totals
}

func buildEvaluations(sessionID uuid.UUID, inputs []EvaluationInput) []Evaluation {
	evaluations := make([]Evaluation, 0, len(inputs))
	for _, in := range inputs {
		ev := Evaluation{
			ID:        uuid.New(),
			SessionID: sessionID,
			PersonID:  in.PersonID,
			Notes:     in.Notes,
		}
		for _, res := range in.ArticleResults {
			ev.ArticleResults = append(ev.ArticleResults, ArticleResult{
				ID:             uuid.New(),
				EvaluationID:   ev.ID,
				Article:        res.Article,
				ProgramResult:  res.ProgramResult,
				BehaviorResult: res.BehaviorResult,
				Decision:       res.Decision,
				Notes:          res.Notes,
			})
		}
		evaluations = append(evaluations, ev)
	}
	return evaluations
}

func (s *Service) recordAudit(ctx context.Context, actorID uuid.UUID, action string, sessionID uuid.UUID) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "commission_session",
		EntityID: sessionID.String(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
