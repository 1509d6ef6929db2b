package commissions

import (
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

type ArticleResultInput struct {
	Article        Article        `json:"article" validate:"required"`
	ProgramResult  ProgramResult  `json:"program_result" validate:"required"`
	BehaviorResult BehaviorResult `json:"behavior_result" validate:"required"`
	Decision       Decision       `json:"decision" validate:"required"`
	Notes          string         `json:"notes,omitempty"`
}

type EvaluationInput struct {
	PersonID       uuid.UUID            `json:"person_id" validate:"required"`
	Notes          string               `json:"notes,omitempty"`
	ArticleResults []ArticleResultInput `json:"article_results" validate:"required,min=1"`
}

type CreateSessionRequest struct {
	SessionDate   time.Time         `json:"session_date" validate:"required"`
	SessionNumber string            `json:"session_number,omitempty" validate:"omitempty,max=100"`
	Description   string            `json:"description,omitempty"`
	Evaluations   []EvaluationInput `json:"evaluations" validate:"required,min=1"`
}

func (r CreateSessionRequest) Validate() error {
	return validateEvaluationInputs(r.Evaluations)
}

type UpdateSessionRequest struct {
	SessionDate   *time.Time        `json:"session_date,omitempty"`
	SessionNumber *string           `json:"session_number,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Evaluations   []EvaluationInput `json:"evaluations,omitempty"`
}

func (r UpdateSessionRequest) Validate() error {
	if r.Evaluations != nil {
		return validateEvaluationInputs(r.Evaluations)
	}
	return nil
}

func validateEvaluationInputs(inputs []EvaluationInput) error {
	persons := map[uuid.UUID]bool{}
	for _, ev := range inputs {
		if persons[ev.PersonID] {
			return shared.Validationf("evaluations", "persoana apare de mai multe ori în aceeași ședință")
		}
		persons[ev.PersonID] = true

		articles := map[Article]bool{}
		for _, res := range ev.ArticleResults {
			if !ValidArticle(res.Article) {
				return shared.Validationf("article", "articol necunoscut")
			}
			if articles[res.Article] {
				return shared.Validationf("article_results", "articol duplicat pentru aceeași persoană")
			}
			articles[res.Article] = true
			if !ValidProgramResult(res.ProgramResult) {
				return shared.Validationf("program_result", "rezultat program necunoscut")
			}
			if !ValidBehaviorResult(res.BehaviorResult) {
				return shared.Validationf("behavior_result", "rezultat comportament necunoscut")
			}
			if !ValidDecision(res.Decision) {
				return shared.Validationf("decision", "decizie necunoscută")
			}
		}
	}
	return nil
}

type ListFilter struct {
	Year     *int
	Month    *int
	DateFrom *time.Time
	DateTo   *time.Time
	Query    string
	Page     int
	PerPage  int
}

type ArticleResultView struct {
	ID             uuid.UUID      `json:"id"`
	Article        Article        `json:"article"`
	Label          string         `json:"article_display"`
	ProgramResult  ProgramResult  `json:"program_result"`
	BehaviorResult BehaviorResult `json:"behavior_result"`
	Decision       Decision       `json:"decision"`
	Notes          string         `json:"notes,omitempty"`
}

type EvaluationView struct {
	ID             uuid.UUID           `json:"id"`
	PersonID       uuid.UUID           `json:"person_id"`
	PersonFullName string              `json:"person_fullname"`
	PersonCNP      string              `json:"person_cnp"`
	Notes          string              `json:"notes,omitempty"`
	ArticleResults []ArticleResultView `json:"article_results"`
}

type SessionView struct {
	ID               uuid.UUID        `json:"id"`
	SessionDate      string           `json:"session_date"`
	Year             int              `json:"year"`
	Month            int              `json:"month"`
	Quarter          int              `json:"quarter"`
	SessionNumber    string           `json:"session_number,omitempty"`
	Description      string           `json:"description,omitempty"`
	EvaluationsCount int              `json:"evaluations_count"`
	Evaluations      []EvaluationView `json:"evaluations"`
	CreatedBy        uuid.UUID        `json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

const dateLayout = "2006-01-02"

func NewSessionView(s *Session) SessionView {
	evaluations := make([]EvaluationView, 0, len(s.Evaluations))
	for _, ev := range s.Evaluations {
		results := make([]ArticleResultView, 0, len(ev.ArticleResults))
		for _, res := range ev.ArticleResults {
			results = append(results, ArticleResultView{
				ID:             res.ID,
				Article:        res.Article,
				Label:          res.Article.Label(),
				ProgramResult:  res.ProgramResult,
				BehaviorResult: res.BehaviorResult,
				Decision:       res.Decision,
				Notes:          res.Notes,
			})
		}
		evaluations = append(evaluations, EvaluationView{
			ID:             ev.ID,
			PersonID:       ev.PersonID,
			PersonFullName: ev.PersonFullName,
			PersonCNP:      ev.PersonCNP,
			Notes:          ev.Notes,
			ArticleResults: results,
		})
	}
	return SessionView{
		ID:               s.ID,
		SessionDate:      s.SessionDate.Format(dateLayout),
		Year:             s.Year,
		Month:            s.Month,
		Quarter:          s.Quarter(),
		SessionNumber:    s.SessionNumber,
		Description:      s.Description,
		EvaluationsCount: len(s.Evaluations),
		Evaluations:      evaluations,
		CreatedBy:        s.CreatedBy,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
