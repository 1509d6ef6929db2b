// Package commissions records the periodic review commission: sessions,
// per-person evaluations and per-article results.
package commissions

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

// Article is the legal ground a person is examined under.
type Article string

const (
	ArticleArt91    Article = "art_91"
	ArticleArt92    Article = "art_92"
	ArticleArt107   Article = "art_107"
	ArticleGratiere Article = "gratiere"
)

// Articles lists every article in report order.
var Articles = []Article{ArticleArt91, ArticleArt92, ArticleArt107, ArticleGratiere}

var articleLabels = map[Article]string{
	ArticleArt91:    "Art. 91",
	ArticleArt92:    "Art. 92",
	ArticleArt107:   "Art. 107",
	ArticleGratiere: "Grațiere",
}

func ValidArticle(a Article) bool {
	_, ok := articleLabels[a]
	return ok
}

func (a Article) Label() string { return articleLabels[a] }

// ProgramResult grades the correction programme outcome.
type ProgramResult string

const (
	ProgramRealizat              ProgramResult = "realizat"
	ProgramNerealizat            ProgramResult = "nerealizat"
	ProgramNerealizatIndependent ProgramResult = "nerealizat_independent"
)

var programResults = map[ProgramResult]bool{
	ProgramRealizat:              true,
	ProgramNerealizat:            true,
	ProgramNerealizatIndependent: true,
}

func ValidProgramResult(p ProgramResult) bool { return programResults[p] }

// BehaviorResult grades conduct during detention.
type BehaviorResult string

const (
	BehaviorPozitiv BehaviorResult = "pozitiv"
	BehaviorNegativ BehaviorResult = "negativ"
)

func ValidBehaviorResult(b BehaviorResult) bool {
	return b == BehaviorPozitiv || b == BehaviorNegativ
}

// Decision is the commission's recommendation.
type Decision string

const (
	DecisionAdmis   Decision = "admis"
	DecisionRespins Decision = "respins"
)

func ValidDecision(d Decision) bool {
	return d == DecisionAdmis || d == DecisionRespins
}

// Session is one commission sitting. It evaluates several persons, each
// possibly under several articles.
type Session struct {
	ID            uuid.UUID
	SessionDate   time.Time
	Year          int
	Month         int
	SessionNumber string
	Description   string
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Evaluations []Evaluation
}

// Quarter is the calendar quarter (1-4) of the session month.
func (s *Session) Quarter() int {
	return (s.Month-1)/3 + 1
}

// Evaluation is one person's examination within a session. A person appears
// at most once per session.
type Evaluation struct {
	ID             uuid.UUID
	SessionID      uuid.UUID
	PersonID       uuid.UUID
	PersonFullName string
	PersonCNP      string
	Notes          string

	ArticleResults []ArticleResult
}

// ArticleResult is the outcome for one article within an evaluation. An
// article appears at most once per evaluation.
type ArticleResult struct {
	ID             uuid.UUID
	EvaluationID   uuid.UUID
	Article        Article
	ProgramResult  ProgramResult
	BehaviorResult BehaviorResult
	Decision       Decision
	Notes          string
}

// ArticleReportRow is the per-article aggregate over a month or quarter.
type ArticleReportRow struct {
	Article               Article `json:"article"`
	Label                 string  `json:"article_display"`
	Total                 int     `json:"total"`
	Realizat              int     `json:"realizat"`
	Nerealizat            int     `json:"nerealizat"`
	NerealizatIndependent int     `json:"nerealizat_independent"`
	Pozitiv               int     `json:"pozitiv"`
	Negativ               int     `json:"negativ"`
	Admis                 int     `json:"admis"`
	Respins               int     `json:"respins"`
}

// Stats is the KPI payload for the dashboard, scoped to the current month.
type Stats struct {
	TotalSessions     int `json:"total_sessions"`
	TotalExaminations int `json:"total_examinations"`
	Art91Total        int `json:"art91_total"`
	Art91Admis        int `json:"art91_admis"`
	Art91Respins      int `json:"art91_respins"`
	Art92Total        int `json:"art92_total"`
	Art92Admis        int `json:"art92_admis"`
	Art92Respins      int `json:"art92_respins"`
}

// ErrSessionNotFound occurs when the session id is unknown.
var ErrSessionNotFound = fmt.Errorf("commissions: session %w", shared.ErrNotFound)
