package commissions

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeCommissionRepo struct {
	sessions map[uuid.UUID]*Session
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{sessions: map[uuid.UUID]*Session{}}
}

func (f *fakeCommissionRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeCommissionRepo) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	copied.Evaluations = append([]Evaluation(nil), s.Evaluations...)
	return &copied, nil
}

func (f *fakeCommissionRepo) List(_ context.Context, filter ListFilter) ([]Session, int, error) {
	var out []Session
	for _, s := range f.sessions {
		if filter.Year != nil && s.Year != *filter.Year {
			continue
		}
		if filter.Month != nil && s.Month != *filter.Month {
			continue
		}
		copied := *s
		copied.Evaluations = append([]Evaluation(nil), s.Evaluations...)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SessionDate.Before(out[j].SessionDate)
	})
	return out, len(out), nil
}

func (f *fakeCommissionRepo) Create(_ context.Context, s Session) error {
	f.sessions[s.ID] = &s
	return nil
}

func (f *fakeCommissionRepo) Update(_ context.Context, s Session) error {
	existing, ok := f.sessions[s.ID]
	if !ok {
		return ErrSessionNotFound
	}
	s.Evaluations = existing.Evaluations
	f.sessions[s.ID] = &s
	return nil
}

func (f *fakeCommissionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeCommissionRepo) ReplaceEvaluations(_ context.Context, sessionID uuid.UUID, evaluations []Evaluation) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	s.Evaluations = append([]Evaluation(nil), evaluations...)
	return nil
}

func (f *fakeCommissionRepo) CountSessions(_ context.Context, year, month int) (int, error) {
	count := 0
	for _, s := range f.sessions {
		if s.Year == year && s.Month == month {
			count++
		}
	}
	return count, nil
}

func (f *fakeCommissionRepo) ListResults(_ context.Context, year, monthFrom, monthTo int) ([]ArticleResult, error) {
	var out []ArticleResult
	for _, s := range f.sessions {
		if s.Year != year || s.Month < monthFrom || s.Month > monthTo {
			continue
		}
		for _, ev := range s.Evaluations {
			out = append(out, ev.ArticleResults...)
		}
	}
	return out, nil
}

func newCommissionService(t *testing.T, today time.Time) (*Service, *fakeCommissionRepo) {
	t.Helper()
	repo := newFakeCommissionRepo()
	svc := NewService(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return today }
	return svc, repo
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func result(art Article, program ProgramResult, behavior BehaviorResult, decision Decision) ArticleResultInput {
	return ArticleResultInput{
		Article:        art,
		ProgramResult:  program,
		BehaviorResult: behavior,
		Decision:       decision,
	}
}

func mustCreate(t *testing.T, svc *Service, req CreateSessionRequest) *Session {
	t.Helper()
	session, err := svc.Create(context.Background(), req, uuid.New())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func TestCreateRecordsNestedEvaluations(t *testing.T) {
	svc, _ := newCommissionService(t, date(2026, time.March, 20))

	session := mustCreate(t, svc, CreateSessionRequest{
		SessionDate:   date(2026, time.March, 12),
		SessionNumber: "12/2026",
		Evaluations: []EvaluationInput{
			{
				PersonID: uuid.New(),
				ArticleResults: []ArticleResultInput{
					result(ArticleArt91, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
					result(ArticleArt92, ProgramNerealizat, BehaviorNegativ, DecisionRespins),
				},
			},
			{
				PersonID: uuid.New(),
				ArticleResults: []ArticleResultInput{
					result(ArticleGratiere, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
				},
			},
		},
	})

	if session.Year != 2026 || session.Month != 3 {
		t.Fatalf("period = %d-%d, want 2026-3", session.Year, session.Month)
	}
	if got := session.Quarter(); got != 1 {
		t.Fatalf("quarter = %d, want 1", got)
	}
	if len(session.Evaluations) != 2 {
		t.Fatalf("evaluations = %d, want 2", len(session.Evaluations))
	}
	if len(session.Evaluations[0].ArticleResults) != 2 {
		t.Fatalf("article results = %d, want 2", len(session.Evaluations[0].ArticleResults))
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	svc, _ := newCommissionService(t, date(2026, time.March, 20))
	person := uuid.New()

	_, err := svc.Create(context.Background(), CreateSessionRequest{
		SessionDate: date(2026, time.March, 12),
		Evaluations: []EvaluationInput{
			{PersonID: person, ArticleResults: []ArticleResultInput{
				result(ArticleArt91, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
			}},
			{PersonID: person, ArticleResults: []ArticleResultInput{
				result(ArticleArt92, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
			}},
		},
	}, uuid.New())
	if err == nil {
		t.Fatal("expected error for duplicate person in session")
	}

	_, err = svc.Create(context.Background(), CreateSessionRequest{
		SessionDate: date(2026, time.March, 12),
		Evaluations: []EvaluationInput{
			{PersonID: uuid.New(), ArticleResults: []ArticleResultInput{
				result(ArticleArt91, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
				result(ArticleArt91, ProgramNerealizat, BehaviorNegativ, DecisionRespins),
			}},
		},
	}, uuid.New())
	if err == nil {
		t.Fatal("expected error for duplicate article in evaluation")
	}
}

func TestCreateRejectsUnknownEnums(t *testing.T) {
	svc, _ := newCommissionService(t, date(2026, time.March, 20))

	bad := []ArticleResultInput{
		{Article: "art_99", ProgramResult: ProgramRealizat, BehaviorResult: BehaviorPozitiv, Decision: DecisionAdmis},
		{Article: ArticleArt91, ProgramResult: "partial", BehaviorResult: BehaviorPozitiv, Decision: DecisionAdmis},
		{Article: ArticleArt91, ProgramResult: ProgramRealizat, BehaviorResult: "neutru", Decision: DecisionAdmis},
		{Article: ArticleArt91, ProgramResult: ProgramRealizat, BehaviorResult: BehaviorPozitiv, Decision: "amanat"},
	}
	for i, res := range bad {
		_, err := svc.Create(context.Background(), CreateSessionRequest{
			SessionDate: date(2026, time.March, 12),
			Evaluations: []EvaluationInput{
				{PersonID: uuid.New(), ArticleResults: []ArticleResultInput{res}},
			},
		}, uuid.New())
		if err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestUpdateReplacesEvaluations(t *testing.T) {
	svc, _ := newCommissionService(t, date(2026, time.March, 20))
	session := mustCreate(t, svc, CreateSessionRequest{
		SessionDate: date(2026, time.March, 12),
		Evaluations: []EvaluationInput{
			{PersonID: uuid.New(), ArticleResults: []ArticleResultInput{
				result(ArticleArt91, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
			}},
		},
	})

	replacement := uuid.New()
	updated, err := svc.Update(context.Background(), session.ID, UpdateSessionRequest{
		Evaluations: []EvaluationInput{
			{PersonID: replacement, ArticleResults: []ArticleResultInput{
				result(ArticleArt107, ProgramNerealizatIndependent, BehaviorPozitiv, DecisionRespins),
			}},
		},
	}, uuid.New())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Evaluations) != 1 {
		t.Fatalf("evaluations = %d, want 1 after replace", len(updated.Evaluations))
	}
	if updated.Evaluations[0].PersonID != replacement {
		t.Fatal("evaluation not replaced")
	}
}

func TestStatsCountsCurrentMonthArticles(t *testing.T) {
	svc, _ := newCommissionService(t, date(2026, time.March, 20))

	mustCreate(t, svc, CreateSessionRequest{
		SessionDate: date(2026, time.March, 12),
		Evaluations: []EvaluationInput{
			{PersonID: uuid.New(), ArticleResults: []ArticleResultInput{
				result(ArticleArt91, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
				result(ArticleArt92, ProgramNerealizat, BehaviorNegativ, DecisionRespins),
			}},
			{PersonID: uuid.New(), ArticleResults: []ArticleResultInput{
				result(ArticleArt91, ProgramRealizat, BehaviorPozitiv, DecisionRespins),
			}},
		},
	})
	// Earlier month, excluded.
	mustCreate(t, svc, CreateSessionRequest{
		SessionDate: date(2026, time.February, 10),
		Evaluations: []EvaluationInput{
			{PersonID: uuid.New(), ArticleResults: []ArticleResultInput{
				result(ArticleArt91, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
			}},
		},
	})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{
		TotalSessions:     1,
		TotalExaminations: 3,
		Art91Total:        2,
		Art91Admis:        1,
		Art91Respins:      1,
		Art92Total:        1,
		Art92Respins:      1,
	}
	if *stats != want {
		t.Fatalf("stats = %+v, want %+v", *stats, want)
	}
}

func TestMonthlyReportBucketsPerArticle(t *testing.T) {
	svc, _ := newCommissionService(t, date(2026, time.March, 20))

	mustCreate(t, svc, CreateSessionRequest{
		SessionDate: date(2026, time.March, 12),
		Evaluations: []EvaluationInput{
			{PersonID: uuid.New(), ArticleResults: []ArticleResultInput{
				result(ArticleArt91, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
				result(ArticleGratiere, ProgramNerealizatIndependent, BehaviorNegativ, DecisionRespins),
			}},
		},
	})

	rows, totals, sessions, err := svc.MonthlyReport(context.Background(), 2026, 3)
	if err != nil {
		t.Fatalf("monthly report: %v", err)
	}
	if len(rows) != len(Articles) {
		t.Fatalf("rows = %d, want one per article", len(rows))
	}
	if rows[0].Article != ArticleArt91 || rows[0].Total != 1 || rows[0].Realizat != 1 || rows[0].Admis != 1 {
		t.Fatalf("art 91 row = %+v", rows[0])
	}
	if rows[1].Total != 0 {
		t.Fatalf("art 92 row should be empty, got %+v", rows[1])
	}
	if rows[3].Article != ArticleGratiere || rows[3].NerealizatIndependent != 1 || rows[3].Respins != 1 {
		t.Fatalf("gratiere row = %+v", rows[3])
	}
	if totals.Total != 2 || totals.Admis != 1 || totals.Respins != 1 {
		t.Fatalf("totals = %+v", totals)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
}

func TestQuarterlyReportSpansThreeMonths(t *testing.T) {
	svc, _ := newCommissionService(t, date(2026, time.March, 20))

	for _, d := range []time.Time{
		date(2026, time.January, 10),
		date(2026, time.March, 30),
		date(2026, time.April, 1), // Q2, excluded
	} {
		mustCreate(t, svc, CreateSessionRequest{
			SessionDate: d,
			Evaluations: []EvaluationInput{
				{PersonID: uuid.New(), ArticleResults: []ArticleResultInput{
					result(ArticleArt91, ProgramRealizat, BehaviorPozitiv, DecisionAdmis),
				}},
			},
		})
	}

	rows, totals, err := svc.QuarterlyReport(context.Background(), 2026, 1)
	if err != nil {
		t.Fatalf("quarterly report: %v", err)
	}
	if rows[0].Total != 2 {
		t.Fatalf("art 91 total = %d, want 2", rows[0].Total)
	}
	if totals.Total != 2 {
		t.Fatalf("totals.Total = %d, want 2", totals.Total)
	}

	if _, _, err := svc.QuarterlyReport(context.Background(), 2026, 0); err == nil {
		t.Fatal("expected validation error for quarter 0")
	}
}
