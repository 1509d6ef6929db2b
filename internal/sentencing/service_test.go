package sentencing

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/sentencing/calc"
	"github.com/termene/termene/internal/shared"
)

type fakeRepo struct {
	sentences map[uuid.UUID]*Sentence
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sentences: make(map[uuid.UUID]*Sentence)}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (*Sentence, error) {
	s, ok := f.sentences[id]
	if !ok {
		return nil, ErrSentenceNotFound
	}
	copied := *s
	copied.Reductions = append([]Reduction(nil), s.Reductions...)
	copied.Arrests = append([]PreventiveArrest(nil), s.Arrests...)
	copied.LaborCredits = append([]LaborCredit(nil), s.LaborCredits...)
	copied.Fractions = append([]Fraction(nil), s.Fractions...)
	return &copied, nil
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]Sentence, int, error) {
	var out []Sentence
	for _, s := range f.sentences {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListActive(ctx context.Context) ([]Sentence, error) {
	var out []Sentence
	for id, s := range f.sentences {
		if s.Status == StatusActive {
			copied, _ := f.Get(ctx, id)
			out = append(out, *copied)
		}
	}
	return out, nil
}

func (f *fakeRepo) Create(ctx context.Context, s Sentence) error {
	stored := s
	f.sentences[s.ID] = &stored
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, s Sentence) error {
	stored, ok := f.sentences[s.ID]
	if !ok {
		return ErrSentenceNotFound
	}
	s.Reductions = stored.Reductions
	s.Arrests = stored.Arrests
	s.LaborCredits = stored.LaborCredits
	s.Fractions = stored.Fractions
	*stored = s
	return nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, releaseDate *time.Time) error {
	stored, ok := f.sentences[id]
	if !ok {
		return ErrSentenceNotFound
	}
	stored.Status = status
	stored.ReleaseDate = releaseDate
	return nil
}

func (f *fakeRepo) InsertReduction(ctx context.Context, red Reduction) error {
	s := f.sentences[red.SentenceID]
	s.Reductions = append(s.Reductions, red)
	return nil
}

func (f *fakeRepo) DeleteReduction(ctx context.Context, sentenceID, id uuid.UUID) error {
	s, ok := f.sentences[sentenceID]
	if !ok {
		return ErrEntryNotFound
	}
	for i, red := range s.Reductions {
		if red.ID == id {
			s.Reductions = append(s.Reductions[:i], s.Reductions[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

func (f *fakeRepo) GetArrest(ctx context.Context, sentenceID, id uuid.UUID) (*PreventiveArrest, error) {
	s, ok := f.sentences[sentenceID]
	if !ok {
		return nil, ErrEntryNotFound
	}
	for _, a := range s.Arrests {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, ErrEntryNotFound
}

func (f *fakeRepo) InsertArrest(ctx context.Context, a PreventiveArrest) error {
	s := f.sentences[a.SentenceID]
	s.Arrests = append(s.Arrests, a)
	return nil
}

func (f *fakeRepo) UpdateArrest(ctx context.Context, a PreventiveArrest) error {
	s, ok := f.sentences[a.SentenceID]
	if !ok {
		return ErrEntryNotFound
	}
	for i, existing := range s.Arrests {
		if existing.ID == a.ID {
			s.Arrests[i] = a
			return nil
		}
	}
	return ErrEntryNotFound
}

func (f *fakeRepo) DeleteArrest(ctx context.Context, sentenceID, id uuid.UUID) error {
	s, ok := f.sentences[sentenceID]
	if !ok {
		return ErrEntryNotFound
	}
	for i, a := range s.Arrests {
		if a.ID == id {
			s.Arrests = append(s.Arrests[:i], s.Arrests[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

func (f *fakeRepo) GetLaborCredit(ctx context.Context, sentenceID, id uuid.UUID) (*LaborCredit, error) {
	s, ok := f.sentences[sentenceID]
	if !ok {
		return nil, ErrEntryNotFound
	}
	for _, lc := range s.LaborCredits {
		if lc.ID == id {
			return &lc, nil
		}
	}
	return nil, ErrEntryNotFound
}

func (f *fakeRepo) InsertLaborCredit(ctx context.Context, lc LaborCredit) error {
	s := f.sentences[lc.SentenceID]
	s.LaborCredits = append(s.LaborCredits, lc)
	return nil
}

func (f *fakeRepo) UpdateLaborCredit(ctx context.Context, lc LaborCredit) error {
	s, ok := f.sentences[lc.SentenceID]
	if !ok {
		return ErrEntryNotFound
	}
	for i, existing := range s.LaborCredits {
		if existing.ID == lc.ID {
			s.LaborCredits[i] = lc
			return nil
		}
	}
	return ErrEntryNotFound
}

func (f *fakeRepo) DeleteLaborCredit(ctx context.Context, sentenceID, id uuid.UUID) error {
	s, ok := f.sentences[sentenceID]
	if !ok {
		return ErrEntryNotFound
	}
	for i, lc := range s.LaborCredits {
		if lc.ID == id {
			s.LaborCredits = append(s.LaborCredits[:i], s.LaborCredits[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

func (f *fakeRepo) GetFraction(ctx context.Context, sentenceID, id uuid.UUID) (*Fraction, error) {
	s, ok := f.sentences[sentenceID]
	if !ok {
		return nil, ErrFractionNotFound
	}
	for _, fr := range s.Fractions {
		if fr.ID == id {
			return &fr, nil
		}
	}
	return nil, ErrFractionNotFound
}

func (f *fakeRepo) ListFractions(ctx context.Context, sentenceID uuid.UUID) ([]Fraction, error) {
	s, ok := f.sentences[sentenceID]
	if !ok {
		return nil, ErrSentenceNotFound
	}
	return append([]Fraction(nil), s.Fractions...), nil
}

func (f *fakeRepo) InsertFraction(ctx context.Context, fr Fraction) error {
	s := f.sentences[fr.SentenceID]
	s.Fractions = append(s.Fractions, fr)
	return nil
}

func (f *fakeRepo) UpdateFraction(ctx context.Context, fr Fraction) error {
	s, ok := f.sentences[fr.SentenceID]
	if !ok {
		return ErrFractionNotFound
	}
	for i, existing := range s.Fractions {
		if existing.ID == fr.ID {
			s.Fractions[i] = fr
			return nil
		}
	}
	return ErrFractionNotFound
}

func (f *fakeRepo) DeleteFractions(ctx context.Context, sentenceID uuid.UUID) error {
	s, ok := f.sentences[sentenceID]
	if !ok {
		return ErrSentenceNotFound
	}
	s.Fractions = nil
	return nil
}

type noopAudit struct{}

func (noopAudit) Record(ctx context.Context, log shared.AuditLog) error { return nil }

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, noopAudit{}, logger), repo
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustCreate(t *testing.T, svc *Service, req CreateSentenceRequest) *Sentence {
	t.Helper()
	sentence, err := svc.Create(context.Background(), req, uuid.New())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return sentence
}

func fractionByType(t *testing.T, s *Sentence, ft calc.FractionType) Fraction {
	t.Helper()
	for _, f := range s.Fractions {
		if f.Type == ft {
			return f
		}
	}
	t.Fatalf("fraction %s not found", ft)
	return Fraction{}
}

func TestCreateGeneratesAllThreeFractions(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     3,
		StartDate: date(2024, time.January, 1),
	})

	if len(sentence.Fractions) != 3 {
		t.Fatalf("expected 3 fractions, got %d", len(sentence.Fractions))
	}

	// 36 nominal months: 12, 18 and 24 months from start.
	cases := []struct {
		ftype calc.FractionType
		want  time.Time
	}{
		{calc.FractionOneThird, date(2025, time.January, 1)},
		{calc.FractionOneHalf, date(2025, time.July, 1)},
		{calc.FractionTwoThirds, date(2026, time.January, 1)},
	}
	for _, tc := range cases {
		got := fractionByType(t, sentence, tc.ftype).CalculatedDate
		if !got.Equal(tc.want) {
			t.Errorf("fraction %s = %s, want %s", tc.ftype, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestCreateRejectsZeroDuration(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		StartDate: date(2024, time.January, 1),
	}, uuid.New())
	if _, ok := shared.AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeTalharie,
		Years:     2,
		Months:    6,
		Days:      10,
		StartDate: date(2023, time.March, 15),
	})

	first := make(map[calc.FractionType]time.Time)
	for _, f := range sentence.Fractions {
		first[f.Type] = f.CalculatedDate
	}

	recalced, err := svc.Recalculate(context.Background(), sentence.ID, uuid.New())
	if err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}
	for _, f := range recalced.Fractions {
		if !f.CalculatedDate.Equal(first[f.Type]) {
			t.Errorf("fraction %s moved from %s to %s after recalculation",
				f.Type, first[f.Type].Format("2006-01-02"), f.CalculatedDate.Format("2006-01-02"))
		}
	}
}

func TestAddReductionShiftsFractionDates(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeOmor,
		Years:     3,
		StartDate: date(2024, time.January, 1),
	})

	// 6 months = 180 ledger days. Effective 915 days -> (2, 6, 5).
	updated, err := svc.AddReduction(context.Background(), sentence.ID, AddReductionRequest{
		LegalArticle: "art. 551",
		Months:       6,
		AppliedDate:  date(2024, time.February, 1),
	}, uuid.New())
	if err != nil {
		t.Fatalf("AddReduction() error = %v", err)
	}

	cases := []struct {
		ftype calc.FractionType
		want  time.Time
	}{
		{calc.FractionOneThird, date(2024, time.November, 2)},
		{calc.FractionOneHalf, date(2025, time.April, 3)},
		{calc.FractionTwoThirds, date(2025, time.September, 4)},
	}
	for _, tc := range cases {
		got := fractionByType(t, updated, tc.ftype).CalculatedDate
		if !got.Equal(tc.want) {
			t.Errorf("fraction %s = %s, want %s", tc.ftype, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestAddReductionRejectsZeroTriple(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     1,
		StartDate: date(2024, time.January, 1),
	})

	_, err := svc.AddReduction(context.Background(), sentence.ID, AddReductionRequest{
		LegalArticle: "art. 551",
		AppliedDate:  date(2024, time.February, 1),
	}, uuid.New())
	if _, ok := shared.AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLedgerGuardRejectsConsumingEntry(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Days:      100,
		StartDate: date(2024, time.January, 1),
	})

	// Exactly the remaining 100 days is rejected, only strictly less passes.
	_, err := svc.AddReduction(context.Background(), sentence.ID, AddReductionRequest{
		LegalArticle: "art. 551",
		Days:         100,
		AppliedDate:  date(2024, time.February, 1),
	}, uuid.New())
	if _, ok := shared.AsValidation(err); !ok {
		t.Fatalf("expected validation error for exact consumption, got %v", err)
	}

	updated, err := svc.AddReduction(context.Background(), sentence.ID, AddReductionRequest{
		LegalArticle: "art. 551",
		Days:         99,
		AppliedDate:  date(2024, time.February, 1),
	}, uuid.New())
	if err != nil {
		t.Fatalf("AddReduction() error = %v", err)
	}
	if got := updated.EffectiveTotalDays(); got != 1 {
		t.Fatalf("effective days = %d, want 1", got)
	}
}

func TestUpdateArrestSameMagnitudeSucceeds(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Days:      100,
		StartDate: date(2024, time.June, 1),
	})

	withArrest, err := svc.AddArrest(context.Background(), sentence.ID, ArrestPeriodRequest{
		StartDate: date(2024, time.January, 1),
		EndDate:   date(2024, time.January, 31),
	}, uuid.New())
	if err != nil {
		t.Fatalf("AddArrest() error = %v", err)
	}
	if got := withArrest.TotalArrestDays(); got != 30 {
		t.Fatalf("arrest days = %d, want 30", got)
	}

	// Moving the same 30-day window must pass the guard: the entry's own
	// contribution is restored before checking the budget.
	arrestID := withArrest.Arrests[0].ID
	updated, err := svc.UpdateArrest(context.Background(), sentence.ID, arrestID, ArrestPeriodRequest{
		StartDate: date(2024, time.February, 1),
		EndDate:   date(2024, time.March, 2),
	}, uuid.New())
	if err != nil {
		t.Fatalf("UpdateArrest() error = %v", err)
	}
	if got := updated.TotalArrestDays(); got != 30 {
		t.Fatalf("arrest days after update = %d, want 30", got)
	}
}

func TestAddArrestRejectsInvertedPeriod(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     1,
		StartDate: date(2024, time.January, 1),
	})

	_, err := svc.AddArrest(context.Background(), sentence.ID, ArrestPeriodRequest{
		StartDate: date(2024, time.March, 10),
		EndDate:   date(2024, time.March, 10),
	}, uuid.New())
	if _, ok := shared.AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddLaborCreditRejectsDuplicateMonth(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     1,
		StartDate: date(2024, time.January, 1),
	})

	_, err := svc.AddLaborCredit(context.Background(), sentence.ID, LaborCreditRequest{
		Month: 3, Year: 2024, Days: 5,
	}, uuid.New())
	if err != nil {
		t.Fatalf("AddLaborCredit() error = %v", err)
	}

	_, err = svc.AddLaborCredit(context.Background(), sentence.ID, LaborCreditRequest{
		Month: 3, Year: 2024, Days: 2,
	}, uuid.New())
	if _, ok := shared.AsValidation(err); !ok {
		t.Fatalf("expected validation error for duplicate month, got %v", err)
	}
}

func TestLedgerEditPreservesFulfilment(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeOmor,
		Years:     3,
		StartDate: date(2024, time.January, 1),
	})

	half := fractionByType(t, sentence, calc.FractionOneHalf)
	fulfilled := true
	fulfilledDate := date(2025, time.July, 2)
	_, err := svc.UpdateFraction(context.Background(), sentence.ID, half.ID, UpdateFractionRequest{
		IsFulfilled:   &fulfilled,
		FulfilledDate: &fulfilledDate,
	}, uuid.New())
	if err != nil {
		t.Fatalf("UpdateFraction() error = %v", err)
	}

	updated, err := svc.AddReduction(context.Background(), sentence.ID, AddReductionRequest{
		LegalArticle: "art. 551",
		Months:       2,
		AppliedDate:  date(2025, time.August, 1),
	}, uuid.New())
	if err != nil {
		t.Fatalf("AddReduction() error = %v", err)
	}

	regenerated := fractionByType(t, updated, calc.FractionOneHalf)
	if !regenerated.IsFulfilled {
		t.Fatal("fulfilment flag lost across regeneration")
	}
	if regenerated.FulfilledDate == nil || !regenerated.FulfilledDate.Equal(fulfilledDate) {
		t.Fatalf("fulfilled date lost across regeneration: %v", regenerated.FulfilledDate)
	}
	if regenerated.ID == half.ID {
		t.Fatal("expected a fresh fraction row after regeneration")
	}
}

func TestUpdateFractionClearingFulfilmentDropsDate(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     3,
		StartDate: date(2024, time.January, 1),
	})

	half := fractionByType(t, sentence, calc.FractionOneHalf)
	fulfilled := true
	fulfilledDate := date(2025, time.July, 2)
	_, err := svc.UpdateFraction(context.Background(), sentence.ID, half.ID, UpdateFractionRequest{
		IsFulfilled:   &fulfilled,
		FulfilledDate: &fulfilledDate,
	}, uuid.New())
	if err != nil {
		t.Fatalf("UpdateFraction() error = %v", err)
	}

	// A single request may both clear the flag and carry a date; the date
	// must not survive on an unfulfilled fraction.
	unfulfilled := false
	cleared, err := svc.UpdateFraction(context.Background(), sentence.ID, half.ID, UpdateFractionRequest{
		IsFulfilled:   &unfulfilled,
		FulfilledDate: &fulfilledDate,
	}, uuid.New())
	if err != nil {
		t.Fatalf("UpdateFraction() error = %v", err)
	}
	if cleared.IsFulfilled {
		t.Fatal("fraction still fulfilled after clearing")
	}
	if cleared.FulfilledDate != nil {
		t.Fatalf("unfulfilled fraction carries a date: %v", cleared.FulfilledDate)
	}
}

func TestDeleteReductionRestoresDates(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     3,
		StartDate: date(2024, time.January, 1),
	})
	original := fractionByType(t, sentence, calc.FractionOneHalf).CalculatedDate

	withReduction, err := svc.AddReduction(context.Background(), sentence.ID, AddReductionRequest{
		LegalArticle: "art. 551",
		Months:       6,
		AppliedDate:  date(2024, time.February, 1),
	}, uuid.New())
	if err != nil {
		t.Fatalf("AddReduction() error = %v", err)
	}
	shifted := fractionByType(t, withReduction, calc.FractionOneHalf).CalculatedDate
	if shifted.Equal(original) {
		t.Fatal("expected the reduction to move the fraction date")
	}

	restored, err := svc.DeleteReduction(context.Background(), sentence.ID, withReduction.Reductions[0].ID, uuid.New())
	if err != nil {
		t.Fatalf("DeleteReduction() error = %v", err)
	}
	if got := fractionByType(t, restored, calc.FractionOneHalf).CalculatedDate; !got.Equal(original) {
		t.Fatalf("fraction date = %s after delete, want %s", got.Format("2006-01-02"), original.Format("2006-01-02"))
	}
}

func TestReleaseFinishesSentence(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     1,
		StartDate: date(2024, time.January, 1),
	})

	released, err := svc.Release(context.Background(), sentence.ID, ReleaseRequest{
		ReleaseDate: date(2024, time.September, 1),
	}, uuid.New())
	if err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if released.Status != StatusFinished {
		t.Fatalf("status = %s, want finished", released.Status)
	}
	if released.ReleaseDate == nil || !released.ReleaseDate.Equal(date(2024, time.September, 1)) {
		t.Fatalf("release date = %v", released.ReleaseDate)
	}

	_, err = svc.Release(context.Background(), sentence.ID, ReleaseRequest{
		ReleaseDate: date(2024, time.October, 1),
	}, uuid.New())
	if _, ok := shared.AsValidation(err); !ok {
		t.Fatalf("expected validation error for double release, got %v", err)
	}
}

func TestCumulateRequiresActiveOrNew(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     1,
		StartDate: date(2024, time.January, 1),
	})

	cumulated, err := svc.Cumulate(context.Background(), sentence.ID, uuid.New())
	if err != nil {
		t.Fatalf("Cumulate() error = %v", err)
	}
	if cumulated.Status != StatusCumulated {
		t.Fatalf("status = %s, want cumulated", cumulated.Status)
	}

	_, err = svc.Cumulate(context.Background(), sentence.ID, uuid.New())
	if _, ok := shared.AsValidation(err); !ok {
		t.Fatalf("expected validation error for double cumulation, got %v", err)
	}
}

func TestUpdateDurationRegeneratesFractions(t *testing.T) {
	svc, _ := newTestService()

	sentence := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     3,
		StartDate: date(2024, time.January, 1),
	})

	years := 6
	updated, err := svc.Update(context.Background(), sentence.ID, UpdateSentenceRequest{
		Years: &years,
	}, uuid.New())
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// 72 nominal months: 1/3 at 24 months.
	got := fractionByType(t, updated, calc.FractionOneThird).CalculatedDate
	if want := date(2026, time.January, 1); !got.Equal(want) {
		t.Fatalf("fraction 1/3 = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestRecalculateAllCoversActiveSentences(t *testing.T) {
	svc, _ := newTestService()

	mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     2,
		StartDate: date(2024, time.January, 1),
	})
	finished := mustCreate(t, svc, CreateSentenceRequest{
		PersonID:  uuid.New(),
		CrimeType: CrimeFurt,
		Years:     1,
		StartDate: date(2023, time.January, 1),
	})
	if _, err := svc.Release(context.Background(), finished.ID, ReleaseRequest{
		ReleaseDate: date(2023, time.October, 1),
	}, uuid.New()); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	count, err := svc.RecalculateAll(context.Background())
	if err != nil {
		t.Fatalf("RecalculateAll() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("recalculated %d sentences, want 1", count)
	}
}
