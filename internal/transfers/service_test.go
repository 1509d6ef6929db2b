package transfers

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeTransferRepo struct {
	transfers map[uuid.UUID]*Transfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: map[uuid.UUID]*Transfer{}}
}

func (f *fakeTransferRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeTransferRepo) Get(_ context.Context, id uuid.UUID) (*Transfer, error) {
	t, ok := f.transfers[id]
	if !ok {
		return nil, ErrTransferNotFound
	}
	copied := *t
	copied.Entries = append([]Entry(nil), t.Entries...)
	return &copied, nil
}

func (f *fakeTransferRepo) List(_ context.Context, filter ListFilter) ([]Transfer, int, error) {
	var out []Transfer
	for _, t := range f.transfers {
		if filter.Year != nil && t.Year != *filter.Year {
			continue
		}
		if filter.Month != nil && t.Month != *filter.Month {
			continue
		}
		copied := *t
		copied.Entries = append([]Entry(nil), t.Entries...)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TransferDate.Before(out[j].TransferDate)
	})
	return out, len(out), nil
}

func (f *fakeTransferRepo) Create(_ context.Context, t Transfer) error {
	f.transfers[t.ID] = &t
	return nil
}

func (f *fakeTransferRepo) Update(_ context.Context, t Transfer) error {
	existing, ok := f.transfers[t.ID]
	if !ok {
		return ErrTransferNotFound
	}
	t.Entries = existing.Entries
	f.transfers[t.ID] = &t
	return nil
}

func (f *fakeTransferRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.transfers[id]; !ok {
		return ErrTransferNotFound
	}
	delete(f.transfers, id)
	return nil
}

func (f *fakeTransferRepo) ReplaceEntries(_ context.Context, transferID uuid.UUID, entries []Entry) error {
	t, ok := f.transfers[transferID]
	if !ok {
		return ErrTransferNotFound
	}
	t.Entries = append([]Entry(nil), entries...)
	return nil
}

func (f *fakeTransferRepo) Count(context.Context) (int, error) {
	return len(f.transfers), nil
}

func (f *fakeTransferRepo) MonthTotals(_ context.Context, year, month int) (int, int, error) {
	arrived, departed := 0, 0
	for _, t := range f.transfers {
		if t.Year != year || t.Month != month {
			continue
		}
		arrived += t.TotalArrived()
		departed += t.TotalDeparted()
	}
	return arrived, departed, nil
}

func (f *fakeTransferRepo) AggregateByPenitentiary(_ context.Context, year, monthFrom, monthTo int) ([]ReportRow, error) {
	byPen := map[Penitentiary]*ReportRow{}
	for _, t := range f.transfers {
		if t.Year != year || t.Month < monthFrom || t.Month > monthTo {
			continue
		}
		for _, e := range t.Entries {
			row, ok := byPen[e.Penitentiary]
			if !ok {
				row = &ReportRow{
					Penitentiary: e.Penitentiary,
					Label:        e.Penitentiary.Label(),
					IsIsolator:   e.Penitentiary.IsIsolator(),
				}
				byPen[e.Penitentiary] = row
			}
			row.Arrived += e.Arrived
			row.ArrivedReturned += e.ArrivedReturned
			row.ArrivedNew += e.ArrivedNew
			row.Departed += e.Departed
			row.DepartedIsolator += e.DepartedIsolator
		}
	}
	var out []ReportRow
	for _, row := range byPen {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Penitentiary < out[j].Penitentiary
	})
	return out, nil
}

func newTransferService(t *testing.T, today time.Time) (*Service, *fakeTransferRepo) {
	t.Helper()
	repo := newFakeTransferRepo()
	svc := NewService(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return today }
	return svc, repo
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustCreate(t *testing.T, svc *Service, req CreateTransferRequest) *Transfer {
	t.Helper()
	transfer, err := svc.Create(context.Background(), req, uuid.New())
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	return transfer
}

func TestCreateDerivesPeriodAndTotals(t *testing.T) {
	svc, _ := newTransferService(t, date(2026, time.May, 20))

	transfer := mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.May, 14),
		Entries: []EntryInput{
			{Penitentiary: 3, Arrived: 5, ArrivedReturned: 2, ArrivedNew: 3, Departed: 1},
			{Penitentiary: 11, Arrived: 0, Departed: 4, DepartedIsolator: 4},
		},
	})

	if transfer.Year != 2026 || transfer.Month != 5 {
		t.Fatalf("period = %d-%d, want 2026-5", transfer.Year, transfer.Month)
	}
	if got := transfer.Quarter(); got != 2 {
		t.Fatalf("quarter = %d, want 2", got)
	}
	if got := transfer.TotalArrived(); got != 5 {
		t.Fatalf("total arrived = %d, want 5", got)
	}
	if got := transfer.TotalDeparted(); got != 5 {
		t.Fatalf("total departed = %d, want 5", got)
	}
	if len(transfer.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(transfer.Entries))
	}
}

func TestCreateRejectsInvalidEntries(t *testing.T) {
	svc, _ := newTransferService(t, date(2026, time.May, 20))
	base := date(2026, time.May, 14)

	cases := []struct {
		name    string
		entries []EntryInput
	}{
		{"home facility", []EntryInput{
			{Penitentiary: HomePenitentiary, Arrived: 1, ArrivedNew: 1},
		}},
		{"unknown facility", []EntryInput{
			{Penitentiary: 14, Arrived: 1, ArrivedNew: 1},
		}},
		{"arrived mismatch", []EntryInput{
			{Penitentiary: 3, Arrived: 5, ArrivedReturned: 1, ArrivedNew: 1},
		}},
		{"isolator departures to regular facility", []EntryInput{
			{Penitentiary: 3, DepartedIsolator: 2},
		}},
		{"duplicate facility", []EntryInput{
			{Penitentiary: 3, Arrived: 1, ArrivedNew: 1},
			{Penitentiary: 3, Arrived: 2, ArrivedNew: 2},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), CreateTransferRequest{
				TransferDate: base,
				Entries:      tc.entries,
			}, uuid.New())
			if err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateRejectsPreMillenniumDate(t *testing.T) {
	svc, _ := newTransferService(t, date(2026, time.May, 20))
	_, err := svc.Create(context.Background(), CreateTransferRequest{
		TransferDate: date(1999, time.December, 31),
		Entries:      []EntryInput{{Penitentiary: 3}},
	}, uuid.New())
	if err == nil {
		t.Fatal("expected validation error for date before 2000")
	}
}

func TestUpdateReplacesEntries(t *testing.T) {
	svc, _ := newTransferService(t, date(2026, time.May, 20))
	transfer := mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.May, 14),
		Entries: []EntryInput{
			{Penitentiary: 3, Arrived: 5, ArrivedNew: 5},
			{Penitentiary: 4, Departed: 2},
		},
	})

	updated, err := svc.Update(context.Background(), transfer.ID, UpdateTransferRequest{
		Entries: []EntryInput{
			{Penitentiary: 13, Departed: 3, DepartedIsolator: 3},
		},
	}, uuid.New())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Entries) != 1 {
		t.Fatalf("entries = %d, want 1 after replace", len(updated.Entries))
	}
	if updated.Entries[0].Penitentiary != 13 {
		t.Fatalf("penitentiary = %d, want 13", updated.Entries[0].Penitentiary)
	}
}

func TestUpdateDateMovesPeriod(t *testing.T) {
	svc, _ := newTransferService(t, date(2026, time.May, 20))
	transfer := mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.May, 14),
		Entries:      []EntryInput{{Penitentiary: 3, Arrived: 1, ArrivedNew: 1}},
	})

	newDate := date(2026, time.October, 2)
	updated, err := svc.Update(context.Background(), transfer.ID, UpdateTransferRequest{
		TransferDate: &newDate,
	}, uuid.New())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Year != 2026 || updated.Month != 10 {
		t.Fatalf("period = %d-%d, want 2026-10", updated.Year, updated.Month)
	}
	if got := updated.Quarter(); got != 4 {
		t.Fatalf("quarter = %d, want 4", got)
	}
}

func TestStatsComparesMonths(t *testing.T) {
	svc, _ := newTransferService(t, date(2026, time.May, 20))

	mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.May, 5),
		Entries:      []EntryInput{{Penitentiary: 3, Arrived: 7, ArrivedNew: 7, Departed: 2}},
	})
	mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.April, 28),
		Entries:      []EntryInput{{Penitentiary: 4, Arrived: 3, ArrivedNew: 3, Departed: 6}},
	})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{
		CurrentMonthArrived:   7,
		CurrentMonthDeparted:  2,
		CurrentMonthNet:       5,
		PreviousMonthArrived:  3,
		PreviousMonthDeparted: 6,
		TotalTransfers:        2,
	}
	if *stats != want {
		t.Fatalf("stats = %+v, want %+v", *stats, want)
	}
}

func TestStatsJanuaryLooksAtPreviousDecember(t *testing.T) {
	svc, _ := newTransferService(t, date(2026, time.January, 10))

	mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2025, time.December, 20),
		Entries:      []EntryInput{{Penitentiary: 3, Arrived: 4, ArrivedNew: 4}},
	})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PreviousMonthArrived != 4 {
		t.Fatalf("previous month arrived = %d, want 4", stats.PreviousMonthArrived)
	}
	if stats.CurrentMonthArrived != 0 {
		t.Fatalf("current month arrived = %d, want 0", stats.CurrentMonthArrived)
	}
}

func TestMonthlyReportAggregatesSessions(t *testing.T) {
	svc, _ := newTransferService(t, date(2026, time.May, 20))

	mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.May, 5),
		Entries: []EntryInput{
			{Penitentiary: 3, Arrived: 5, ArrivedReturned: 2, ArrivedNew: 3, Departed: 1},
			{Penitentiary: 11, Departed: 2, DepartedIsolator: 2},
		},
	})
	mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.May, 19),
		Entries: []EntryInput{
			{Penitentiary: 3, Arrived: 1, ArrivedNew: 1, Departed: 4},
		},
	})
	// Different month, must not appear.
	mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.June, 1),
		Entries:      []EntryInput{{Penitentiary: 3, Arrived: 9, ArrivedNew: 9}},
	})

	rows, totals, sessions, err := svc.MonthlyReport(context.Background(), 2026, 5)
	if err != nil {
		t.Fatalf("monthly report: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Penitentiary != 3 || rows[0].Arrived != 6 || rows[0].Departed != 5 {
		t.Fatalf("P-3 row = %+v", rows[0])
	}
	if rows[1].Penitentiary != 11 || !rows[1].IsIsolator || rows[1].DepartedIsolator != 2 {
		t.Fatalf("P-11 row = %+v", rows[1])
	}
	if totals.Arrived != 6 || totals.Departed != 7 || totals.DepartedIsolator != 2 {
		t.Fatalf("totals = %+v", totals)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
}

func TestQuarterlyReportSpansThreeMonths(t *testing.T) {
	svc, _ := newTransferService(t, date(2026, time.May, 20))

	mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.April, 1),
		Entries:      []EntryInput{{Penitentiary: 3, Arrived: 1, ArrivedNew: 1}},
	})
	mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.June, 30),
		Entries:      []EntryInput{{Penitentiary: 3, Arrived: 2, ArrivedNew: 2}},
	})
	// Q3, outside.
	mustCreate(t, svc, CreateTransferRequest{
		TransferDate: date(2026, time.July, 1),
		Entries:      []EntryInput{{Penitentiary: 3, Arrived: 8, ArrivedNew: 8}},
	})

	rows, totals, err := svc.QuarterlyReport(context.Background(), 2026, 2)
	if err != nil {
		t.Fatalf("quarterly report: %v", err)
	}
	if len(rows) != 1 || rows[0].Arrived != 3 {
		t.Fatalf("rows = %+v, want single P-3 row with 3 arrivals", rows)
	}
	if totals.Arrived != 3 {
		t.Fatalf("totals.Arrived = %d, want 3", totals.Arrived)
	}

	if _, _, err := svc.QuarterlyReport(context.Background(), 2026, 5); err == nil {
		t.Fatal("expected validation error for quarter 5")
	}
}

func TestPenitentiaryCatalogue(t *testing.T) {
	options := (&Service{}).Penitentiaries()

	if len(options) != 16 {
		t.Fatalf("options = %d, want 16", len(options))
	}
	for _, opt := range options {
		if opt.Value == HomePenitentiary {
			t.Fatal("home facility must not be listed")
		}
		if opt.Value == 14 {
			t.Fatal("facility 14 does not exist")
		}
		if wantIso := opt.Value == 11 || opt.Value == 13; opt.IsIsolator != wantIso {
			t.Fatalf("facility %d isolator flag = %v", opt.Value, opt.IsIsolator)
		}
	}
}
