package transfers

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

// Create records a transfer session with its per-facility rows.
func (s *Service) Create(ctx context.Context, req CreateTransferRequest, actorID uuid.UUID) (*Transfer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	transfer := Transfer{
		ID:           uuid.New(),
		TransferDate: req.TransferDate,
		Year:         req.TransferDate.Year(),
		Month:        int(req.TransferDate.Month()),
		Description:  req.Description,
		CreatedBy:    actorID,
	}
	entries := buildEntries(transfer.ID, req.Entries)

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, transfer); err != nil {
			return err
		}
		return repo.ReplaceEntries(ctx, transfer.ID, entries)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "transfer.create", transfer.ID)
	s.logger.Info("transfer session recorded",
		"transfer_id", transfer.ID, "date", transfer.TransferDate.Format(dateLayout),
		"entries", len(entries))
	return s.repo.Get(ctx, transfer.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Transfer, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 25
	}
	return s.repo.List(ctx, filter)
}

// Update edits the session header and, when entries are supplied, replaces
// the full row set.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateTransferRequest, actorID uuid.UUID) (*Transfer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	transfer, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TransferDate != nil {
		transfer.TransferDate = *req.TransferDate
		transfer.Year = req.TransferDate.Year()
		transfer.Month = int(req.TransferDate.Month())
	}
	if req.Description != nil {
		transfer.Description = *req.Description
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, *transfer); err != nil {
			return err
		}
		if req.Entries != nil {
			return repo.ReplaceEntries(ctx, id, buildEntries(id, req.Entries))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "transfer.update", id)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "transfer.delete", id)
	return nil
}

// Stats compares the current and previous month for the dashboard.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	curYear, curMonth := now.Year(), int(now.Month())
	prevYear, prevMonth := curYear, curMonth-1
	if curMonth == 1 {
		prevYear, prevMonth = curYear-1, 12
	}

	curArrived, curDeparted, err := s.repo.MonthTotals(ctx, curYear, curMonth)
	if err != nil {
		return nil, err
	}
	prevArrived, prevDeparted, err := s.repo.MonthTotals(ctx, prevYear, prevMonth)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		CurrentMonthArrived:   curArrived,
		CurrentMonthDeparted:  curDeparted,
		CurrentMonthNet:       curArrived - curDeparted,
		PreviousMonthArrived:  prevArrived,
		PreviousMonthDeparted: prevDeparted,
		TotalTransfers:        total,
	}, nil
}

// MonthlyReport aggregates one month per facility, with the sessions of that
// month appended.
func (s *Service) MonthlyReport(ctx context.Context, year, month int) ([]ReportRow, ReportTotals, []Transfer, error) {
	if month < 1 || month > 12 {
		return nil, ReportTotals{}, nil, shared.Validationf("month", "luna trebuie să fie între 1 și 12")
	}
	rows, err := s.repo.AggregateByPenitentiary(ctx, year, month, month)
	if err != nil {
		return nil, ReportTotals{}, nil, err
	}

	sessions, _, err := s.repo.List(ctx, ListFilter{
		Year: &year, Month: &month, Page: 1, PerPage: 100,
	})
	if err != nil {
		return nil, ReportTotals{}, nil, err
	}
	return rows, sumReport(rows), sessions, nil
}

// QuarterlyReport aggregates a calendar quarter per facility.
func (s *Service) QuarterlyReport(ctx context.Context, year, quarter int) ([]ReportRow, ReportTotals, error) {
	if quarter < 1 || quarter > 4 {
		return nil, ReportTotals{}, shared.Validationf("quarter", "trimestrul trebuie să fie între 1 și 4")
	}
	startMonth := (quarter-1)*3 + 1
	rows, err := s.repo.AggregateByPenitentiary(ctx, year, startMonth, startMonth+2)
	if err != nil {
		return nil, ReportTotals{}, err
	}
	return rows, sumReport(rows), nil
}

// Penitentiaries lists every facility except the home one.
func (s *Service) Penitentiaries() []PenitentiaryOption {
	others := OtherPenitentiaries()
	out := make([]PenitentiaryOption, 0, len(others))
	for _, p := range others {
		out = append(out, PenitentiaryOption{
			Value:      p,
			Label:      p.Label(),
			IsIsolator: p.IsIsolator(),
		})
	}
	return out
}

func buildEntries(transferID uuid.UUID, inputs []EntryInput) []Entry {
	entries := make([]Entry, 0, len(inputs))
	for _, in := range inputs {
		e := in.toEntry()
		e.ID = uuid.New()
		e.TransferID = transferID
		entries = append(entries, e)
	}
	return entries
}

func sumReport(rows []ReportRow) ReportTotals {
	var totals ReportTotals
	for _, row := range rows {
		totals.Arrived += row.Arrived
		totals.ArrivedReturned += row.ArrivedReturned
		totals.ArrivedNew += row.ArrivedNew
		totals.Departed += row.Departed
		totals.DepartedIsolator += row.DepartedIsolator
	}
	return totals
}

func (s *Service) recordAudit(ctx context.Context, actorID uuid.UUID, action string, transferID uuid.UUID) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "transfer",
		EntityID: transferID.String(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
