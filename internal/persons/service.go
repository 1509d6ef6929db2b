package persons

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

type Service struct {
	repo   Repository
	audit  shared.AuditRecorder
	logger *slog.Logger
}

func NewService(repo Repository, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) Create(ctx context.Context, req CreatePersonRequest, actorID uuid.UUID) (*Person, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByCNP(ctx, req.CNP); err == nil {
		return nil, shared.Validationf("cnp", "există deja o persoană cu acest CNP")
	} else if !errors.Is(err, ErrPersonNotFound) {
		return nil, err
	}

	person := Person{
		ID:            uuid.New(),
		FirstName:     NormalizeName(req.FirstName),
		LastName:      NormalizeName(req.LastName),
		CNP:           req.CNP,
		DateOfBirth:   req.DateOfBirth,
		AdmissionDate: req.AdmissionDate,
		Notes:         req.Notes,
		CreatedBy:     actorID,
	}
	if err := s.repo.Create(ctx, person); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Validationf("cnp", "există deja o persoană cu acest CNP")
		}
		return nil, fmt.Errorf("create person: %w", err)
	}

	s.recordAudit(ctx, actorID, "person.create", person.ID, map[string]any{"cnp": person.CNP})
	s.logger.Info("person registered", "person_id", person.ID)
	return s.repo.Get(ctx, person.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Person, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Person, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 25
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdatePersonRequest, actorID uuid.UUID) (*Person, error) {
	person, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		person.FirstName = NormalizeName(*req.FirstName)
	}
	if req.LastName != nil {
		person.LastName = NormalizeName(*req.LastName)
	}
	if req.CNP != nil && *req.CNP != person.CNP {
		if !ValidCNP(*req.CNP) {
			return nil, shared.Validationf("cnp", "CNP-ul trebuie să conțină exact 13 cifre")
		}
		person.CNP = *req.CNP
	}
	if req.DateOfBirth != nil {
		person.DateOfBirth = *req.DateOfBirth
	}
	if req.AdmissionDate != nil {
		person.AdmissionDate = *req.AdmissionDate
	}
	if req.Notes != nil {
		person.Notes = *req.Notes
	}
	if person.DateOfBirth.After(person.AdmissionDate) {
		return nil, shared.Validationf("date_of_birth", "data nașterii nu poate fi după data internării")
	}

	if err := s.repo.Update(ctx, *person); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Validationf("cnp", "există deja o persoană cu acest CNP")
		}
		return nil, err
	}

	s.recordAudit(ctx, actorID, "person.update", id, nil)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "person.delete", id, nil)
	return nil
}

func (s *Service) SentenceSummary(ctx context.Context, personID uuid.UUID) (SentenceSummary, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.SentenceSummary(ctx, personID, today)
}

func (s *Service) recordAudit(ctx context.Context, actorID uuid.UUID, action string, personID uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "person",
		EntityID: personID.String(),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
