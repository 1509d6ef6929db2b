package petitions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

// RecipientLister yields the users who receive deadline notifications.
type RecipientLister interface {
	ListRecipientIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Service struct {
	repo       Repository
	recipients RecipientLister
	deadlines  Deadlines
	audit      shared.AuditRecorder
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo Repository, recipients RecipientLister, deadlines Deadlines, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		recipients: recipients,
		deadlines:  deadlines,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

// Deadlines exposes the configured response window for serialization.
func (s *Service) Deadlines() Deadlines {
	return s.deadlines
}

// Create registers a petition, allocating the next sequence number for its
// prefix and year inside the same transaction as the insert.
func (s *Service) Create(ctx context.Context, req CreatePetitionRequest, actorID uuid.UUID) (*Petition, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prefix := req.RegistrationPrefix
	if prefix == "" {
		prefix = "P"
	}

	petition := Petition{
		ID:                 uuid.New(),
		RegistrationPrefix: prefix,
		RegistrationYear:   req.RegistrationDate.Year(),
		RegistrationDate:   req.RegistrationDate,
		PetitionerType:     req.PetitionerType,
		PetitionerName:     req.PetitionerName,
		DetaineeFullName:   req.DetaineeFullName,
		ObjectType:         req.ObjectType,
		ObjectDescription:  req.ObjectDescription,
		Status:             StatusInregistrata,
		CreatedBy:          actorID,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		seq, err := repo.NextSequence(ctx, petition.RegistrationPrefix, petition.RegistrationYear)
		if err != nil {
			return fmt.Errorf("allocate registration sequence: %w", err)
		}
		petition.RegistrationSeq = seq
		return repo.Create(ctx, petition)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "petition.create", petition.ID, map[string]any{
		"registration_number": petition.RegistrationNumber(),
	})
	s.logger.Info("petition registered",
		"petition_id", petition.ID, "registration_number", petition.RegistrationNumber())
	return s.repo.Get(ctx, petition.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Petition, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Petition, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 25
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdatePetitionRequest, actorID uuid.UUID) (*Petition, error) {
	petition, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PetitionerType != nil {
		if !ValidPetitionerType(*req.PetitionerType) {
			return nil, shared.Validationf("petitioner_type", "tip petiționar necunoscut")
		}
		petition.PetitionerType = *req.PetitionerType
	}
	if req.PetitionerName != nil {
		petition.PetitionerName = *req.PetitionerName
	}
	if req.DetaineeFullName != nil {
		petition.DetaineeFullName = *req.DetaineeFullName
	}
	if req.ObjectType != nil {
		if !ValidObjectType(*req.ObjectType) {
			return nil, shared.Validationf("object_type", "tip obiect necunoscut")
		}
		petition.ObjectType = *req.ObjectType
	}
	if req.ObjectDescription != nil {
		petition.ObjectDescription = *req.ObjectDescription
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, shared.Validationf("status", "status necunoscut")
		}
		petition.Status = *req.Status
	}

	if err := s.repo.Update(ctx, *petition); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "petition.update", id, nil)
	return s.repo.Get(ctx, id)
}

// Assign routes the petition to a user and notifies them immediately.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, req AssignRequest, actorID uuid.UUID) (*Petition, error) {
	petition, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	petition.AssignedTo = &req.UserID
	if petition.Status == StatusInregistrata {
		petition.Status = StatusInExaminare
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, *petition); err != nil {
			return err
		}
		return repo.InsertNotification(ctx, Notification{
			ID:         uuid.New(),
			UserID:     req.UserID,
			Type:       NotificationAssigned,
			PetitionID: petition.ID,
			Message:    fmt.Sprintf("Vi s-a atribuit petiția %s.", petition.RegistrationNumber()),
			DueDate:    petition.ResponseDueDate(s.deadlines),
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "petition.assign", id, map[string]any{"assigned_to": req.UserID.String()})
	return s.repo.Get(ctx, id)
}

// Resolve closes the petition with a resolution.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, req ResolveRequest, actorID uuid.UUID) (*Petition, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	petition, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if petition.Resolved() {
		return nil, shared.Validationf("status", "petiția este deja soluționată")
	}

	status := req.Status
	if status == "" {
		status = StatusSolutionata
	}
	resolution := req.ResolutionDate
	petition.Status = status
	petition.ResolutionDate = &resolution
	petition.ResolutionText = req.ResolutionText

	if err := s.repo.Update(ctx, *petition); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "petition.resolve", id, map[string]any{"status": string(status)})
	s.logger.Info("petition resolved", "petition_id", id, "status", status)
	return s.repo.Get(ctx, id)
}

// ScanDue walks unresolved petitions and notifies every recipient about
// overdue and due-soon deadlines. At most one notification per petition,
// user, type and calendar day.
func (s *Service) ScanDue(ctx context.Context) (int, error) {
	petitions, err := s.repo.ListUnresolved(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unresolved petitions: %w", err)
	}
	userIDs, err := s.recipients.ListRecipientIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recipients: %w", err)
	}

	today := s.today()
	created := 0
	for i := range petitions {
		p := &petitions[i]

		var ntype NotificationType
		var message string
		switch {
		case p.IsOverdue(s.deadlines, today):
			ntype = NotificationOverdue
			message = fmt.Sprintf("Petiția %s a depășit termenul de răspuns!", p.RegistrationNumber())
		case p.IsDueSoon(s.deadlines, today):
			ntype = NotificationDueSoon
			message = fmt.Sprintf("Petiția %s expiră în %d zile.", p.RegistrationNumber(), p.DaysUntilDue(s.deadlines, today))
		default:
			continue
		}

		for _, userID := range userIDs {
			exists, err := s.repo.NotificationExistsForDay(ctx, p.ID, userID, ntype, today)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}
			err = s.repo.InsertNotification(ctx, Notification{
				ID:         uuid.New(),
				UserID:     userID,
				Type:       ntype,
				PetitionID: p.ID,
				Message:    message,
				DueDate:    p.ResponseDueDate(s.deadlines),
			})
			if err != nil {
				return created, fmt.Errorf("insert notification: %w", err)
			}
			created++
		}
	}
	s.logger.Info("petition due scan finished", "petitions", len(petitions), "notifications", created)
	return created, nil
}

func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID, page, perPage int) ([]Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}
	return s.repo.ListNotifications(ctx, userID, page, perPage)
}

func (s *Service) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkNotificationRead(ctx, userID, id)
}

func (s *Service) Today() time.Time {
	return s.today()
}

func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) recordAudit(ctx context.Context, actorID uuid.UUID, action string, petitionID uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "petition",
		EntityID: petitionID.String(),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
