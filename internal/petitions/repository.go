package petitions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/termene/termene/internal/platform/db"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	Get(ctx context.Context, id uuid.UUID) (*Petition, error)
	List(ctx context.Context, filter ListFilter) ([]Petition, int, error)
	ListUnresolved(ctx context.Context) ([]Petition, error)
	Create(ctx context.Context, p Petition) error
	Update(ctx context.Context, p Petition) error
	NextSequence(ctx context.Context, prefix string, year int) (int, error)

	InsertNotification(ctx context.Context, n Notification) error
	NotificationExistsForDay(ctx context.Context, petitionID, userID uuid.UUID, ntype NotificationType, day time.Time) (bool, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, page, perPage int) ([]Notification, int, error)
	MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const petitionColumns = `id, registration_prefix, registration_seq, registration_year,
       registration_date, petitioner_type, petitioner_name, detainee_fullname,
       object_type, object_description, status, assigned_to,
       resolution_date, resolution_text, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Petition, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM petitions WHERE id = $1`, petitionColumns), id)
	p, err := scanPetition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPetitionNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Petition, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.PetitionerType != nil {
		conditions = append(conditions, fmt.Sprintf("petitioner_type = $%d", argPos))
		args = append(args, *filter.PetitionerType)
		argPos++
	}
	if filter.ObjectType != nil {
		conditions = append(conditions, fmt.Sprintf("object_type = $%d", argPos))
		args = append(args, *filter.ObjectType)
		argPos++
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argPos))
		args = append(args, *filter.AssignedTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM petitions %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM petitions %s
		ORDER BY registration_date DESC, registration_seq DESC
		LIMIT $%d OFFSET $%d`, petitionColumns, whereClause, argPos, argPos+1)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var petitions []Petition
	for rows.Next() {
		p, err := scanPetition(rows)
		if err != nil {
			return nil, 0, err
		}
		petitions = append(petitions, *p)
	}
	return petitions, total, rows.Err()
}

// ListUnresolved returns petitions still counting against the response
// deadline. Used by the due-date scan.
func (r *repository) ListUnresolved(ctx context.Context) ([]Petition, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM petitions WHERE status <> 'solutionata' ORDER BY registration_date`, petitionColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var petitions []Petition
	for rows.Next() {
		p, err := scanPetition(rows)
		if err != nil {
			return nil, err
		}
		petitions = append(petitions, *p)
	}
	return petitions, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Petition) error {
	var assigned any
	if p.AssignedTo != nil {
		assigned = *p.AssignedTo
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO petitions (id, registration_prefix, registration_seq, registration_year,
		                       registration_date, petitioner_type, petitioner_name, detainee_fullname,
		                       object_type, object_description, status, assigned_to,
		                       created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`, p.ID, p.RegistrationPrefix, p.RegistrationSeq, p.RegistrationYear,
		pgtype.Date{Time: p.RegistrationDate, Valid: true},
		p.PetitionerType, p.PetitionerName,
		pgtype.Text{String: p.DetaineeFullName, Valid: p.DetaineeFullName != ""},
		p.ObjectType,
		pgtype.Text{String: p.ObjectDescription, Valid: p.ObjectDescription != ""},
		p.Status, assigned, p.CreatedBy)
	return err
}

func (r *repository) Update(ctx context.Context, p Petition) error {
	var assigned any
	if p.AssignedTo != nil {
		assigned = *p.AssignedTo
	}
	var resolution pgtype.Date
	if p.ResolutionDate != nil {
		resolution = pgtype.Date{Time: *p.ResolutionDate, Valid: true}
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE petitions
		SET petitioner_type = $2, petitioner_name = $3, detainee_fullname = $4,
		    object_type = $5, object_description = $6, status = $7, assigned_to = $8,
		    resolution_date = $9, resolution_text = $10, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.PetitionerType, p.PetitionerName,
		pgtype.Text{String: p.DetaineeFullName, Valid: p.DetaineeFullName != ""},
		p.ObjectType,
		pgtype.Text{String: p.ObjectDescription, Valid: p.ObjectDescription != ""},
		p.Status, assigned, resolution,
		pgtype.Text{String: p.ResolutionText, Valid: p.ResolutionText != ""})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPetitionNotFound
	}
	return nil
}

// NextSequence allocates the next registration sequence for a prefix and
// year through an upsert counter, safe under concurrent registrations.
func (r *repository) NextSequence(ctx context.Context, prefix string, year int) (int, error) {
	var seq int
	err := r.db.QueryRow(ctx, `
		INSERT INTO petition_sequences (prefix, year, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year)
		DO UPDATE SET seq = petition_sequences.seq + 1
		RETURNING seq
	`, prefix, year).Scan(&seq)
	return seq, err
}

func (r *repository) InsertNotification(ctx context.Context, n Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO petition_notifications (id, user_id, type, petition_id, message, due_date, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
	`, n.ID, n.UserID, n.Type, n.PetitionID, n.Message,
		pgtype.Date{Time: n.DueDate, Valid: true})
	return err
}

func (r *repository) NotificationExistsForDay(ctx context.Context, petitionID, userID uuid.UUID, ntype NotificationType, day time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM petition_notifications
			WHERE petition_id = $1 AND user_id = $2 AND type = $3 AND created_at::date = $4
		)
	`, petitionID, userID, ntype, pgtype.Date{Time: day, Valid: true}).Scan(&exists)
	return exists, err
}

func (r *repository) ListNotifications(ctx context.Context, userID uuid.UUID, page, perPage int) ([]Notification, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM petition_notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, petition_id, message, due_date, is_read, created_at
		FROM petition_notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		var due pgtype.Date
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.PetitionID, &n.Message, &due, &n.IsRead, &createdAt); err != nil {
			return nil, 0, err
		}
		n.DueDate = due.Time
		n.CreatedAt = createdAt.Time
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

func (r *repository) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE petition_notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func scanPetition(row pgx.Row) (*Petition, error) {
	var p Petition
	var detainee, description, resolutionText pgtype.Text
	var registration, resolution pgtype.Date
	var assigned pgtype.UUID
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&p.ID, &p.RegistrationPrefix, &p.RegistrationSeq, &p.RegistrationYear,
		&registration, &p.PetitionerType, &p.PetitionerName, &detainee,
		&p.ObjectType, &description, &p.Status, &assigned,
		&resolution, &resolutionText, &p.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.RegistrationDate = registration.Time
	if detainee.Valid {
		p.DetaineeFullName = detainee.String
	}
	if description.Valid {
		p.ObjectDescription = description.String
	}
	if assigned.Valid {
		id := uuid.UUID(assigned.Bytes)
		p.AssignedTo = &id
	}
	if resolution.Valid {
		val := resolution.Time
		p.ResolutionDate = &val
	}
	if resolutionText.Valid {
		p.ResolutionText = resolutionText.String
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}
