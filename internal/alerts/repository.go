package alerts

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
)

type ListRequest struct {
	UserID   uuid.UUID
	Type     *Class
	Priority *Priority
	IsRead   *bool
	Page     int
	PerPage  int
}

type Repository interface {
	List(ctx context.Context, req ListRequest) ([]Alert, int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	Insert(ctx context.Context, a Alert) error
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
	ExistsForDay(ctx context.Context, fractionID, userID uuid.UUID, day time.Time) (bool, error)
	ListEligibleFractions(ctx context.Context) ([]EligibleFraction, error)
	CountFulfilled(ctx context.Context) (int, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Alert, int, error) {
	conditions := []string{"a.user_id = $1"}
	args := []interface{}{req.UserID}
	argPos := 2

	if req.Type != nil {
		conditions = append(conditions, fmt.Sprintf("a.alert_type = $%d", argPos))
		args = append(args, *req.Type)
		argPos++
	}
	if req.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("a.priority = $%d", argPos))
		args = append(args, *req.Priority)
		argPos++
	}
	if req.IsRead != nil {
		conditions = append(conditions, fmt.Sprintf("a.is_read = $%d", argPos))
		args = append(args, *req.IsRead)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM alerts a %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.user_id, a.alert_type, a.priority, a.fraction_id, a.sentence_id,
		       a.person_id, p.full_name, a.message, a.target_date, a.is_read, a.created_at
		FROM alerts a
		JOIN persons p ON a.person_id = p.id
		%s
		ORDER BY a.created_at DESC, a.id
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var target pgtype.Date
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Priority, &a.FractionID, &a.SentenceID,
			&a.PersonID, &a.PersonName, &a.Message, &target, &a.IsRead, &createdAt); err != nil {
			return nil, 0, err
		}
		a.TargetDate = target.Time
		a.CreatedAt = createdAt.Time
		alerts = append(alerts, a)
	}
	return alerts, total, rows.Err()
}

func (r *repository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM alerts WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	return count, err
}

func (r *repository) Insert(ctx context.Context, a Alert) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO alerts (id, user_id, alert_type, priority, fraction_id, sentence_id,
		                    person_id, message, target_date, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, NOW())
	`, a.ID, a.UserID, a.Type, a.Priority, a.FractionID, a.SentenceID,
		a.PersonID, a.Message, pgtype.Date{Time: a.TargetDate, Valid: true})
	return err
}

func (r *repository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE alerts SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE alerts SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ExistsForDay checks the de-duplication key: one alert per fraction, user
// and calendar day.
func (r *repository) ExistsForDay(ctx context.Context, fractionID, userID uuid.UUID, day time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE fraction_id = $1 AND user_id = $2 AND created_at::date = $3
		)
	`, fractionID, userID, pgtype.Date{Time: day, Valid: true}).Scan(&exists)
	return exists, err
}

func (r *repository) ListEligibleFractions(ctx context.Context) ([]EligibleFraction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.fraction_type, f.calculated_date, f.is_fulfilled,
		       s.id, p.id, p.full_name
		FROM sentence_fractions f
		JOIN sentences s ON f.sentence_id = s.id
		JOIN persons p ON s.person_id = p.id
		WHERE s.status = 'active' AND f.is_fulfilled = FALSE
		ORDER BY f.calculated_date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fractions []EligibleFraction
	for rows.Next() {
		var f EligibleFraction
		var calculated pgtype.Date
		if err := rows.Scan(&f.FractionID, &f.FractionType, &calculated, &f.IsFulfilled,
			&f.SentenceID, &f.PersonID, &f.PersonName); err != nil {
			return nil, err
		}
		f.CalculatedDate = calculated.Time
		fractions = append(fractions, f)
	}
	return fractions, rows.Err()
}

func (r *repository) CountFulfilled(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM sentence_fractions f
		JOIN sentences s ON f.sentence_id = s.id
		WHERE s.status = 'active' AND f.is_fulfilled = TRUE
	`).Scan(&count)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}
