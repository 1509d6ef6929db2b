package commissions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/termene/termene/internal/platform/db"
	"github.com/termene/termene/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	List(ctx context.Context, filter ListFilter) ([]Session, int, error)
	Create(ctx context.Context, s Session) error
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, id uuid.UUID) error

	ReplaceEvaluations(ctx context.Context, sessionID uuid.UUID, evaluations []Evaluation) error

	CountSessions(ctx context.Context, year, month int) (int, error)
	ListResults(ctx context.Context, year, monthFrom, monthTo int) ([]ArticleResult, error)
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

const sessionColumns = `s.id, s.session_date, s.year, s.month, s.session_number,
       s.description, s.created_by, s.created_at, s.updated_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM commission_sessions s WHERE s.id = $1`, sessionColumns), id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if err := r.loadEvaluations(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Session, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("s.year = $%d", argPos))
		args = append(args, *filter.Year)
		argPos++
	}
	if filter.Month != nil {
		conditions = append(conditions, fmt.Sprintf("s.month = $%d", argPos))
		args = append(args, *filter.Month)
		argPos++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("s.session_date >= $%d", argPos))
		args = append(args, *filter.DateFrom)
		argPos++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("s.session_date <= $%d", argPos))
		args = append(args, *filter.DateTo)
		argPos++
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(s.session_number ILIKE $%d OR s.description ILIKE $%d OR EXISTS (
			    SELECT 1 FROM commission_evaluations e
			    JOIN persons p ON p.id = e.person_id
			    WHERE e.session_id = s.id
			      AND (p.first_name ILIKE $%d OR p.last_name ILIKE $%d OR p.cnp ILIKE $%d)))`,
			argPos, argPos, argPos, argPos, argPos))
		args = append(args, "%"+q+"%")
		argPos++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	err := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM commission_sessions s WHERE %s`, where), args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM commission_sessions s WHERE %s
		ORDER BY s.session_date DESC, s.created_at DESC
		LIMIT $%d OFFSET $%d`, sessionColumns, where, argPos, argPos+1)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range sessions {
		if err := r.loadEvaluations(ctx, &sessions[i]); err != nil {
			return nil, 0, err
		}
	}
	return sessions, total, nil
}

func (r *repository) Create(ctx context.Context, s Session) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO commission_sessions (id, session_date, year, month, session_number, description, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.SessionDate, s.Year, s.Month, s.SessionNumber, s.Description, s.CreatedBy)
	return err
}

func (r *repository) Update(ctx context.Context, s Session) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE commission_sessions SET session_date = $2, year = $3, month = $4,
		        session_number = $5, description = $6, updated_at = NOW()
		 WHERE id = $1`,
		s.ID, s.SessionDate, s.Year, s.Month, s.SessionNumber, s.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM commission_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *repository) ReplaceEvaluations(ctx context.Context, sessionID uuid.UUID, evaluations []Evaluation) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM commission_evaluations WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	for _, ev := range evaluations {
		_, err := r.db.Exec(ctx,
			`INSERT INTO commission_evaluations (id, session_id, person_id, notes)
			 VALUES ($1, $2, $3, $4)`,
			ev.ID, sessionID, ev.PersonID, ev.Notes)
		if err != nil {
			if isUniqueViolation(err) {
				return shared.ErrConflict
			}
			return err
		}
		for _, res := range ev.ArticleResults {
			_, err := r.db.Exec(ctx,
				`INSERT INTO commission_article_results
				   (id, evaluation_id, article, program_result, behavior_result, decision, notes)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				res.ID, ev.ID, res.Article, res.ProgramResult, res.BehaviorResult, res.Decision, res.Notes)
			if err != nil {
				if isUniqueViolation(err) {
					return shared.ErrConflict
				}
				return err
			}
		}
	}
	return nil
}

func (r *repository) CountSessions(ctx context.Context, year, month int) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM commission_sessions WHERE year = $1 AND month = $2`,
		year, month).Scan(&total)
	return total, err
}

func (r *repository) ListResults(ctx context.Context, year, monthFrom, monthTo int) ([]ArticleResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ar.id, ar.evaluation_id, ar.article, ar.program_result,
		        ar.behavior_result, ar.decision, ar.notes
		 FROM commission_article_results ar
		 JOIN commission_evaluations e ON e.id = ar.evaluation_id
		 JOIN commission_sessions s ON s.id = e.session_id
		 WHERE s.year = $1 AND s.month BETWEEN $2 AND $3`,
		year, monthFrom, monthTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ArticleResult
	for rows.Next() {
		var res ArticleResult
		err := rows.Scan(&res.ID, &res.EvaluationID, &res.Article, &res.ProgramResult,
			&res.BehaviorResult, &res.Decision, &res.Notes)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *repository) loadEvaluations(ctx context.Context, s *Session) error {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.session_id, e.person_id,
		        p.last_name || ' ' || p.first_name, p.cnp, e.notes
		 FROM commission_evaluations e
		 JOIN persons p ON p.id = e.person_id
		 WHERE e.session_id = $1
		 ORDER BY p.last_name, p.first_name`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.Evaluations = nil
	for rows.Next() {
		var ev Evaluation
		err := rows.Scan(&ev.ID, &ev.SessionID, &ev.PersonID,
			&ev.PersonFullName, &ev.PersonCNP, &ev.Notes)
		if err != nil {
			return err
		}
		s.Evaluations = append(s.Evaluations, ev)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range s.Evaluations {
		if err := r.loadArticleResults(ctx, &s.Evaluations[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) loadArticleResults(ctx context.Context, ev *Evaluation) error {
	rows, err := r.db.Query(ctx,
		`SELECT id, evaluation_id, article, program_result, behavior_result, decision, notes
		 FROM commission_article_results
		 WHERE evaluation_id = $1 ORDER BY article`, ev.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	ev.ArticleResults = nil
	for rows.Next() {
		var res ArticleResult
		err := rows.Scan(&res.ID, &res.EvaluationID, &res.Article, &res.ProgramResult,
			&res.BehaviorResult, &res.Decision, &res.Notes)
		if err != nil {
			return err
		}
		ev.ArticleResults = append(ev.ArticleResults, res)
	}
	return rows.Err()
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var sessionDate time.Time
	err := row.Scan(&s.ID, &sessionDate, &s.Year, &s.Month, &s.SessionNumber,
		&s.Description, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.SessionDate = sessionDate
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
