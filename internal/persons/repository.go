package persons

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

	"github.com/termene/termene/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Person, error)
	GetByCNP(ctx context.Context, cnp string) (*Person, error)
	List(ctx context.Context, filter ListFilter) ([]Person, int, error)
	Create(ctx context.Context, p Person) error
	Update(ctx context.Context, p Person) error
	Delete(ctx context.Context, id uuid.UUID) error
	SentenceSummary(ctx context.Context, personID uuid.UUID, today time.Time) (SentenceSummary, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const personColumns = `id, first_name, last_name, cnp, date_of_birth, admission_date, notes,
       created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Person, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM persons WHERE id = $1`, personColumns), id)
	return scanPerson(row)
}

func (r *repository) GetByCNP(ctx context.Context, cnp string) (*Person, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM persons WHERE cnp = $1`, personColumns), cnp)
	return scanPerson(row)
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Person, int, error) {
	whereClause := ""
	var args []interface{}
	argPos := 1

	if filter.Query != "" {
		whereClause = fmt.Sprintf(
			"WHERE (first_name ILIKE $%d OR last_name ILIKE $%d OR cnp LIKE $%d)", argPos, argPos, argPos)
		args = append(args, "%"+filter.Query+"%")
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM persons %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM persons %s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		personColumns, whereClause, argPos, argPos+1)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, err
		}
		people = append(people, *p)
	}
	return people, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Person) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO persons (id, first_name, last_name, cnp, date_of_birth, admission_date,
		                     notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`, p.ID, p.FirstName, p.LastName, p.CNP,
		pgtype.Date{Time: p.DateOfBirth, Valid: true},
		pgtype.Date{Time: p.AdmissionDate, Valid: true},
		pgtype.Text{String: p.Notes, Valid: p.Notes != ""}, p.CreatedBy)
	if isUniqueViolation(err) {
		return shared.ErrConflict
	}
	return err
}

func (r *repository) Update(ctx context.Context, p Person) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE persons
		SET first_name = $2, last_name = $3, cnp = $4, date_of_birth = $5,
		    admission_date = $6, notes = $7, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.FirstName, p.LastName, p.CNP,
		pgtype.Date{Time: p.DateOfBirth, Valid: true},
		pgtype.Date{Time: p.AdmissionDate, Valid: true},
		pgtype.Text{String: p.Notes, Valid: p.Notes != ""})
	if isUniqueViolation(err) {
		return shared.ErrConflict
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPersonNotFound
	}
	return nil
}

// SentenceSummary resolves the active-sentence count and the nearest future
// unfulfilled fraction across the person's active sentences.
func (r *repository) SentenceSummary(ctx context.Context, personID uuid.UUID, today time.Time) (SentenceSummary, error) {
	var summary SentenceSummary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM sentences WHERE person_id = $1 AND status = 'active'
	`, personID).Scan(&summary.ActiveCount)
	if err != nil {
		return SentenceSummary{}, err
	}

	var date pgtype.Date
	var ftype string
	err = r.pool.QueryRow(ctx, `
		SELECT f.calculated_date, f.fraction_type
		FROM sentence_fractions f
		JOIN sentences s ON f.sentence_id = s.id
		WHERE s.person_id = $1 AND s.status = 'active'
		  AND f.is_fulfilled = FALSE AND f.calculated_date >= $2
		ORDER BY f.calculated_date
		LIMIT 1
	`, personID, pgtype.Date{Time: today, Valid: true}).Scan(&date, &ftype)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return summary, nil
		}
		return SentenceSummary{}, err
	}
	summary.Nearest = &NearestFraction{Date: date.Time, Type: ftype}
	return summary, nil
}

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	var notes pgtype.Text
	var birth, admission pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.CNP, &birth, &admission, &notes,
		&p.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	p.DateOfBirth = birth.Time
	p.AdmissionDate = admission.Time
	if notes.Valid {
		p.Notes = notes.String
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
