package sentencing

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
	"github.com/termene/termene/internal/sentencing/calc"
	"github.com/termene/termene/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	Get(ctx context.Context, id uuid.UUID) (*Sentence, error)
	List(ctx context.Context, filter ListFilter) ([]Sentence, int, error)
	ListActive(ctx context.Context) ([]Sentence, error)
	Create(ctx context.Context, s Sentence) error
	Update(ctx context.Context, s Sentence) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, releaseDate *time.Time) error

	InsertReduction(ctx context.Context, r Reduction) error
	DeleteReduction(ctx context.Context, sentenceID, id uuid.UUID) error

	GetArrest(ctx context.Context, sentenceID, id uuid.UUID) (*PreventiveArrest, error)
	InsertArrest(ctx context.Context, a PreventiveArrest) error
	UpdateArrest(ctx context.Context, a PreventiveArrest) error
	DeleteArrest(ctx context.Context, sentenceID, id uuid.UUID) error

	GetLaborCredit(ctx context.Context, sentenceID, id uuid.UUID) (*LaborCredit, error)
	InsertLaborCredit(ctx context.Context, lc LaborCredit) error
	UpdateLaborCredit(ctx context.Context, lc LaborCredit) error
	DeleteLaborCredit(ctx context.Context, sentenceID, id uuid.UUID) error

	GetFraction(ctx context.Context, sentenceID, id uuid.UUID) (*Fraction, error)
	ListFractions(ctx context.Context, sentenceID uuid.UUID) ([]Fraction, error)
	InsertFraction(ctx context.Context, f Fraction) error
	UpdateFraction(ctx context.Context, f Fraction) error
	DeleteFractions(ctx context.Context, sentenceID uuid.UUID) error
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

const sentenceColumns = `id, person_id, crime_type, crime_description, years, months, days,
       start_date, status, release_date, notes, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Sentence, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM sentences WHERE id = $1`, sentenceColumns), id)
	s, err := scanSentence(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSentenceNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Sentence, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	if filter.PersonID != nil {
		conditions = append(conditions, fmt.Sprintf("person_id = $%d", argPos))
		args = append(args, *filter.PersonID)
		argPos++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.CrimeType != nil {
		conditions = append(conditions, fmt.Sprintf("crime_type = $%d", argPos))
		args = append(args, *filter.CrimeType)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM sentences %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM sentences %s ORDER BY start_date DESC, id LIMIT $%d OFFSET $%d`,
		sentenceColumns, whereClause, argPos, argPos+1)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sentences []Sentence
	for rows.Next() {
		s, err := scanSentence(rows)
		if err != nil {
			return nil, 0, err
		}
		sentences = append(sentences, *s)
	}
	return sentences, total, rows.Err()
}

// ListActive returns active sentences with their ledgers and fractions
// loaded. Used by recalculation and alert scans.
func (r *repository) ListActive(ctx context.Context) ([]Sentence, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM sentences WHERE status = $1 ORDER BY start_date`, sentenceColumns),
		StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sentences []Sentence
	for rows.Next() {
		s, err := scanSentence(rows)
		if err != nil {
			return nil, err
		}
		sentences = append(sentences, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range sentences {
		if err := r.loadChildren(ctx, &sentences[i]); err != nil {
			return nil, err
		}
	}
	return sentences, nil
}

func (r *repository) Create(ctx context.Context, s Sentence) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sentences (id, person_id, crime_type, crime_description, years, months, days,
		                       start_date, status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`, s.ID, s.PersonID, s.CrimeType, textOrNull(s.CrimeDescription), s.Years, s.Months, s.Days,
		dateOf(s.StartDate), s.Status, textOrNull(s.Notes), s.CreatedBy)
	return err
}

func (r *repository) Update(ctx context.Context, s Sentence) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sentences
		SET crime_type = $2, crime_description = $3, years = $4, months = $5, days = $6,
		    start_date = $7, notes = $8, updated_at = NOW()
		WHERE id = $1
	`, s.ID, s.CrimeType, textOrNull(s.CrimeDescription), s.Years, s.Months, s.Days,
		dateOf(s.StartDate), textOrNull(s.Notes))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSentenceNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, releaseDate *time.Time) error {
	var release pgtype.Date
	if releaseDate != nil {
		release = pgtype.Date{Time: *releaseDate, Valid: true}
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE sentences SET status = $2, release_date = $3, updated_at = NOW() WHERE id = $1
	`, id, status, release)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSentenceNotFound
	}
	return nil
}

func (r *repository) InsertReduction(ctx context.Context, red Reduction) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sentence_reductions (id, sentence_id, legal_article, years, months, days, applied_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, red.ID, red.SentenceID, red.LegalArticle, red.Years, red.Months, red.Days,
		dateOf(red.AppliedDate), red.CreatedBy)
	return err
}

func (r *repository) DeleteReduction(ctx context.Context, sentenceID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM sentence_reductions WHERE id = $1 AND sentence_id = $2`, id, sentenceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repository) GetArrest(ctx context.Context, sentenceID, id uuid.UUID) (*PreventiveArrest, error) {
	var a PreventiveArrest
	var start, end pgtype.Date
	var createdAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx, `
		SELECT id, sentence_id, start_date, end_date, created_by, created_at
		FROM preventive_arrests WHERE id = $1 AND sentence_id = $2
	`, id, sentenceID).Scan(&a.ID, &a.SentenceID, &start, &end, &a.CreatedBy, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	a.StartDate = start.Time
	a.EndDate = end.Time
	a.CreatedAt = createdAt.Time
	return &a, nil
}

func (r *repository) InsertArrest(ctx context.Context, a PreventiveArrest) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO preventive_arrests (id, sentence_id, start_date, end_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, a.ID, a.SentenceID, dateOf(a.StartDate), dateOf(a.EndDate), a.CreatedBy)
	return err
}

func (r *repository) UpdateArrest(ctx context.Context, a PreventiveArrest) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE preventive_arrests SET start_date = $3, end_date = $4 WHERE id = $1 AND sentence_id = $2
	`, a.ID, a.SentenceID, dateOf(a.StartDate), dateOf(a.EndDate))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repository) DeleteArrest(ctx context.Context, sentenceID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM preventive_arrests WHERE id = $1 AND sentence_id = $2`, id, sentenceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repository) GetLaborCredit(ctx context.Context, sentenceID, id uuid.UUID) (*LaborCredit, error) {
	var lc LaborCredit
	var createdAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx, `
		SELECT id, sentence_id, month, year, days, created_by, created_at
		FROM labor_credits WHERE id = $1 AND sentence_id = $2
	`, id, sentenceID).Scan(&lc.ID, &lc.SentenceID, &lc.Month, &lc.Year, &lc.Days, &lc.CreatedBy, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	lc.CreatedAt = createdAt.Time
	return &lc, nil
}

func (r *repository) InsertLaborCredit(ctx context.Context, lc LaborCredit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO labor_credits (id, sentence_id, month, year, days, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, lc.ID, lc.SentenceID, lc.Month, lc.Year, lc.Days, lc.CreatedBy)
	if isUniqueViolation(err) {
		return shared.ErrConflict
	}
	return err
}

func (r *repository) UpdateLaborCredit(ctx context.Context, lc LaborCredit) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE labor_credits SET month = $3, year = $4, days = $5 WHERE id = $1 AND sentence_id = $2
	`, lc.ID, lc.SentenceID, lc.Month, lc.Year, lc.Days)
	if isUniqueViolation(err) {
		return shared.ErrConflict
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repository) DeleteLaborCredit(ctx context.Context, sentenceID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM labor_credits WHERE id = $1 AND sentence_id = $2`, id, sentenceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repository) GetFraction(ctx context.Context, sentenceID, id uuid.UUID) (*Fraction, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, sentence_id, fraction_type, calculated_date, is_fulfilled, fulfilled_date,
		       description, notes, created_at, updated_at
		FROM sentence_fractions WHERE id = $1 AND sentence_id = $2
	`, id, sentenceID)
	f, err := scanFraction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFractionNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *repository) ListFractions(ctx context.Context, sentenceID uuid.UUID) ([]Fraction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sentence_id, fraction_type, calculated_date, is_fulfilled, fulfilled_date,
		       description, notes, created_at, updated_at
		FROM sentence_fractions WHERE sentence_id = $1 ORDER BY calculated_date
	`, sentenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fractions []Fraction
	for rows.Next() {
		f, err := scanFraction(rows)
		if err != nil {
			return nil, err
		}
		fractions = append(fractions, *f)
	}
	return fractions, rows.Err()
}

func (r *repository) InsertFraction(ctx context.Context, f Fraction) error {
	var fulfilled pgtype.Date
	if f.FulfilledDate != nil {
		fulfilled = pgtype.Date{Time: *f.FulfilledDate, Valid: true}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO sentence_fractions (id, sentence_id, fraction_type, calculated_date, is_fulfilled,
		                                fulfilled_date, description, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`, f.ID, f.SentenceID, f.Type, dateOf(f.CalculatedDate), f.IsFulfilled,
		fulfilled, textOrNull(f.Description), textOrNull(f.Notes))
	return err
}

func (r *repository) UpdateFraction(ctx context.Context, f Fraction) error {
	var fulfilled pgtype.Date
	if f.FulfilledDate != nil {
		fulfilled = pgtype.Date{Time: *f.FulfilledDate, Valid: true}
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE sentence_fractions
		SET is_fulfilled = $3, fulfilled_date = $4, notes = $5, updated_at = NOW()
		WHERE id = $1 AND sentence_id = $2
	`, f.ID, f.SentenceID, f.IsFulfilled, fulfilled, textOrNull(f.Notes))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFractionNotFound
	}
	return nil
}

func (r *repository) DeleteFractions(ctx context.Context, sentenceID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sentence_fractions WHERE sentence_id = $1`, sentenceID)
	return err
}

func (r *repository) loadChildren(ctx context.Context, s *Sentence) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, sentence_id, legal_article, years, months, days, applied_date, created_by, created_at
		FROM sentence_reductions WHERE sentence_id = $1 ORDER BY applied_date
	`, s.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var red Reduction
		var applied pgtype.Date
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&red.ID, &red.SentenceID, &red.LegalArticle,
			&red.Years, &red.Months, &red.Days, &applied, &red.CreatedBy, &createdAt); err != nil {
			rows.Close()
			return err
		}
		red.AppliedDate = applied.Time
		red.CreatedAt = createdAt.Time
		s.Reductions = append(s.Reductions, red)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, sentence_id, start_date, end_date, created_by, created_at
		FROM preventive_arrests WHERE sentence_id = $1 ORDER BY start_date
	`, s.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var a PreventiveArrest
		var start, end pgtype.Date
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&a.ID, &a.SentenceID, &start, &end, &a.CreatedBy, &createdAt); err != nil {
			rows.Close()
			return err
		}
		a.StartDate = start.Time
		a.EndDate = end.Time
		a.CreatedAt = createdAt.Time
		s.Arrests = append(s.Arrests, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, sentence_id, month, year, days, created_by, created_at
		FROM labor_credits WHERE sentence_id = $1 ORDER BY year, month
	`, s.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var lc LaborCredit
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&lc.ID, &lc.SentenceID, &lc.Month, &lc.Year, &lc.Days, &lc.CreatedBy, &createdAt); err != nil {
			rows.Close()
			return err
		}
		lc.CreatedAt = createdAt.Time
		s.LaborCredits = append(s.LaborCredits, lc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	fractions, err := r.ListFractions(ctx, s.ID)
	if err != nil {
		return err
	}
	s.Fractions = fractions
	return nil
}

func scanSentence(row pgx.Row) (*Sentence, error) {
	var s Sentence
	var crimeDesc, notes pgtype.Text
	var start, release pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&s.ID, &s.PersonID, &s.CrimeType, &crimeDesc, &s.Years, &s.Months, &s.Days,
		&start, &s.Status, &release, &notes, &s.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if crimeDesc.Valid {
		s.CrimeDescription = crimeDesc.String
	}
	if notes.Valid {
		s.Notes = notes.String
	}
	s.StartDate = start.Time
	if release.Valid {
		val := release.Time
		s.ReleaseDate = &val
	}
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return &s, nil
}

func scanFraction(row pgx.Row) (*Fraction, error) {
	var f Fraction
	var ftype string
	var calculated, fulfilled pgtype.Date
	var description, notes pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&f.ID, &f.SentenceID, &ftype, &calculated, &f.IsFulfilled,
		&fulfilled, &description, &notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	f.Type = calc.FractionType(ftype)
	f.CalculatedDate = calculated.Time
	if fulfilled.Valid {
		val := fulfilled.Time
		f.FulfilledDate = &val
	}
	if description.Valid {
		f.Description = description.String
	}
	if notes.Valid {
		f.Notes = notes.String
	}
	f.CreatedAt = createdAt.Time
	f.UpdatedAt = updatedAt.Time
	return &f, nil
}

func dateOf(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
