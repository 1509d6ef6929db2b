package transfers

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

	Get(ctx context.Context, id uuid.UUID) (*Transfer, error)
	List(ctx context.Context, filter ListFilter) ([]Transfer, int, error)
	Create(ctx context.Context, t Transfer) error
	Update(ctx context.Context, t Transfer) error
	Delete(ctx context.Context, id uuid.UUID) error

	ReplaceEntries(ctx context.Context, transferID uuid.UUID, entries []Entry) error

	Count(ctx context.Context) (int, error)
	MonthTotals(ctx context.Context, year, month int) (arrived, departed int, err error)
	AggregateByPenitentiary(ctx context.Context, year, monthFrom, monthTo int) ([]ReportRow, error)
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

const transferColumns = `id, transfer_date, year, month, description, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM transfers WHERE id = $1`, transferColumns), id)
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	if err := r.loadEntries(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Transfer, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("year = $%d", argPos))
		args = append(args, *filter.Year)
		argPos++
	}
	if filter.Month != nil {
		conditions = append(conditions, fmt.Sprintf("month = $%d", argPos))
		args = append(args, *filter.Month)
		argPos++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("transfer_date >= $%d", argPos))
		args = append(args, *filter.DateFrom)
		argPos++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("transfer_date <= $%d", argPos))
		args = append(args, *filter.DateTo)
		argPos++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	err := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM transfers WHERE %s`, where), args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE %s
		ORDER BY transfer_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, transferColumns, where, argPos, argPos+1)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transfers []Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, err
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range transfers {
		if err := r.loadEntries(ctx, &transfers[i]); err != nil {
			return nil, 0, err
		}
	}
	return transfers, total, nil
}

func (r *repository) Create(ctx context.Context, t Transfer) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO transfers (id, transfer_date, year, month, description, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.TransferDate, t.Year, t.Month, t.Description, t.CreatedBy)
	return err
}

func (r *repository) Update(ctx context.Context, t Transfer) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE transfers SET transfer_date = $2, year = $3, month = $4,
		        description = $5, updated_at = NOW()
		 WHERE id = $1`,
		t.ID, t.TransferDate, t.Year, t.Month, t.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transfers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferNotFound
	}
	return nil
}

func (r *repository) ReplaceEntries(ctx context.Context, transferID uuid.UUID, entries []Entry) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM transfer_entries WHERE transfer_id = $1`, transferID); err != nil {
		return err
	}
	for _, e := range entries {
		_, err := r.db.Exec(ctx,
			`INSERT INTO transfer_entries
			   (id, transfer_id, penitentiary, arrived, arrived_returned, arrived_new,
			    departed, departed_isolator, notes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, transferID, int(e.Penitentiary), e.Arrived, e.ArrivedReturned,
			e.ArrivedNew, e.Departed, e.DepartedIsolator, e.Notes)
		if err != nil {
			if isUniqueViolation(err) {
				return shared.ErrConflict
			}
			return err
		}
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transfers`).Scan(&total)
	return total, err
}

func (r *repository) MonthTotals(ctx context.Context, year, month int) (int, int, error) {
	var arrived, departed int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(e.arrived), 0), COALESCE(SUM(e.departed), 0)
		 FROM transfer_entries e
		 JOIN transfers t ON t.id = e.transfer_id
		 WHERE t.year = $1 AND t.month = $2`,
		year, month).Scan(&arrived, &departed)
	return arrived, departed, err
}

func (r *repository) AggregateByPenitentiary(ctx context.Context, year, monthFrom, monthTo int) ([]ReportRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.penitentiary,
		        COALESCE(SUM(e.arrived), 0),
		        COALESCE(SUM(e.arrived_returned), 0),
		        COALESCE(SUM(e.arrived_new), 0),
		        COALESCE(SUM(e.departed), 0),
		        COALESCE(SUM(e.departed_isolator), 0)
		 FROM transfer_entries e
		 JOIN transfers t ON t.id = e.transfer_id
		 WHERE t.year = $1 AND t.month BETWEEN $2 AND $3
		 GROUP BY e.penitentiary
		 ORDER BY e.penitentiary`,
		year, monthFrom, monthTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []ReportRow
	for rows.Next() {
		var row ReportRow
		var pen int
		err := rows.Scan(&pen, &row.Arrived, &row.ArrivedReturned, &row.ArrivedNew,
			&row.Departed, &row.DepartedIsolator)
		if err != nil {
			return nil, err
		}
		row.Penitentiary = Penitentiary(pen)
		row.Label = row.Penitentiary.Label()
		row.IsIsolator = row.Penitentiary.IsIsolator()
		report = append(report, row)
	}
	return report, rows.Err()
}

func (r *repository) loadEntries(ctx context.Context, t *Transfer) error {
	rows, err := r.db.Query(ctx,
		`SELECT id, transfer_id, penitentiary, arrived, arrived_returned, arrived_new,
		        departed, departed_isolator, notes
		 FROM transfer_entries WHERE transfer_id = $1 ORDER BY penitentiary`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	t.Entries = nil
	for rows.Next() {
		var e Entry
		var pen int
		err := rows.Scan(&e.ID, &e.TransferID, &pen, &e.Arrived, &e.ArrivedReturned,
			&e.ArrivedNew, &e.Departed, &e.DepartedIsolator, &e.Notes)
		if err != nil {
			return err
		}
		e.Penitentiary = Penitentiary(pen)
		t.Entries = append(t.Entries, e)
	}
	return rows.Err()
}

func scanTransfer(row pgx.Row) (*Transfer, error) {
	var t Transfer
	var transferDate time.Time
	err := row.Scan(&t.ID, &transferDate, &t.Year, &t.Month, &t.Description,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.TransferDate = transferDate
	return &t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
