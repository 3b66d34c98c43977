package company

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/jumph/jumph/internal/shared"
)

// ErrDuplicateCode is returned when another company already uses the code.
var ErrDuplicateCode = errors.New("company code already exists")

const uniqueViolation = "23505"

// Repository persists companies.
type Repository interface {
	Get(ctx context.Context, id int64) (Company, error)
	Search(ctx context.Context, criteria FilterCriteria, limit, offset int) ([]Company, int, error)
	Create(ctx context.Context, c Company) (int64, error)
	Update(ctx context.Context, c Company) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, name, code, email, phone, website, address, zipcode, city, country, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	c, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, shared.ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

// Search runs the count and the page query concurrently on the pool.
func (r *repository) Search(ctx context.Context, criteria FilterCriteria, limit, offset int) ([]Company, int, error) {
	where, args := whereClause(criteria)

	var (
		total     int
		companies []Company
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `SELECT COUNT(*) FROM companies`+where, args...).Scan(&total)
	})
	g.Go(func() error {
		query := `SELECT ` + companyColumns + ` FROM companies` + where +
			` ORDER BY ` + orderBy(criteria) +
			` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		rows, err := r.pool.Query(gctx, query, append(append([]any{}, args...), limit, offset)...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			c, err := scanCompany(rows)
			if err != nil {
				return err
			}
			companies = append(companies, c)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

func (r *repository) Create(ctx context.Context, c Company) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO companies (name, code, email, phone, website, address, zipcode, city, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		c.Name, c.Code, c.Email, c.Phone, c.Website, c.Address, c.Zipcode, c.City, c.Country, c.CreatedAt, c.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, c Company) error {
	tag, err := r.pool.Exec(ctx, `UPDATE companies SET name = $1, code = $2, email = $3, phone = $4, website = $5,
		address = $6, zipcode = $7, city = $8, country = $9, updated_at = $10 WHERE id = $11`,
		c.Name, c.Code, c.Email, c.Phone, c.Website, c.Address, c.Zipcode, c.City, c.Country, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Email, &c.Phone, &c.Website, &c.Address, &c.Zipcode, &c.City, &c.Country, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func whereClause(criteria FilterCriteria) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if criteria.Name != "" {
		add(`(name ILIKE ? OR code ILIKE ?)`, "%"+escapeLike(criteria.Name)+"%")
	}
	if criteria.City != "" {
		add(`city ILIKE ?`, "%"+escapeLike(criteria.City)+"%")
	}
	if criteria.Country != "" {
		add(`country = ?`, criteria.Country)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(criteria FilterCriteria) string {
	column, ok := sortColumns[criteria.SortBy]
	if !ok {
		column = "name"
	}
	dir := "ASC"
	if criteria.SortDir == shared.SortDesc {
		dir = "DESC"
	}
	return column + " " + dir + ", id " + dir
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateCode
	}
	return err
}
