package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/fairyhunter13/inventory-cart-service/internal/model"
	"github.com/fairyhunter13/inventory-cart-service/internal/obs"
)

const productColumns = `id, nome, preco, quantidade`

// PostgresOptions configures the connection pool.
type PostgresOptions struct {
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	Timeout         time.Duration
}

// Postgres is a Catalog backed by the produtos table.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

// OpenPostgres connects, verifies the connection and creates the table if it
// does not exist.
func OpenPostgres(ctx context.Context, opts PostgresOptions) (*Postgres, error) {
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "open database connection")
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	s := NewPostgres(db, opts.Timeout)
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	obs.Logger.Info("postgres_connected")
	return s, nil
}

// NewPostgres wraps an existing handle. A zero timeout leaves calls bounded
// only by the caller's context.
func NewPostgres(db *sql.DB, timeout time.Duration) *Postgres {
	return &Postgres{db: db, timeout: timeout}
}

// Close closes the database handle.
func (s *Postgres) Close() error {
	return s.db.Close()
}

func (s *Postgres) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Migrate creates the produtos table if it is absent.
func (s *Postgres) Migrate(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS produtos (
		id BIGSERIAL PRIMARY KEY,
		nome TEXT NOT NULL,
		preco DOUBLE PRECISION NOT NULL,
		quantidade BIGINT NOT NULL DEFAULT 0
	)`)
	if err != nil {
		return errors.Wrap(err, "create produtos table")
	}
	return nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping database")
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, name string, price float64, quantity int64) (model.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	p := model.Product{Nome: name, Preco: price, Quantidade: quantity}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO produtos (nome, preco, quantidade) VALUES ($1, $2, $3) RETURNING id`,
		name, price, quantity,
	).Scan(&p.ID)
	if err != nil {
		return model.Product{}, errors.Wrap(err, "insert produto")
	}
	return p, nil
}

func (s *Postgres) Get(ctx context.Context, id int64) (model.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM produtos WHERE id = $1`, id)
	return scanOne(row, id)
}

func (s *Postgres) List(ctx context.Context, opts ListOptions) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM produtos`
	var args []any
	if opts.MinQuantity != nil {
		query += ` WHERE quantidade >= $1`
		args = append(args, *opts.MinQuantity)
	}
	switch opts.Order {
	case PriceAsc:
		query += ` ORDER BY preco ASC, id ASC`
	case PriceDesc:
		query += ` ORDER BY preco DESC, id ASC`
	default:
		query += ` ORDER BY id ASC`
	}
	return s.query(ctx, query, args...)
}

func (s *Postgres) ListLowStock(ctx context.Context) ([]model.Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM produtos WHERE quantidade < $1 ORDER BY id ASC`, LowStockThreshold)
}

func (s *Postgres) Update(ctx context.Context, id int64, name string, price float64) (model.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	row := s.db.QueryRowContext(ctx,
		`UPDATE produtos SET nome = $1, preco = $2 WHERE id = $3 RETURNING `+productColumns,
		name, price, id,
	)
	return scanOne(row, id)
}

func (s *Postgres) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `DELETE FROM produtos WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "delete produto %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrapf(model.ErrNotFound, "produto %d", id)
	}
	return nil
}

// AdjustQuantity is a single conditional UPDATE, so concurrent reservations
// cannot drive the quantity negative.
func (s *Postgres) AdjustQuantity(ctx context.Context, id int64, delta int64) (model.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	var p model.Product
	err := s.db.QueryRowContext(ctx,
		`UPDATE produtos SET quantidade = quantidade + $1
		WHERE id = $2 AND quantidade + $1 >= 0
		RETURNING `+productColumns,
		delta, id,
	).Scan(&p.ID, &p.Nome, &p.Preco, &p.Quantidade)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, errors.Wrapf(err, "adjust quantidade of produto %d", id)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM produtos WHERE id = $1)`, id).Scan(&exists); err != nil {
		return model.Product{}, errors.Wrapf(err, "check produto %d", id)
	}
	if !exists {
		return model.Product{}, errors.Wrapf(model.ErrNotFound, "produto %d", id)
	}
	return model.Product{}, errors.Wrapf(model.ErrInsufficientStock, "produto %d, delta %d", id, delta)
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query produtos")
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Nome, &p.Preco, &p.Quantidade); err != nil {
			return nil, errors.Wrap(err, "scan produto")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate produtos")
	}
	return out, nil
}

func scanOne(row *sql.Row, id int64) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Nome, &p.Preco, &p.Quantidade)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, errors.Wrapf(model.ErrNotFound, "produto %d", id)
	}
	if err != nil {
		return model.Product{}, errors.Wrapf(err, "read produto %d", id)
	}
	return p, nil
}
