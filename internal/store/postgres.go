package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendcore/vendcore/internal/domain"
)

// Postgres is the pgx-backed Store. Balance and stock mutations are single
// conditional UPDATE ... RETURNING statements, so each one is atomic at the
// row level without explicit locks.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Postgres{db: pool}, nil
}

func (s *Postgres) Close() {
	s.db.Close()
}

// Pool exposes the underlying pool for seeding and health checks.
func (s *Postgres) Pool() *pgxpool.Pool {
	return s.db
}

func (s *Postgres) CreateAccount(ctx context.Context, a *domain.Account) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO accounts (id, username, password_hash, role, balance, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		a.ID, a.Username, a.PasswordHash, a.Role, a.Balance, a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("account insert failed: %w", err)
	}
	return nil
}

func (s *Postgres) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var a domain.Account
	err := s.db.QueryRow(ctx,
		"SELECT id, username, password_hash, role, balance, created_at FROM accounts WHERE id = $1",
		id).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.Balance, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *Postgres) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var a domain.Account
	err := s.db.QueryRow(ctx,
		"SELECT id, username, password_hash, role, balance, created_at FROM accounts WHERE username = $1",
		username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.Balance, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *Postgres) AddBalance(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx,
		"UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING balance",
		amount, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("balance credit failed: %w", err)
	}
	return balance, nil
}

func (s *Postgres) DebitBalance(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx,
		"UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance >= $1 RETURNING balance",
		amount, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The condition failed: either no such account or not enough funds.
			if _, getErr := s.GetAccount(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, domain.ErrInsufficientFunds
		}
		return 0, fmt.Errorf("balance debit failed: %w", err)
	}
	return balance, nil
}

func (s *Postgres) ResetBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	var prev int64
	// Subqueries in RETURNING read the pre-update snapshot, so this yields the
	// balance as it was before the reset.
	err := s.db.QueryRow(ctx,
		"UPDATE accounts SET balance = 0 WHERE id = $1 RETURNING (SELECT balance FROM accounts WHERE id = $1)",
		id).Scan(&prev)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("balance reset failed: %w", err)
	}
	return prev, nil
}

func (s *Postgres) CreateProduct(ctx context.Context, p *domain.Product) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO products (id, owner_id, name, price, stock, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		p.ID, p.OwnerID, p.Name, p.Price, p.Stock, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("product insert failed: %w", err)
	}
	return nil
}

func (s *Postgres) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRow(ctx,
		"SELECT id, owner_id, name, price, stock, created_at FROM products WHERE id = $1",
		id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Postgres) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, owner_id, name, price, stock, created_at FROM products ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Postgres) UpdateProduct(ctx context.Context, id uuid.UUID, name string, price int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRow(ctx,
		"UPDATE products SET name = $1, price = $2 WHERE id = $3 RETURNING id, owner_id, name, price, stock, created_at",
		name, price, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("product update failed: %w", err)
	}
	return &p, nil
}

func (s *Postgres) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("product delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Postgres) DecrementStock(ctx context.Context, id uuid.UUID, qty int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRow(ctx,
		"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1 RETURNING id, owner_id, name, price, stock, created_at",
		qty, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.GetProduct(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrInsufficientStock
		}
		return nil, fmt.Errorf("stock decrement failed: %w", err)
	}
	return &p, nil
}

func (s *Postgres) AddStock(ctx context.Context, id uuid.UUID, qty int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRow(ctx,
		"UPDATE products SET stock = stock + $1 WHERE id = $2 RETURNING id, owner_id, name, price, stock, created_at",
		qty, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("stock restore failed: %w", err)
	}
	return &p, nil
}
