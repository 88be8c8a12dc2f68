package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// txRepositories binds every repository to one transaction.
type txRepositories struct {
	q      querier
	logger *slog.Logger
}

func (r *txRepositories) Orders() repository.OrderRepository {
	return &orderRepository{q: r.q}
}

func (r *txRepositories) Items() repository.OrderItemRepository {
	return &itemRepository{q: r.q}
}

func (r *txRepositories) Inventory() repository.InventoryRepository {
	return &inventoryRepository{q: r.q, logger: r.logger}
}

func (r *txRepositories) Coupons() repository.CouponRepository {
	return &couponRepository{q: r.q}
}

func (r *txRepositories) Payments() repository.PaymentRepository {
	return &paymentRepository{q: r.q}
}

func (r *txRepositories) Users() repository.UserRepository {
	return &userRepository{q: r.q}
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS product_variants (
            id BIGINT PRIMARY KEY,
            sku TEXT NOT NULL DEFAULT '',
            stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
            reserved_quantity INTEGER NOT NULL DEFAULT 0 CHECK (reserved_quantity >= 0),
            low_stock_threshold INTEGER NOT NULL DEFAULT 5,
            is_available BOOLEAN NOT NULL DEFAULT FALSE,
            is_low_stock BOOLEAN NOT NULL DEFAULT TRUE,
            out_of_stock BOOLEAN NOT NULL DEFAULT TRUE,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_number_sequences (
            day DATE PRIMARY KEY,
            last_value BIGINT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            number TEXT UNIQUE NOT NULL,
            buyer_id BIGINT NOT NULL REFERENCES users(id),
            shipping_address_id BIGINT NOT NULL,
            billing_address_id BIGINT NOT NULL,
            currency TEXT NOT NULL,
            subtotal_cents BIGINT NOT NULL CHECK (subtotal_cents > 0),
            coupon_discount_cents BIGINT NOT NULL DEFAULT 0 CHECK (coupon_discount_cents >= 0),
            tax_cents BIGINT NOT NULL DEFAULT 0 CHECK (tax_cents >= 0),
            total_cents BIGINT NOT NULL CHECK (total_cents >= 0),
            coupon_id BIGINT,
            status TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            status_history TEXT NOT NULL DEFAULT '[]',
            cancellation_reason TEXT NOT NULL DEFAULT '',
            cancelled_by BIGINT,
            cancelled_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            deleted_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            variant_id BIGINT NOT NULL REFERENCES product_variants(id),
            product_id BIGINT NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            price_cents BIGINT NOT NULL,
            discounted_price_cents BIGINT,
            final_price_cents BIGINT NOT NULL,
            snapshot TEXT NOT NULL,
            status TEXT NOT NULL,
            tracking_ref TEXT NOT NULL DEFAULT '',
            shipped_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            return_deadline TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS coupons (
            id BIGSERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            type TEXT NOT NULL,
            value_cents BIGINT NOT NULL,
            max_discount_cents BIGINT,
            min_order_cents BIGINT,
            valid_from TIMESTAMPTZ NOT NULL,
            valid_until TIMESTAMPTZ NOT NULL,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            max_uses INTEGER,
            max_uses_per_user INTEGER,
            current_uses INTEGER NOT NULL DEFAULT 0 CHECK (current_uses >= 0),
            new_users_only BOOLEAN NOT NULL DEFAULT FALSE,
            first_order_only BOOLEAN NOT NULL DEFAULT FALSE,
            rules TEXT NOT NULL DEFAULT '{}',
            CHECK (valid_until > valid_from)
        )`,
		`CREATE TABLE IF NOT EXISTS coupon_usages (
            id BIGSERIAL PRIMARY KEY,
            coupon_id BIGINT NOT NULL REFERENCES coupons(id),
            user_id BIGINT NOT NULL REFERENCES users(id),
            order_id BIGINT NOT NULL REFERENCES orders(id),
            discount_cents BIGINT NOT NULL,
            order_amount_cents BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            reference TEXT UNIQUE NOT NULL,
            amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
            currency TEXT NOT NULL,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payment_refunds (
            id BIGSERIAL PRIMARY KEY,
            reference UUID UNIQUE NOT NULL,
            payment_id BIGINT NOT NULL REFERENCES payments(id),
            order_id BIGINT NOT NULL REFERENCES orders(id),
            amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
            currency TEXT NOT NULL,
            reason TEXT NOT NULL,
            status TEXT NOT NULL,
            requested_by BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_coupon_usages_coupon_user ON coupon_usages(coupon_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_refunds_payment ON payment_refunds(payment_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes fn with repositories bound to one transaction.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &txRepositories{q: tx, logger: s.logger})
	})
}

func (s *Storage) inTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	return err
}
