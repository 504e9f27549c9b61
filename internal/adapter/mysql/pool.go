package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sm8ta/users_crud_service/internal/config"
)

const driverName = "mysql"

// Pool is a lazily opened *sql.DB. Nothing touches the network until the
// first query, and Close is safe to call whether or not that happened.
type Pool struct {
	cfg *config.DB
	dsn string

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

func NewPool(cfg *config.DB) *Pool {
	return &Pool{
		cfg: cfg,
		dsn: FormatDSN(cfg, true),
	}
}

// FormatDSN builds the driver DSN. withDB=false leaves the schema unselected.
func FormatDSN(cfg *config.DB, withDB bool) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	if withDB {
		mc.DBName = cfg.Name
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	_ = mc.Apply(mysql.Charset("utf8mb4", "utf8mb4_general_ci"))
	// NOW() must produce UTC to match Loc.
	mc.Params = map[string]string{"time_zone": "'+00:00'"}
	return mc.FormatDSN()
}

// DB returns the underlying handle, opening it on first use.
func (p *Pool) DB() (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, sql.ErrConnDone
	}
	if p.db != nil {
		return p.db, nil
	}

	db, err := sql.Open(driverName, p.dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql.Pool: open: %w", err)
	}
	if p.cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(p.cfg.MaxOpenConns)
	}
	if p.cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(p.cfg.MaxIdleConns)
	}
	if p.cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(p.cfg.ConnMaxLifetime)
	}
	p.db = db
	return db, nil
}

func (p *Pool) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := p.DB()
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, query, args...)
}

func (p *Pool) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db, err := p.DB()
	if err != nil {
		return nil, err
	}
	return db.ExecContext(ctx, query, args...)
}

func (p *Pool) Ping(ctx context.Context) error {
	db, err := p.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Check runs a trivial query to confirm the database is reachable.
func (p *Pool) Check(ctx context.Context) error {
	const op = "mysql.Pool.Check"

	rows, err := p.QueryContext(ctx, "SELECT 1 AS ok")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: no rows returned", op)
	}
	var ok int
	if err := rows.Scan(&ok); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close releases every pooled connection.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
