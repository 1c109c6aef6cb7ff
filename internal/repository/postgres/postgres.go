// Package postgres implements the repository interfaces on PostgreSQL.
//
// It is the alternative to the embedded sqlite backend for deployments that
// already run a database server. The connection goes through pgx's
// database/sql driver, and the schema is managed by goose migrations
// embedded in the binary.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/inkwell-blog/inkwell/internal/repository"
	"github.com/inkwell-blog/inkwell/internal/repository/postgres/migrations"
)

// DB wraps the sql.DB pool and vends the typed repositories.
type DB struct {
	conn *sql.DB
}

var _ repository.Store = (*DB)(nil)

// New connects to the database at dsn and runs any pending migrations.
func New(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() repository.UserRepository { return &UserDB{conn: db.conn} }

// Posts returns the post repository backed by this database.
func (db *DB) Posts() repository.PostRepository { return &PostDB{conn: db.conn} }

// Sessions returns the session repository backed by this database.
func (db *DB) Sessions() repository.SessionRepository { return &SessionDB{conn: db.conn} }

func (db *DB) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db.conn, ".")
}

// isUniqueViolation reports whether err is Postgres' unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
