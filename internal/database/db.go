package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Querier is satisfied by both *DB and *Tx so repositories can run the same
// statements inside or outside a transaction. Queries are written with `?`
// placeholders and rebound for the active dialect.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Dialect() Dialect
}

// DB is the shared relational store handle.
type DB struct {
	sql     *sql.DB
	dialect Dialect
}

// Open connects to the store and verifies the connection.
func Open(driver, dsn string) (*DB, error) {
	d, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	if d == SQLite && !strings.Contains(dsn, "_txlock") && !strings.Contains(dsn, ":memory:") {
		// writers take the database lock at BEGIN so check-then-act runs serialized
		if strings.Contains(dsn, "?") {
			dsn += "&_txlock=immediate"
		} else {
			dsn += "?_txlock=immediate"
		}
	}

	db, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	if d == SQLite {
		if strings.Contains(dsn, ":memory:") {
			// an in-memory database lives and dies with its single connection
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)
		} else {
			// concurrent writers queue on BEGIN IMMEDIATE behind the driver's busy timeout
			db.SetMaxOpenConns(4)
			db.SetMaxIdleConns(4)
		}
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{sql: db, dialect: d}, nil
}

func (db *DB) Dialect() Dialect { return db.dialect }

func (db *DB) Close() error { return db.sql.Close() }

func (db *DB) PingContext(ctx context.Context) error { return db.sql.PingContext(ctx) }

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.sql.ExecContext(ctx, db.dialect.Rebind(query), args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.sql.QueryContext(ctx, db.dialect.Rebind(query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.sql.QueryRowContext(ctx, db.dialect.Rebind(query), args...)
}

// Tx is a transaction bound to the store's dialect.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *Tx) Dialect() Dialect { return t.dialect }

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

// InTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise. fn must only use the given Tx: an
// in-memory SQLite pool holds a single connection.
func (db *DB) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()
	if err := fn(&Tx{tx: sqlTx, dialect: db.dialect}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// InsertID executes an INSERT and returns the generated integer key.
// Postgres has no LastInsertId, so the statement is extended with RETURNING.
func InsertID(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	if q.Dialect() == Postgres {
		var id int64
		err := q.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
