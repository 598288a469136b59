package databaseutils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type txKey struct {
}

// SQLExecutor defines the common methods implemented by both *sql.DB and
// *sql.Tx, so query helpers can run against either a pooled connection or an
// active transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Session is the transaction-management contract. A transactional session
// carries its *sql.Tx inside its context, so any query helper that resolves
// its executor through GetSQLExecutor automatically joins the transaction.
type Session interface {
	// BeginTx starts a new database transaction and returns a new Session
	// representing it.
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Session, error)

	// DoTransactionally executes fn within a new transaction. The context
	// passed to fn carries the transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) error

	Rollback() error

	Commit() error

	// Context returns the context associated with this session. For a
	// transactional session it contains the *sql.Tx.
	Context() context.Context

	// GetExecutor returns the active *sql.Tx, or the *sql.DB pool when no
	// transaction is in progress.
	GetExecutor() SQLExecutor
}

type sqlSession struct {
	db  *sql.DB
	tx  *sql.Tx
	ctx context.Context
	log *slog.Logger
}

func NewSession(db *sql.DB, log *slog.Logger) Session {
	return &sqlSession{
		db:  db,
		log: log,
	}
}

func (s *sqlSession) BeginTx(ctx context.Context, opts *sql.TxOptions) (Session, error) {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("session: failed to begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	return &sqlSession{
		db:  s.db,
		tx:  tx,
		ctx: txCtx,
		log: s.log,
	}, nil
}

func (s *sqlSession) DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	session, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = session.Rollback()
			panic(p)
		} else if err != nil {
			if rollbackErr := session.Rollback(); rollbackErr != nil {
				s.log.Error("failed to rollback transaction",
					slog.String("rollback_error", rollbackErr.Error()),
					slog.String("original_error", err.Error()))
			}
		} else {
			if commitErr := session.Commit(); commitErr != nil {
				err = fmt.Errorf("session: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	err = fn(session.Context())
	return err
}

func (s *sqlSession) Rollback() error {
	if s.tx == nil {
		return fmt.Errorf("session: no active transaction to rollback")
	}
	return s.tx.Rollback()
}

func (s *sqlSession) Commit() error {
	if s.tx == nil {
		return fmt.Errorf("session: no active transaction to commit")
	}
	return s.tx.Commit()
}

func (s *sqlSession) Context() context.Context {
	return s.ctx
}

func (s *sqlSession) GetExecutor() SQLExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// GetSQLExecutor retrieves the correct database handle for the given context:
// the *sql.Tx planted by a Session if one is present, otherwise the fallback
// *sql.DB pool.
func GetSQLExecutor(ctx context.Context, fallbackDB *sql.DB) SQLExecutor {
	dbExecutor := ctx.Value(txKey{})
	if dbExecutor == nil {
		return fallbackDB
	}

	tx, ok := dbExecutor.(*sql.Tx)
	if !ok {
		panic(fmt.Sprintf("session: value in context for txKey is not a *sql.Tx, but %T", dbExecutor))
	}
	return tx
}
