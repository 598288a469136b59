// Package core is the single point of querying, filtering, sorting and
// counting posts, tags and users. Every other component talks to the store
// through it.
package core

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mdobak/go-xerrors"

	"github.com/inkwellcms/inkwell/internal/utils/databaseutils"
)

var NoRecordFound = xerrors.Message("No record found")

type Core struct {
	log         *slog.Logger
	db          *sql.DB
	sqlTemplate *databaseutils.SQLTemplate
	session     databaseutils.Session
}

func NewCore(dbConn *sql.DB, log *slog.Logger, sqlTemplate *databaseutils.SQLTemplate) *Core {
	return &Core{
		log:         log,
		db:          dbConn,
		sqlTemplate: sqlTemplate,
		session:     databaseutils.NewSession(dbConn, log),
	}
}

// Transactionally runs fn inside a single database transaction. Queries made
// through the Core with the context passed to fn join that transaction.
func (c *Core) Transactionally(ctx context.Context, fn func(txCtx context.Context) error) error {
	return c.session.DoTransactionally(ctx, fn)
}
