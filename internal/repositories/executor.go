package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ConnGetter returns the connection reserved for the current request, or nil.
type ConnGetter func(ctx context.Context) *sqlx.Conn

// executor is satisfied by both *sqlx.DB and *sqlx.Conn.
type executor interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// pickExecutor prefers the request-scoped connection and falls back to the pool.
func pickExecutor(ctx context.Context, db *sqlx.DB, connGetter ConnGetter) executor {
	if connGetter != nil {
		if conn := connGetter(ctx); conn != nil {
			return conn
		}
	}
	return db
}

// oneLine collapses a query to a single line for logging.
func oneLine(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
