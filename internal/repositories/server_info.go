package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/lamp-demo/internal/logger"
)

// ServerInfoRepository reads facts about the database server itself.
type ServerInfoRepository struct {
	db         *sqlx.DB
	connGetter ConnGetter
}

func NewServerInfoRepository(db *sqlx.DB, connGetter ConnGetter) *ServerInfoRepository {
	return &ServerInfoRepository{db: db, connGetter: connGetter}
}

// ServerVersion returns the version string reported by PostgreSQL, e.g. "16.2".
func (r *ServerInfoRepository) ServerVersion(ctx context.Context) (string, error) {
	const query = `SHOW server_version`

	var version string
	err := sqlx.GetContext(ctx, pickExecutor(ctx, r.db, r.connGetter), &version, query)

	logger.Log.Debugw("query executed",
		"query", query,
		"result", version,
		"error", err,
	)

	return version, err
}
