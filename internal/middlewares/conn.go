package middlewares

import (
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/lamp-demo/internal/logger"
)

// ConnMiddleware reserves one pooled database connection for the lifetime
// of the request. The connection is returned to the pool when the handler
// returns, including when it panics.
func ConnMiddleware(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := db.Connx(r.Context())
			if err != nil {
				logger.Log.Errorw("failed to acquire database connection", "error", err)
				http.Error(w, "Connection failed", http.StatusServiceUnavailable)
				return
			}
			defer func() {
				if err := conn.Close(); err != nil {
					logger.Log.Errorw("failed to release database connection", "error", err)
				}
			}()

			ctx := setConnToContext(r.Context(), conn)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// connKey is an unexported type for keys in context
type connKey struct{}

// setConnToContext stores a connection in the context
func setConnToContext(ctx context.Context, conn *sqlx.Conn) context.Context {
	return context.WithValue(ctx, connKey{}, conn)
}

// GetConnFromContext retrieves the request connection from the context. Returns nil if not present.
func GetConnFromContext(ctx context.Context) *sqlx.Conn {
	conn, _ := ctx.Value(connKey{}).(*sqlx.Conn)
	return conn
}
