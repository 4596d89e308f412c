package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/lamp-demo/internal/logger"
	"github.com/sbilibin2017/lamp-demo/internal/models"
)

// UserReadRepository handles user read operations
type UserReadRepository struct {
	db         *sqlx.DB
	connGetter ConnGetter
}

func NewUserReadRepository(db *sqlx.DB, connGetter ConnGetter) *UserReadRepository {
	return &UserReadRepository{db: db, connGetter: connGetter}
}

// List returns every user, newest first. Rows created in the same instant
// are ordered by id so the listing is stable.
func (r *UserReadRepository) List(ctx context.Context) ([]models.User, error) {
	const query = `
		SELECT id, name, email, created_at
		FROM users
		ORDER BY created_at DESC, id DESC
	`

	users := []models.User{}
	err := sqlx.SelectContext(ctx, pickExecutor(ctx, r.db, r.connGetter), &users, query)

	logger.Log.Infow("query executed",
		"query", oneLine(query),
		"result", len(users),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return users, nil
}

// UserWriteRepository handles user write operations
type UserWriteRepository struct {
	db         *sqlx.DB
	connGetter ConnGetter
}

func NewUserWriteRepository(db *sqlx.DB, connGetter ConnGetter) *UserWriteRepository {
	return &UserWriteRepository{db: db, connGetter: connGetter}
}

// Save inserts a user and returns the stored row with its generated id and timestamp.
func (r *UserWriteRepository) Save(ctx context.Context, name, email string) (*models.User, error) {
	const query = `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id, name, email, created_at
	`
	args := []any{name, email}

	var user models.User
	err := sqlx.GetContext(ctx, pickExecutor(ctx, r.db, r.connGetter), &user, query, args...)

	logger.Log.Infow("query executed",
		"query", oneLine(query),
		"args", args,
		"result", user.ID,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the user with the given id and reports how many rows were removed.
func (r *UserWriteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	const query = `DELETE FROM users WHERE id = $1`

	res, err := pickExecutor(ctx, r.db, r.connGetter).ExecContext(ctx, query, id)
	var rowsAffected int64
	if res != nil && err == nil {
		rowsAffected, err = res.RowsAffected()
	}

	logger.Log.Infow("query executed",
		"query", query,
		"args", []any{id},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}
