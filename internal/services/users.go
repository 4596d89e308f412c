package services

//go:generate mockgen -source=users.go -destination=users_mock.go -package=services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/sbilibin2017/lamp-demo/internal/logger"
	"github.com/sbilibin2017/lamp-demo/internal/models"
)

// Error variables
var (
	ErrEmptyFields  = errors.New("name and email are required")
	ErrInvalidID    = errors.New("invalid user id")
	ErrUserNotFound = errors.New("user not found")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	List(ctx context.Context) ([]models.User, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, name, email string) (*models.User, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// UserService validates page input and applies it to the users table.
type UserService struct {
	reader UserReader
	writer UserWriter
}

// NewUserService creates a new UserService instance.
func NewUserService(reader UserReader, writer UserWriter) *UserService {
	return &UserService{
		reader: reader,
		writer: writer,
	}
}

// List returns all users, newest first.
func (svc *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := svc.reader.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	return users, nil
}

// Add stores a new user. Surrounding whitespace is dropped from both fields
// and either being empty afterwards yields ErrEmptyFields.
func (svc *UserService) Add(ctx context.Context, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, ErrEmptyFields
	}

	user, err := svc.writer.Save(ctx, name, email)
	if err != nil {
		logger.Log.Errorw("failed to save user", "name", name, "err", err)
		return nil, err
	}
	return user, nil
}

// Delete removes the user whose id is given in rawID and returns the parsed id.
// rawID must be a positive base-10 integer, otherwise ErrInvalidID is returned.
// Deleting an id that does not exist yields ErrUserNotFound.
func (svc *UserService) Delete(ctx context.Context, rawID string) (int64, error) {
	id, err := ParseUserID(rawID)
	if err != nil {
		return 0, err
	}

	affected, err := svc.writer.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "id", id, "err", err)
		return id, err
	}
	if affected == 0 {
		return id, ErrUserNotFound
	}
	return id, nil
}

// ParseUserID parses a user id submitted through a form.
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
