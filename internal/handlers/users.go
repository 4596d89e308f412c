package handlers

//go:generate mockgen -source=users.go -destination=users_mock.go -package=handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/schema"
	"github.com/sbilibin2017/lamp-demo/internal/logger"
	"github.com/sbilibin2017/lamp-demo/internal/models"
	"github.com/sbilibin2017/lamp-demo/internal/services"
)

// UserManager defines the user operations the page needs.
type UserManager interface {
	List(ctx context.Context) ([]models.User, error)
	Add(ctx context.Context, name, email string) (*models.User, error)
	Delete(ctx context.Context, rawID string) (int64, error)
}

// ServerInspector reports the database server version for the info panel.
type ServerInspector interface {
	ServerVersion(ctx context.Context) (string, error)
}

// MutationLimiter decides whether a client may change the table right now.
type MutationLimiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}

// PageRenderer writes the rendered page.
type PageRenderer interface {
	Render(w io.Writer, page *models.Page) error
}

// Messages shown inline after a POST.
const (
	msgEmptyFields = "Please fill in both name and email fields."
	msgAddFailed   = "Error adding user. Please try again."
	msgInvalidID   = "Invalid user id."
	msgDeleted     = "User deleted successfully!"
	msgDelFailed   = "Error deleting user. Please try again."
	msgBadForm     = "Could not read the submitted form."
	msgThrottled   = "Too many changes in a short time. Please wait a moment and try again."
	msgListFailed  = "Could not load users."
)

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

// NewUsersPageHandler returns the handler serving the users page.
// GET renders the listing. POST with action=add or action=delete applies the
// change first and reports the outcome inline; every outcome is rendered
// with status 200. limiter may be nil to disable throttling.
func NewUsersPageHandler(
	users UserManager,
	inspector ServerInspector,
	limiter MutationLimiter,
	renderer PageRenderer,
	serverName string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		page := &models.Page{
			CSRFField: csrf.TemplateField(r),
		}

		if r.Method == http.MethodPost {
			page.Flash = mutate(r, users, limiter)
		}

		list, err := users.List(ctx)
		if err != nil {
			page.ListError = true
			if page.Flash == nil {
				page.Flash = &models.Flash{Kind: models.FlashError, Text: msgListFailed}
			}
		}
		page.Users = list

		page.Stack = stackInfo(ctx, inspector, serverName)
		page.Elapsed = time.Since(start)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := renderer.Render(w, page); err != nil {
			logger.Log.Errorw("failed to render users page", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// mutate applies the action posted in r and returns the message to show.
// It returns nil for unknown actions.
func mutate(r *http.Request, users UserManager, limiter MutationLimiter) *models.Flash {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		logger.Log.Errorw("failed to parse form", "err", err)
		return &models.Flash{Kind: models.FlashError, Text: msgBadForm}
	}

	var form models.UserForm
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		logger.Log.Errorw("failed to decode form", "err", err)
		return &models.Flash{Kind: models.FlashError, Text: msgBadForm}
	}

	if form.Action != models.ActionAdd && form.Action != models.ActionDelete {
		return nil
	}

	if limiter != nil {
		client := clientID(r)
		ok, err := limiter.Allow(ctx, client)
		if err != nil {
			// Fail open when the limiter store is unavailable.
			logger.Log.Warnw("mutation limiter unavailable", "client", client, "err", err)
		} else if !ok {
			logger.Log.Infow("mutation throttled", "client", client, "action", form.Action)
			return &models.Flash{Kind: models.FlashError, Text: msgThrottled}
		}
	}

	switch form.Action {
	case models.ActionAdd:
		user, err := users.Add(ctx, form.Name, form.Email)
		switch {
		case errors.Is(err, services.ErrEmptyFields):
			return &models.Flash{Kind: models.FlashError, Text: msgEmptyFields}
		case err != nil:
			return &models.Flash{Kind: models.FlashError, Text: msgAddFailed}
		}
		return &models.Flash{
			Kind: models.FlashSuccess,
			Text: fmt.Sprintf("User '%s' added successfully!", user.Name),
		}

	default:
		id, err := users.Delete(ctx, form.ID)
		switch {
		case errors.Is(err, services.ErrInvalidID):
			return &models.Flash{Kind: models.FlashError, Text: msgInvalidID}
		case errors.Is(err, services.ErrUserNotFound):
			return &models.Flash{
				Kind: models.FlashNotice,
				Text: fmt.Sprintf("No user with id %d exists; nothing was deleted.", id),
			}
		case err != nil:
			return &models.Flash{Kind: models.FlashError, Text: msgDelFailed}
		}
		return &models.Flash{Kind: models.FlashSuccess, Text: msgDeleted}
	}
}

func stackInfo(ctx context.Context, inspector ServerInspector, serverName string) models.StackInfo {
	info := models.StackInfo{
		OS:       runtime.GOOS + "/" + runtime.GOARCH,
		Server:   serverName,
		Runtime:  runtime.Version(),
		Database: "unknown",
	}

	version, err := inspector.ServerVersion(ctx)
	if err != nil {
		logger.Log.Errorw("failed to read database server version", "err", err)
		return info
	}
	info.Database = version
	return info
}

// clientID identifies the caller for throttling by its address without port.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
