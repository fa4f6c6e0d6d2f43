// Package service holds the user and event operations. Services are
// stateless over their repositories and return *apperr.Error values that
// the HTTP layer renders as they are.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/queue"
	"github.com/iliyamo/event-planner/internal/repository"
)

// storeTimeout bounds every repository call.
const storeTimeout = 5 * time.Second

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByUserName(ctx context.Context, userName string) (model.User, error)
	Update(ctx context.Context, id string, p model.UserPatch) (model.User, error)
	Delete(ctx context.Context, id string) error
}

type SessionRepository interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, loginAt time.Time) (model.User, error)
	MatchRefresh(ctx context.Context, userID, tokenHash string) (bool, error)
	Revoke(ctx context.Context, userID string, logoutAt time.Time, sessionTime string) (model.User, error)
}

type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (model.Event, error)
	ListAll(ctx context.Context) ([]model.Event, error)
	Update(ctx context.Context, id string, p model.EventPatch) (model.Event, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// TokenIssuer signs access and refresh tokens.
type TokenIssuer interface {
	IssueAccessToken(userID, userName string) (string, error)
	IssueRefreshToken(userID, userName string) (string, error)
}

// mapStoreErr turns a repository error into an apperr. Sentinels get their
// own kinds; anything else becomes fallback with fallbackMsg.
func mapStoreErr(err error, notFoundMsg string, fallback apperr.Kind, fallbackMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFoundMsg)
	case errors.Is(err, repository.ErrInvalidID):
		return apperr.Validation("invalid id")
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict("userName or email already in use")
	default:
		return apperr.Wrap(fallback, fallbackMsg, err)
	}
}

// publish sends ev and logs failures. Activity is best effort and never
// fails the request that produced it.
func publish(ctx context.Context, p queue.Publisher, logger *slog.Logger, ev queue.ActivityEvent) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		logger.Warn("activity publish failed", "type", ev.Type, "error", err)
	}
}
