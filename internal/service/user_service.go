package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/queue"
	"github.com/iliyamo/event-planner/internal/repository"
	"github.com/iliyamo/event-planner/internal/utils"
)

// UserDeps wires a UserService.
type UserDeps struct {
	Users      UserRepository
	Sessions   SessionRepository
	Events     EventRepository
	Tokens     TokenIssuer
	Publisher  queue.Publisher
	BcryptCost int
	Logger     *slog.Logger
}

// UserService implements account management. The password hash is
// computed in setPassword and Register, the only two places a password is
// written.
type UserService struct {
	users     UserRepository
	sessions  SessionRepository
	events    EventRepository
	tokens    TokenIssuer
	publisher queue.Publisher
	cost      int
	now       func() time.Time
	logger    *slog.Logger
}

func NewUserService(d UserDeps) *UserService {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pub := d.Publisher
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	return &UserService{
		users:     d.Users,
		sessions:  d.Sessions,
		events:    d.Events,
		tokens:    d.Tokens,
		publisher: pub,
		cost:      d.BcryptCost,
		now:       time.Now,
		logger:    logger.With("component", "user-service"),
	}
}

type RegisterInput struct {
	UserName string
	FullName string
	Email    string
	Password string
}

// LoginResult is returned by Login; the handler turns the tokens into cookies.
type LoginResult struct {
	User         model.User
	AccessToken  string
	RefreshToken string
}

// Register creates a user. The userName is pre-checked so the common
// duplicate case gets a precise message; the unique indexes still catch
// races and duplicate emails.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	if in.UserName == "" || in.FullName == "" || in.Email == "" || strings.TrimSpace(in.Password) == "" {
		return model.User{}, apperr.Validation("userName, fullName, email and password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	_, err := s.users.GetByUserName(ctx, in.UserName)
	switch {
	case err == nil:
		return model.User{}, apperr.Conflict("user with this userName already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return model.User{}, apperr.Wrap(apperr.KindCreateFailed, "failed to create user", err)
	}

	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return model.User{}, apperr.Wrap(apperr.KindCreateFailed, "failed to create user", err)
	}
	u := model.User{
		UserName:     in.UserName,
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return model.User{}, mapStoreErr(err, "user not found", apperr.KindCreateFailed, "failed to create user")
	}

	ev := queue.NewActivity(queue.UserRegistered, u.ID.Hex(), s.now())
	ev.UserName = u.UserName
	publish(ctx, s.publisher, s.logger, ev)
	return u, nil
}

// Login checks credentials and opens a new session. The refresh token hash
// replaces whatever session the user had before.
func (s *UserService) Login(ctx context.Context, userName, password string) (LoginResult, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return LoginResult{}, apperr.Validation("userName and password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	u, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		return LoginResult{}, mapStoreErr(err, "user not found", apperr.KindInternal, "failed to load user")
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	id := u.ID.Hex()
	access, err := s.tokens.IssueAccessToken(id, u.UserName)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.KindSigning, "failed to issue tokens", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(id, u.UserName)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.KindSigning, "failed to issue tokens", err)
	}

	u, err = s.sessions.StoreRefresh(ctx, id, utils.HashRefreshToken(refresh), s.now())
	if err != nil {
		return LoginResult{}, mapStoreErr(err, "user not found", apperr.KindUpdateFailed, "failed to store session")
	}

	ev := queue.NewActivity(queue.UserLoggedIn, id, s.now())
	ev.UserName = u.UserName
	publish(ctx, s.publisher, s.logger, ev)
	return LoginResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

// Logout ends the session and records its length.
func (s *UserService) Logout(ctx context.Context, userID string) (model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, mapStoreErr(err, "user not found", apperr.KindUpdateFailed, "failed to log out")
	}
	now := s.now()
	var session string
	if u.LastLogin != nil && !now.Before(*u.LastLogin) {
		session = now.Sub(*u.LastLogin).Round(time.Second).String()
	}
	u, err = s.sessions.Revoke(ctx, userID, now, session)
	if err != nil {
		return model.User{}, mapStoreErr(err, "user not found", apperr.KindUpdateFailed, "failed to log out")
	}

	ev := queue.NewActivity(queue.UserLoggedOut, userID, now)
	ev.UserName = u.UserName
	if session != "" {
		ev.Detail = "session=" + session
	}
	publish(ctx, s.publisher, s.logger, ev)
	return u, nil
}

func (s *UserService) UpdateEmail(ctx context.Context, userID, newEmail string) (model.User, error) {
	newEmail = strings.TrimSpace(newEmail)
	if newEmail == "" {
		return model.User{}, apperr.Validation("newEmail is required")
	}
	u, err := s.update(ctx, userID, model.UserPatch{Email: &newEmail})
	if errors.Is(err, repository.ErrConflict) {
		return model.User{}, apperr.Conflict("email already in use")
	}
	return u, err
}

func (s *UserService) UpdateFullName(ctx context.Context, userID, newName string) (model.User, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return model.User{}, apperr.Validation("newName is required")
	}
	return s.update(ctx, userID, model.UserPatch{FullName: &newName})
}

// ChangePasswordForLoginUser sets a new password for the session owner.
// The session itself is the proof of identity; no old password is asked.
func (s *UserService) ChangePasswordForLoginUser(ctx context.Context, userID, newPassword string) (model.User, error) {
	if strings.TrimSpace(newPassword) == "" {
		return model.User{}, apperr.Validation("newPassword is required")
	}
	return s.setPassword(ctx, userID, newPassword)
}

// ChangePasswordWithoutLogin sets a new password after verifying the old
// one. A wrong old password leaves the stored hash untouched.
func (s *UserService) ChangePasswordWithoutLogin(ctx context.Context, userID, oldPassword, newPassword string) (model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || oldPassword == "" || strings.TrimSpace(newPassword) == "" {
		return model.User{}, apperr.Validation("userId, oldPassword and newPassword are required")
	}

	lookup, cancel := context.WithTimeout(ctx, storeTimeout)
	u, err := s.users.GetByID(lookup, userID)
	cancel()
	if err != nil {
		return model.User{}, mapStoreErr(err, "user not found", apperr.KindUpdateFailed, "failed to change password")
	}
	if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
		return model.User{}, apperr.Unauthorized("old password is incorrect")
	}
	return s.setPassword(ctx, userID, newPassword)
}

// setPassword is the hash-on-write step: plain text never reaches the store.
func (s *UserService) setPassword(ctx context.Context, userID, plain string) (model.User, error) {
	hash, err := utils.HashPassword(plain, s.cost)
	if err != nil {
		return model.User{}, apperr.Wrap(apperr.KindUpdateFailed, "failed to change password", err)
	}
	return s.update(ctx, userID, model.UserPatch{PasswordHash: &hash})
}

// update returns repository.ErrConflict unmapped so callers can phrase it.
func (s *UserService) update(ctx context.Context, userID string, p model.UserPatch) (model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	u, err := s.users.Update(ctx, userID, p)
	if errors.Is(err, repository.ErrConflict) {
		return model.User{}, err
	}
	if err != nil {
		return model.User{}, mapStoreErr(err, "user not found", apperr.KindUpdateFailed, "failed to update user")
	}
	return u, nil
}

// DeleteUser removes the user's events and then the user.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return mapStoreErr(err, "user not found", apperr.KindDeleteFailed, "failed to delete user")
	}
	n, err := s.events.DeleteByOwner(ctx, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindDeleteFailed, "failed to delete user events", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return mapStoreErr(err, "user not found", apperr.KindDeleteFailed, "failed to delete user")
	}
	s.logger.Info("user deleted", "user_id", userID, "events_removed", n)

	ev := queue.NewActivity(queue.UserDeleted, userID, s.now())
	ev.UserName = u.UserName
	publish(ctx, s.publisher, s.logger, ev)
	return nil
}

// GetByID loads a user; gates use it to confirm an identity still exists.
func (s *UserService) GetByID(ctx context.Context, userID string) (model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, mapStoreErr(err, "user not found", apperr.KindInternal, "failed to load user")
	}
	return u, nil
}

// MatchSession reports whether rawRefresh is the user's current session.
func (s *UserService) MatchSession(ctx context.Context, userID, rawRefresh string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	ok, err := s.sessions.MatchRefresh(ctx, userID, utils.HashRefreshToken(rawRefresh))
	if errors.Is(err, repository.ErrInvalidID) {
		return false, nil
	}
	return ok, err
}
