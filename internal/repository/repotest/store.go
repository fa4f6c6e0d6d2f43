// Package repotest provides in-memory repositories with the same contracts
// as the Mongo-backed ones in package repository. Services and handlers are
// tested against it.
package repotest

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/repository"
)

// Store holds users and events. Users, Tokens and Events return views that
// satisfy the service repository interfaces.
type Store struct {
	mu     sync.Mutex
	users  map[primitive.ObjectID]model.User
	events []model.Event
	fails  map[string]error
	Now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: map[primitive.ObjectID]model.User{},
		fails: map[string]error{},
		Now:   time.Now,
	}
}

// FailOn makes the named operation return err until cleared with a nil err.
// Names: user.create, user.update, user.delete, token.store, token.revoke,
// event.create, event.update, event.delete, event.deleteByOwner.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, op)
		return
	}
	s.fails[op] = err
}

func (s *Store) fail(op string) error { return s.fails[op] }

func (s *Store) Users() *UserRepo   { return &UserRepo{s} }
func (s *Store) Tokens() *TokenRepo { return &TokenRepo{s} }
func (s *Store) Events() *EventRepo { return &EventRepo{s} }

// User returns a copy of the stored user, bypassing the repository API.
func (s *Store) User(id string) (model.User, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[oid]
	return u, ok
}

// EventCount reports how many events exist.
func (s *Store) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func oid(id string) (primitive.ObjectID, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return o, nil
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("user.create"); err != nil {
		return err
	}
	for _, other := range s.users {
		if other.UserName == u.UserName || other.Email == u.Email {
			return repository.ErrConflict
		}
	}
	now := s.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (model.User, error) {
	o, err := oid(id)
	if err != nil {
		return model.User{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[o]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) GetByUserName(_ context.Context, userName string) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.UserName == userName {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *UserRepo) Update(_ context.Context, id string, p model.UserPatch) (model.User, error) {
	o, err := oid(id)
	if err != nil {
		return model.User{}, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("user.update"); err != nil {
		return model.User{}, err
	}
	u, ok := s.users[o]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if p.Email != nil {
		for oid, other := range s.users {
			if oid != o && other.Email == *p.Email {
				return model.User{}, repository.ErrConflict
			}
		}
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	u.UpdatedAt = s.Now().UTC()
	s.users[o] = u
	return u, nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	o, err := oid(id)
	if err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("user.delete"); err != nil {
		return err
	}
	if _, ok := s.users[o]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, o)
	return nil
}

type TokenRepo struct{ s *Store }

func (r *TokenRepo) StoreRefresh(_ context.Context, userID, tokenHash string, loginAt time.Time) (model.User, error) {
	o, err := oid(userID)
	if err != nil {
		return model.User{}, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("token.store"); err != nil {
		return model.User{}, err
	}
	u, ok := s.users[o]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	at := loginAt.UTC()
	u.RefreshToken = tokenHash
	u.LastLogin = &at
	u.UpdatedAt = s.Now().UTC()
	s.users[o] = u
	return u, nil
}

func (r *TokenRepo) MatchRefresh(_ context.Context, userID, tokenHash string) (bool, error) {
	o, err := oid(userID)
	if err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[o]
	return ok && u.RefreshToken != "" && u.RefreshToken == tokenHash, nil
}

func (r *TokenRepo) Revoke(_ context.Context, userID string, logoutAt time.Time, sessionTime string) (model.User, error) {
	o, err := oid(userID)
	if err != nil {
		return model.User{}, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("token.revoke"); err != nil {
		return model.User{}, err
	}
	u, ok := s.users[o]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	at := logoutAt.UTC()
	u.RefreshToken = ""
	u.LastLogout = &at
	if sessionTime != "" {
		u.LastSessionTime = sessionTime
	}
	u.UpdatedAt = s.Now().UTC()
	s.users[o] = u
	return u, nil
}

type EventRepo struct{ s *Store }

func (r *EventRepo) Create(_ context.Context, e *model.Event) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("event.create"); err != nil {
		return err
	}
	now := s.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.events = append(s.events, *e)
	return nil
}

func (r *EventRepo) index(o primitive.ObjectID) int {
	for i, e := range r.s.events {
		if e.ID == o {
			return i
		}
	}
	return -1
}

func (r *EventRepo) GetByID(_ context.Context, id string) (model.Event, error) {
	o, err := oid(id)
	if err != nil {
		return model.Event{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(o)
	if i < 0 {
		return model.Event{}, repository.ErrNotFound
	}
	return r.s.events[i], nil
}

// ListAll returns events newest first, matching the Mongo sort.
func (r *EventRepo) ListAll(_ context.Context) ([]model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Event, 0, len(r.s.events))
	for i := len(r.s.events) - 1; i >= 0; i-- {
		out = append(out, r.s.events[i])
	}
	return out, nil
}

func (r *EventRepo) Update(_ context.Context, id string, p model.EventPatch) (model.Event, error) {
	o, err := oid(id)
	if err != nil {
		return model.Event{}, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("event.update"); err != nil {
		return model.Event{}, err
	}
	i := r.index(o)
	if i < 0 {
		return model.Event{}, repository.ErrNotFound
	}
	e := s.events[i]
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Date != nil {
		e.Date = p.Date.UTC()
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	e.UpdatedAt = s.Now().UTC()
	s.events[i] = e
	return e, nil
}

func (r *EventRepo) Delete(_ context.Context, id string) error {
	o, err := oid(id)
	if err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("event.delete"); err != nil {
		return err
	}
	i := r.index(o)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	return nil
}

func (r *EventRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	o, err := oid(ownerID)
	if err != nil {
		return 0, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("event.deleteByOwner"); err != nil {
		return 0, err
	}
	kept := s.events[:0]
	var n int64
	for _, e := range s.events {
		if e.CreatedBy == o {
			n++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return n, nil
}
