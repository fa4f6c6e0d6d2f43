package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/queue"
)

func strPtr(s string) *string { return &s }

func TestEventRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")

	e, err := f.events.Create(ctx, u.ID.Hex(), EventInput{Name: "Meetup", Date: "2025-01-01", Location: "NYC"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), e.Date)

	all, err := f.events.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, u.ID, all[0].CreatedBy)

	require.NoError(t, f.events.Delete(ctx, e.ID.Hex(), u.ID.Hex()))
	_, err = f.events.Get(ctx, e.ID.Hex())
	assertKind(t, err, apperr.KindNotFound)

	assert.Equal(t, []string{queue.UserRegistered, queue.EventCreated, queue.EventDeleted}, f.pub.types())
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")

	_, err := f.events.Create(ctx, u.ID.Hex(), EventInput{Name: "", Date: "2025-01-01", Location: "NYC"})
	assertKind(t, err, apperr.KindValidation)

	_, err = f.events.Create(ctx, u.ID.Hex(), EventInput{Name: "x", Date: "next tuesday", Location: "NYC"})
	assertKind(t, err, apperr.KindValidation)

	_, err = f.events.Create(ctx, "", EventInput{Name: "x", Date: "2025-01-01", Location: "NYC"})
	assertKind(t, err, apperr.KindUnauthenticated)

	_, err = f.events.Create(ctx, "000000000000000000000000", EventInput{Name: "x", Date: "2025-01-01", Location: "NYC"})
	assertKind(t, err, apperr.KindUnauthenticated)

	e, err := f.events.Create(ctx, u.ID.Hex(), EventInput{Name: "x", Date: "2025-03-04T18:30:00+02:00", Location: "NYC"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 16, 30, 0, 0, time.UTC), e.Date)

	f.store.FailOn("event.create", errors.New("boom"))
	_, err = f.events.Create(ctx, u.ID.Hex(), EventInput{Name: "x", Date: "2025-01-01", Location: "NYC"})
	assertKind(t, err, apperr.KindCreateFailed)
}

func TestUpdateEventOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	e, err := f.events.Create(ctx, alice.ID.Hex(), EventInput{Name: "Meetup", Date: "2025-01-01", Location: "NYC"})
	require.NoError(t, err)

	_, err = f.events.Update(ctx, e.ID.Hex(), bob.ID.Hex(), EventUpdate{Name: strPtr("Hijacked")})
	assertKind(t, err, apperr.KindForbidden)
	got, err := f.events.Get(ctx, e.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Meetup", got.Name)

	out, err := f.events.Update(ctx, e.ID.Hex(), alice.ID.Hex(), EventUpdate{Location: strPtr("Boston"), Date: strPtr("2025-02-02")})
	require.NoError(t, err)
	assert.Equal(t, "Boston", out.Location)
	assert.Equal(t, "Meetup", out.Name)
	assert.Equal(t, time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC), out.Date)

	_, err = f.events.Update(ctx, e.ID.Hex(), alice.ID.Hex(), EventUpdate{})
	assertKind(t, err, apperr.KindValidation)
	_, err = f.events.Update(ctx, e.ID.Hex(), alice.ID.Hex(), EventUpdate{Name: strPtr(" ")})
	assertKind(t, err, apperr.KindValidation)

	_, err = f.events.Update(ctx, "000000000000000000000000", alice.ID.Hex(), EventUpdate{Name: strPtr("x")})
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.events.Update(ctx, "garbage", alice.ID.Hex(), EventUpdate{Name: strPtr("x")})
	assertKind(t, err, apperr.KindNotFound)

	f.store.FailOn("event.update", errors.New("boom"))
	_, err = f.events.Update(ctx, e.ID.Hex(), alice.ID.Hex(), EventUpdate{Name: strPtr("x")})
	assertKind(t, err, apperr.KindUpdateFailed)
}

func TestDeleteEventOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	e, err := f.events.Create(ctx, alice.ID.Hex(), EventInput{Name: "Meetup", Date: "2025-01-01", Location: "NYC"})
	require.NoError(t, err)

	assertKind(t, f.events.Delete(ctx, e.ID.Hex(), bob.ID.Hex()), apperr.KindForbidden)
	assert.Equal(t, 1, f.store.EventCount())

	f.store.FailOn("event.delete", errors.New("boom"))
	assertKind(t, f.events.Delete(ctx, e.ID.Hex(), alice.ID.Hex()), apperr.KindDeleteFailed)
	f.store.FailOn("event.delete", nil)

	require.NoError(t, f.events.Delete(ctx, e.ID.Hex(), alice.ID.Hex()))
	assertKind(t, f.events.Delete(ctx, e.ID.Hex(), alice.ID.Hex()), apperr.KindNotFound)
}

func TestListAllIsSharedBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	_, err := f.events.Create(ctx, alice.ID.Hex(), EventInput{Name: "first", Date: "2025-01-01", Location: "NYC"})
	require.NoError(t, err)
	_, err = f.events.Create(ctx, bob.ID.Hex(), EventInput{Name: "second", Date: "2025-01-01", Location: "NYC"})
	require.NoError(t, err)

	all, err := f.events.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Name)
	assert.Equal(t, "first", all[1].Name)
}

func TestFetchWeatherInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")
	e, err := f.events.Create(ctx, u.ID.Hex(), EventInput{Name: "Meetup", Date: "2025-01-01", Location: "NYC"})
	require.NoError(t, err)

	w, err := f.events.FetchWeatherInfo(ctx, e.ID.Hex(), u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, e.ID.Hex(), w.EventID)
	assert.Equal(t, "NYC", w.Location)
	assert.Equal(t, "2025-01-01", w.Date)
	assert.Equal(t, "placeholder", w.Source)
	assert.Nil(t, w.TemperatureC)

	_, err = f.events.FetchWeatherInfo(ctx, "000000000000000000000000", u.ID.Hex())
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.events.FetchWeatherInfo(ctx, e.ID.Hex(), "")
	assertKind(t, err, apperr.KindUnauthenticated)
}
