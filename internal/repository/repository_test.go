package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/iliyamo/event-planner/internal/model"
)

func userDoc(id primitive.ObjectID, userName string) bson.D {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "userName", Value: userName},
		{Key: "fullName", Value: "Alice Doe"},
		{Key: "email", Value: "alice@example.com"},
		{Key: "password", Value: "$2a$04$hash"},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func TestUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &model.User{UserName: "alice", Email: "alice@example.com", PasswordHash: "h"}
		require.NoError(t, repo.Create(ctx, u))
		assert.False(t, u.ID.IsZero())
		assert.False(t, u.CreatedAt.IsZero())
	})

	mt.Run("create duplicate maps to conflict", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.Create(ctx, &model.User{UserName: "alice"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	mt.Run("get by id decodes document", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, userDoc(id, "alice")))

		u, err := repo.GetByID(ctx, id.Hex())
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "alice", u.UserName)
		assert.Equal(t, "$2a$04$hash", u.PasswordHash)
	})

	mt.Run("get by user name not found", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.GetByUserName(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("invalid id is rejected before the query", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)

		_, err := repo.GetByID(ctx, "not-hex")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	mt.Run("update returns document after", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		id := primitive.NewObjectID()
		doc := userDoc(id, "alice")
		doc[3] = bson.E{Key: "email", Value: "new@example.com"}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		email := "new@example.com"
		u, err := repo.Update(ctx, id.Hex(), model.UserPatch{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", u.Email)
	})

	mt.Run("delete of missing user", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTokenRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("match refresh counts the slot", func(mt *mtest.T) {
		repo := NewTokenRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		ok, err := repo.MatchRefresh(ctx, primitive.NewObjectID().Hex(), "hash")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	mt.Run("match refresh with no session", func(mt *mtest.T) {
		repo := NewTokenRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		ok, err := repo.MatchRefresh(ctx, primitive.NewObjectID().Hex(), "hash")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	mt.Run("revoke on missing user", func(mt *mtest.T) {
		repo := NewTokenRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Revoke(ctx, primitive.NewObjectID().Hex(), time.Now(), "1h0m0s")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEventRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("list all decodes batch", func(mt *mtest.T) {
		repo := NewEventRepo(mt.DB)
		owner := primitive.NewObjectID()
		day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		ev := func(name string) bson.D {
			return bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "name", Value: name},
				{Key: "date", Value: day},
				{Key: "location", Value: "NYC"},
				{Key: "createdBy", Value: owner},
			}
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.events", mtest.FirstBatch, ev("Meetup"), ev("Hackday")))

		out, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "Meetup", out[0].Name)
		assert.True(t, out[1].OwnedBy(owner.Hex()))
	})

	mt.Run("list all empty is not nil", func(mt *mtest.T) {
		repo := NewEventRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.events", mtest.FirstBatch))

		out, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	mt.Run("delete by owner reports count", func(mt *mtest.T) {
		repo := NewEventRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		n, err := repo.DeleteByOwner(ctx, primitive.NewObjectID().Hex())
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})
}
