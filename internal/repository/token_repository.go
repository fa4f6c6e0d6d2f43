package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/event-planner/internal/database"
	"github.com/iliyamo/event-planner/internal/model"
)

// TokenRepo manages the single refresh-token slot on each user document.
// Only the SHA-256 hash of the refresh token is stored. Writing a new hash
// replaces the previous one, which ends any earlier session.
type TokenRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewTokenRepo(db *mongo.Database) *TokenRepo {
	return &TokenRepo{coll: db.Collection(database.UsersCollection), now: time.Now}
}

// StoreRefresh records a new session: refresh hash and login time.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, loginAt time.Time) (model.User, error) {
	oid, err := objectID(userID)
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"refreshToken": tokenHash,
			"lastLogin":    loginAt.UTC(),
			"updatedAt":    r.now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

// MatchRefresh reports whether tokenHash is the user's current session.
func (r *TokenRepo) MatchRefresh(ctx context.Context, userID, tokenHash string) (bool, error) {
	oid, err := objectID(userID)
	if err != nil {
		return false, err
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid, "refreshToken": tokenHash})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke clears the refresh slot and stamps the logout. sessionTime is
// stored only when non-empty.
func (r *TokenRepo) Revoke(ctx context.Context, userID string, logoutAt time.Time, sessionTime string) (model.User, error) {
	oid, err := objectID(userID)
	if err != nil {
		return model.User{}, err
	}
	set := bson.M{
		"lastLogout": logoutAt.UTC(),
		"updatedAt":  r.now().UTC(),
	}
	if sessionTime != "" {
		set["lastSessionTime"] = sessionTime
	}
	var u model.User
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set, "$unset": bson.M{"refreshToken": ""}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}
