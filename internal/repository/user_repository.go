package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/event-planner/internal/database"
	"github.com/iliyamo/event-planner/internal/model"
)

// UserRepo persists user documents. Password hashing happens in the
// service layer; this repository only ever sees hashes.
type UserRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(database.UsersCollection), now: time.Now}
}

// Create inserts u and fills in its ID and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := r.now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// GetByID fetches a user by hex id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

// GetByUserName fetches a user by exact userName.
func (r *UserRepo) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var u model.User
	if err := r.coll.FindOne(ctx, bson.M{"userName": userName}).Decode(&u); err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

// Update applies the non-nil fields of p and returns the updated document.
func (r *UserRepo) Update(ctx context.Context, id string, p model.UserPatch) (model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.User{}, err
	}
	set := bson.M{"updatedAt": r.now().UTC()}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.FullName != nil {
		set["fullName"] = *p.FullName
	}
	if p.PasswordHash != nil {
		set["password"] = *p.PasswordHash
	}
	var u model.User
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

// Delete removes the user; ErrNotFound when nothing matched.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
