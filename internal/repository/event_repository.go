// This file defines the event repository. An event belongs to the user in
// its createdBy field; ownership is enforced by the service layer, which
// loads the event before mutating it.
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

// EventRepo encapsulates all queries on the events collection.
type EventRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewEventRepo(db *mongo.Database) *EventRepo {
	return &EventRepo{coll: db.Collection(database.EventsCollection), now: time.Now}
}

// Create inserts e and populates its ID and timestamps.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	now := r.now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, e)
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid
	}
	return nil
}

// GetByID fetches an event regardless of owner.
func (r *EventRepo) GetByID(ctx context.Context, id string) (model.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Event{}, err
	}
	var e model.Event
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&e); err != nil {
		return model.Event{}, translate(err)
	}
	return e, nil
}

// ListAll returns every event, newest first.
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the non-nil fields of p and returns the updated event.
func (r *EventRepo) Update(ctx context.Context, id string, p model.EventPatch) (model.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Event{}, err
	}
	set := bson.M{"updatedAt": r.now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Date != nil {
		set["date"] = p.Date.UTC()
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	var e model.Event
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	if err != nil {
		return model.Event{}, translate(err)
	}
	return e, nil
}

// Delete removes one event; ErrNotFound when nothing matched.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
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

// DeleteByOwner removes every event created by ownerID and reports how many
// were deleted.
func (r *EventRepo) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	oid, err := objectID(ownerID)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"createdBy": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
