package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event represents a row of the shared event board, stored in the
// `events` collection.  CreatedBy is the owning user; only that user may
// change or delete the event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Date      time.Time          `bson:"date" json:"date"`
	Location  string             `bson:"location" json:"location"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OwnedBy reports whether userID (hex) is the event's owner.
func (e Event) OwnedBy(userID string) bool {
	return userID != "" && e.CreatedBy.Hex() == userID
}

// EventPatch holds a partial update; nil fields are left untouched.
type EventPatch struct {
	Name     *string
	Date     *time.Time
	Location *string
}

func (p EventPatch) Empty() bool {
	return p.Name == nil && p.Date == nil && p.Location == nil
}
